// Package pipe provides a one-way byte channel whose read end is drained
// into a size-capped buffer by a background goroutine.
package pipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Collector owns the write end of a pipe and accumulates at most Max bytes
// from the read end. Done is closed once the read end reaches EOF or the
// cap; any excess is discarded so the writer never blocks.
type Collector struct {
	W    *os.File
	Max  int64
	Buf  *bytes.Buffer
	Done <-chan struct{}
}

// NewCollector creates the pipe and starts the drain goroutine. The caller
// must close W in this process after handing it to the child, otherwise
// Done never fires.
func NewCollector(max int64) (*Collector, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	done := make(chan struct{})
	go func() {
		// read one byte past the cap so truncation is detectable
		io.CopyN(buf, r, max+1)
		close(done)
		io.Copy(io.Discard, r)
		r.Close()
	}()
	return &Collector{W: w, Max: max, Buf: buf, Done: done}, nil
}

// Truncated reports whether the writer produced more than Max bytes.
func (c *Collector) Truncated() bool {
	return int64(c.Buf.Len()) > c.Max
}

func (c *Collector) String() string {
	return fmt.Sprintf("Collector[%d/%d]", c.Buf.Len(), c.Max)
}

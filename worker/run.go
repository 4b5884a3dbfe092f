package worker

import (
	"bytes"
	"encoding/gob"
	"os"
	"os/exec"

	"github.com/refutils/go-refutils/pkg/pipe"
	"github.com/refutils/go-refutils/referr"
)

// Run executes the named operation in a fresh worker downgraded to the
// default credentials and relays its result or classified error.
func Run(op string, req *Request) (*ProcResult, error) {
	return RunAs(op, req, DefaultUID, DefaultGID)
}

// RunAs is Run with explicit target credentials. The call blocks until the
// worker sends its payload and exits; the engine applies no timeout of its
// own, the wrapped operation is responsible for bounding its runtime.
func RunAs(op string, req *Request, uid, gid int) (*ProcResult, error) {
	if req == nil {
		req = &Request{}
	}
	var inv bytes.Buffer
	if err := gob.NewEncoder(&inv).Encode(&invocation{Op: op, UID: uid, GID: gid, Req: *req}); err != nil {
		return nil, referr.Internalf("encode worker invocation: %v", err)
	}

	col, err := pipe.NewCollector(maxPayloadSize)
	if err != nil {
		return nil, referr.Internalf("create result channel: %v", err)
	}

	cmd := exec.Command(currentExec)
	cmd.Args = []string{os.Args[0], workerArg}
	cmd.Stdin = &inv
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{col.W}
	if err := cmd.Start(); err != nil {
		col.W.Close()
		return nil, referr.Internalf("spawn worker: %v", err)
	}
	// the worker holds the only remaining write end now
	col.W.Close()

	<-col.Done
	waitErr := cmd.Wait()

	res, err := decodePayload(col.Buf.Bytes())
	if err != nil {
		if waitErr != nil {
			return nil, referr.Internalf("%v (worker: %v)", err, waitErr)
		}
		return nil, err
	}
	return res, nil
}

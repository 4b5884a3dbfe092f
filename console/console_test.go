package console

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputStyles(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Okf("environment test %d of %d", 1, 3)
	Warnf("lint warnings")
	Errf("flag not found")

	out := buf.String()
	assert.Contains(t, out, "[+]")
	assert.Contains(t, out, "environment test 1 of 3")
	assert.Contains(t, out, "[!]")
	assert.Contains(t, out, "lint warnings")
	assert.Contains(t, out, "flag not found")
}

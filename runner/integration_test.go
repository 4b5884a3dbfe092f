package runner

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refutils/go-refutils/referr"
	"github.com/refutils/go-refutils/worker"
)

func TestMain(m *testing.M) {
	// the test binary doubles as the worker executable
	worker.Init()
	os.Exit(m.Run())
}

func requireRoot(t *testing.T) {
	t.Helper()
	if os.Getuid() != 0 {
		t.Skip("credential downgrade requires root")
	}
}

func TestRun_InWorker(t *testing.T) {
	requireRoot(t)
	res, err := Run(Cmd{
		Args: []string{"/bin/sh", "-c", "id -u; id -g"},
		Env:  map[string]string{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "9999\n9999\n", string(res.Stdout),
		"submitted commands must run under the downgraded identity")
}

func TestRun_InWorkerTimeout(t *testing.T) {
	requireRoot(t)
	_, err := Run(Cmd{
		Args:    []string{"/bin/sleep", "10"},
		Env:     map[string]string{},
		Timeout: 300 * time.Millisecond,
	})
	var terr *referr.TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 300*time.Millisecond, terr.Timeout)
}

func TestCombinedOutput_InWorker(t *testing.T) {
	requireRoot(t)
	code, out, err := CombinedOutput(Cmd{
		Args: []string{"/bin/sh", "-c", "echo one; echo two 1>&2"},
		Env:  map[string]string{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, string(out), "one\n")
	assert.Contains(t, string(out), "two\n")
}

func TestRunWithMarker_InWorker(t *testing.T) {
	requireRoot(t)
	_, out, err := RunWithMarker(Cmd{
		Args: []string{"/bin/echo", "flag{spring2026}"},
		Env:  map[string]string{},
	}, []byte("flag{"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "flag{spring2026}")

	_, _, err = RunWithMarker(Cmd{
		Args: []string{"/bin/echo", "nothing here"},
		Env:  map[string]string{},
	}, []byte("flag{"))
	var werr *referr.WrongOutputError
	require.ErrorAs(t, err, &werr)
	assert.Contains(t, werr.Output, "nothing here")
}

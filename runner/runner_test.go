package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refutils/go-refutils/config"
	"github.com/refutils/go-refutils/referr"
)

func TestCheckArgs_NulByte(t *testing.T) {
	err := checkArgs([]string{"./target", "-x", "ok", "abc\x00def"})
	var verr *referr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "argument 3")
	assert.Contains(t, verr.Msg, "offset 3")
	assert.Contains(t, verr.Msg, `"abc\x00def"`)
}

func TestCheckArgs_Clean(t *testing.T) {
	assert.NoError(t, checkArgs([]string{"/bin/echo", "hello", "wörld"}))
}

func TestRun_EmptyCommand(t *testing.T) {
	_, err := Run(Cmd{})
	var verr *referr.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRequest_Defaults(t *testing.T) {
	r := New(config.Default())
	req, err := r.request(Cmd{Args: []string{"/bin/true"}})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, req.Timeout)
	assert.False(t, req.UseEnv, "nil env means the user snapshot")
	assert.False(t, req.UseInput)
	assert.Equal(t, config.Default().SnapshotPath, req.Snapshot)
}

func TestRequest_Overrides(t *testing.T) {
	r := New(config.Default())
	req, err := r.request(Cmd{
		Args:    []string{"/bin/cat"},
		Input:   []byte{},
		Env:     map[string]string{"B": "2", "A": "1"},
		Timeout: 3 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, req.Timeout)
	assert.True(t, req.UseInput, "explicit empty input still redirects stdin")
	assert.True(t, req.UseEnv)
	assert.Equal(t, []string{"A=1", "B=2"}, req.Env)
}

func TestCombinedRequest_HonorsCheckFlags(t *testing.T) {
	r := New(config.Default())

	req, err := r.combinedRequest(Cmd{Args: []string{"/bin/true"}})
	require.NoError(t, err)
	assert.True(t, req.MergeOutput)
	assert.False(t, req.CheckSignal, "an unset flag must stay off")
	assert.False(t, req.CheckExit)

	req, err = r.combinedRequest(Cmd{Args: []string{"/bin/true"}, CheckSignal: true})
	require.NoError(t, err)
	assert.True(t, req.CheckSignal)
}

func TestNew_FromConfig(t *testing.T) {
	cfg := config.Config{DropUID: 1234, DropGID: 5678, SnapshotPath: "/snap", TimeoutSeconds: 5}
	r := New(cfg)
	assert.Equal(t, 1234, r.UID)
	assert.Equal(t, 5678, r.GID)
	assert.Equal(t, "/snap", r.Snapshot)
	assert.Equal(t, 5*time.Second, r.Timeout)
}

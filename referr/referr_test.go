package referr

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeString(t *testing.T) {
	assert.Equal(t, "0", ExitCodeString(0))
	assert.Equal(t, "42", ExitCodeString(42))
	assert.Equal(t, "-9 (SIGKILL)", ExitCodeString(-9))
	assert.Equal(t, "-15 (SIGTERM)", ExitCodeString(-15))
}

func TestTimeoutError_Message(t *testing.T) {
	err := &TimeoutError{Cmd: "sleep 100", Timeout: 10 * time.Second}
	assert.Equal(t, "timeout running sleep 100 (after 10s)", err.Error())
}

func TestExecError_Message(t *testing.T) {
	err := &ExecError{
		Cmd:      "./exploit",
		ExitCode: -11,
		Stdout:   []byte("partial output"),
		Stderr:   []byte("boom"),
	}
	msg := err.Error()
	assert.Contains(t, msg, "execution of ./exploit failed with exit code -11 (SIGSEGV)")
	assert.Contains(t, msg, "--------------------- STDOUT ---------------------\npartial output")
	assert.Contains(t, msg, "--------------------- STDERR ---------------------\nboom")
}

func TestWrongOutputError_Message(t *testing.T) {
	err := &WrongOutputError{Output: "no flag here"}
	assert.Equal(t, "wrong output: no flag here", err.Error())
}

func TestClassified(t *testing.T) {
	for _, err := range []error{
		Configf("bad registration"),
		&TimeoutError{Cmd: "x", Timeout: time.Second},
		&ExecError{Cmd: "x"},
		Validationf("nul byte"),
		&WrongOutputError{Output: "x"},
		Internalf("rejected payload"),
	} {
		assert.True(t, Classified(err), "%T should be classified", err)
	}

	assert.False(t, Classified(errors.New("plain")))
	assert.False(t, Classified(nil))

	// wrapping keeps classification
	wrapped := fmt.Errorf("context: %w", Validationf("inner"))
	assert.True(t, Classified(wrapped))
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindConfig, Configf("x").ErrorKind())
	assert.Equal(t, KindTimeout, (&TimeoutError{}).ErrorKind())
	assert.Equal(t, KindExec, (&ExecError{}).ErrorKind())
	assert.Equal(t, KindValidation, Validationf("x").ErrorKind())
	assert.Equal(t, KindWrongOutput, (&WrongOutputError{}).ErrorKind())
	assert.Equal(t, KindInternal, Internalf("x").ErrorKind())
}

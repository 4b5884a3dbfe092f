// Package referr defines the classified error taxonomy of the grading
// harness. Checks and the surrounding framework use Classified to tell
// errors raised on purpose from unexpected internal faults.
package referr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Kind identifies a classified error on the wire.
type Kind int

// Wire kinds for classified errors.
const (
	KindInvalid Kind = iota
	KindConfig
	KindTimeout
	KindExec
	KindValidation
	KindWrongOutput
	KindInternal
)

// HarnessError marks errors raised deliberately by the harness.
type HarnessError interface {
	error
	ErrorKind() Kind
}

// Classified reports whether err (or any error it wraps) belongs to the
// harness taxonomy.
func Classified(err error) bool {
	var he HarnessError
	return errors.As(err, &he)
}

// ConfigError reports misuse of the registration surface or bad harness
// configuration. Always fatal.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string   { return e.Msg }
func (e *ConfigError) ErrorKind() Kind { return KindConfig }

// Configf builds a ConfigError.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// TimeoutError reports a command that exceeded its deadline.
type TimeoutError struct {
	Cmd     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout running %s (after %v)", e.Cmd, e.Timeout)
}

func (e *TimeoutError) ErrorKind() Kind { return KindTimeout }

// ExecError reports a command that terminated by signal or with an
// unexpected exit code. Negative exit codes carry the signal number.
type ExecError struct {
	Cmd      string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

func (e *ExecError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "execution of %s failed with exit code %s\n", e.Cmd, ExitCodeString(e.ExitCode))
	sb.WriteString("--------------------- STDOUT ---------------------\n")
	sb.Write(e.Stdout)
	sb.WriteString("\n--------------------- STDERR ---------------------\n")
	sb.Write(e.Stderr)
	return sb.String()
}

func (e *ExecError) ErrorKind() Kind { return KindExec }

// ExitCodeString renders an exit code, appending the symbolic signal name
// for signal terminations.
func ExitCodeString(code int) string {
	if code < 0 {
		return fmt.Sprintf("%d (%s)", code, unix.SignalName(syscall.Signal(-code)))
	}
	return strconv.Itoa(code)
}

// ValidationError reports rejected input, such as a command argument with
// an embedded NUL byte.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string   { return e.Msg }
func (e *ValidationError) ErrorKind() Kind { return KindValidation }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// WrongOutputError reports command output missing a required marker.
type WrongOutputError struct {
	Output string
}

func (e *WrongOutputError) Error() string   { return "wrong output: " + e.Output }
func (e *WrongOutputError) ErrorKind() Kind { return KindWrongOutput }

// InternalError reports an unexpected harness-internal condition, such as a
// rejected worker payload. It is always surfaced verbatim to operators.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string   { return e.Msg }
func (e *InternalError) ErrorKind() Kind { return KindInternal }

// Internalf builds an InternalError.
func Internalf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

package worker

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"time"

	"github.com/refutils/go-refutils/referr"
)

// The payload is the single worker-to-caller message. Its producer just ran
// attacker-influenced input with downgraded credentials while the decoder
// runs fully privileged, so decoding is restricted to a closed set of
// shapes: a process result, or one of the classified error kinds flattened
// into wireError. Nothing else is ever reconstructed; a payload outside the
// allow-list decodes to an InternalError instead.

type payloadKind int

const (
	payloadInvalid payloadKind = iota
	payloadValue
	payloadError
)

type payload struct {
	Kind payloadKind
	Proc *ProcResult
	Err  *wireError
}

// wireError is the closed wire form of a classified error. Fields unused by
// a given kind stay zero.
type wireError struct {
	Kind     referr.Kind
	Msg      string
	Cmd      string
	Timeout  int64 // nanoseconds
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Output   string
}

func sendResult(w io.Writer, res *ProcResult) error {
	return gob.NewEncoder(w).Encode(&payload{Kind: payloadValue, Proc: res})
}

func sendError(w io.Writer, err error) error {
	return gob.NewEncoder(w).Encode(&payload{Kind: payloadError, Err: toWire(err)})
}

// toWire flattens err into the closed wire form. Errors outside the
// taxonomy are carried as internal failures so the caller still learns
// their message without the channel ever transporting open types.
func toWire(err error) *wireError {
	var (
		timeoutErr  *referr.TimeoutError
		execErr     *referr.ExecError
		validateErr *referr.ValidationError
		wrongOutput *referr.WrongOutputError
		configErr   *referr.ConfigError
		internalErr *referr.InternalError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return &wireError{
			Kind:    referr.KindTimeout,
			Cmd:     timeoutErr.Cmd,
			Timeout: int64(timeoutErr.Timeout),
		}
	case errors.As(err, &execErr):
		return &wireError{
			Kind:     referr.KindExec,
			Cmd:      execErr.Cmd,
			ExitCode: execErr.ExitCode,
			Stdout:   execErr.Stdout,
			Stderr:   execErr.Stderr,
		}
	case errors.As(err, &validateErr):
		return &wireError{Kind: referr.KindValidation, Msg: validateErr.Msg}
	case errors.As(err, &wrongOutput):
		return &wireError{Kind: referr.KindWrongOutput, Output: wrongOutput.Output}
	case errors.As(err, &configErr):
		return &wireError{Kind: referr.KindConfig, Msg: configErr.Msg}
	case errors.As(err, &internalErr):
		return &wireError{Kind: referr.KindInternal, Msg: internalErr.Msg}
	default:
		return &wireError{Kind: referr.KindInternal, Msg: err.Error()}
	}
}

// fromWire rebuilds the classified error for re-raising in the caller.
// Unknown kinds are rejected.
func fromWire(we *wireError) error {
	switch we.Kind {
	case referr.KindTimeout:
		return &referr.TimeoutError{Cmd: we.Cmd, Timeout: time.Duration(we.Timeout)}
	case referr.KindExec:
		return &referr.ExecError{Cmd: we.Cmd, ExitCode: we.ExitCode, Stdout: we.Stdout, Stderr: we.Stderr}
	case referr.KindValidation:
		return &referr.ValidationError{Msg: we.Msg}
	case referr.KindWrongOutput:
		return &referr.WrongOutputError{Output: we.Output}
	case referr.KindConfig:
		return &referr.ConfigError{Msg: we.Msg}
	case referr.KindInternal:
		return &referr.InternalError{Msg: we.Msg}
	default:
		return referr.Internalf("worker sent error payload with unknown kind %d", we.Kind)
	}
}

// decodePayload applies the restricted decode to the raw channel contents.
func decodePayload(data []byte) (*ProcResult, error) {
	if len(data) == 0 {
		return nil, referr.Internalf("worker closed the result channel without a payload")
	}
	p := new(payload)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(p); err != nil {
		return nil, referr.Internalf("rejected worker payload: %v", err)
	}
	switch p.Kind {
	case payloadValue:
		if p.Proc == nil {
			return nil, referr.Internalf("rejected worker payload: value without a result")
		}
		return p.Proc, nil
	case payloadError:
		if p.Err == nil {
			return nil, referr.Internalf("rejected worker payload: error without fields")
		}
		return nil, fromWire(p.Err)
	default:
		return nil, referr.Internalf("rejected worker payload: unknown kind %d", p.Kind)
	}
}

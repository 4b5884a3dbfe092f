// Package worker spawns an isolated, credential-downgraded process to run a
// registered operation on behalf of a privileged caller. Since a Go process
// cannot fork a closure, the worker re-executes /proc/self/exe with a
// reserved argv marker and the binary hands control back to the package via
// Init before doing anything else.
package worker

/*
Caller / Worker Protocol (one shot):

- caller encodes an invocation {op, uid, gid, request} in gob format and
  feeds it to the worker's stdin
- worker decodes the invocation, then drops credentials before dispatching:
  setresgid, setgroups (inherited set minus gid 0), setresuid — in exactly
  that order, since dropping the uid first removes the authority to change
  group identity
- worker runs the named operation and writes exactly one payload (a value
  or a classified error) in gob format to the inherited pipe at fd 3
- caller reads the channel until EOF, waits for the worker and decodes the
  payload through the restricted decoder

A worker that exits without sending a payload is reported as an internal
failure, never silently ignored.
*/

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"
)

const (
	workerArg   = "refutils-worker"
	currentExec = "/proc/self/exe"

	// payload channel inherited as ExtraFiles[0]
	payloadFd = 3

	// cap on the payload; a command result carries captured output, so
	// leave generous headroom
	maxPayloadSize = 32 << 20
)

// Default credentials workers downgrade to when the caller does not choose.
const (
	DefaultUID = 9999
	DefaultGID = 9999
)

// ProcResult is the outcome of a process run inside a worker. It is the
// only value shape the payload decoder reconstructs.
type ProcResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Request carries an operation's arguments into the worker.
type Request struct {
	Args    []string
	Input   []byte
	Env     []string
	Dir     string
	Timeout time.Duration

	// Snapshot overrides the user environment snapshot location.
	Snapshot string

	// UseEnv and UseInput distinguish "explicitly empty" from "absent",
	// which the wire encoding cannot: without UseEnv the captured user
	// environment applies, without UseInput stdin is the null device.
	UseEnv      bool
	UseInput    bool
	MergeOutput bool // fold stderr into stdout
	CheckExit   bool // nonzero exit becomes an ExecError
	CheckSignal bool // signal termination becomes an ExecError
}

// Operation is a function executed inside the downgraded worker.
type Operation func(req *Request) (*ProcResult, error)

// invocation is the caller-to-worker bootstrap message.
type invocation struct {
	Op  string
	UID int
	GID int
	Req Request
}

// Init detects worker mode. When the process was spawned as a worker it
// never returns: the requested operation runs and the process exits. Call
// it at the top of main and TestMain, before any other work.
func Init() {
	if len(os.Args) != 2 || os.Args[1] != workerArg {
		return
	}
	os.Exit(workerMain())
}

func workerMain() int {
	out := os.NewFile(payloadFd, "payload-channel")
	if out == nil {
		fmt.Fprintln(os.Stderr, "worker: payload channel missing")
		return 1
	}
	defer out.Close()

	inv := new(invocation)
	if err := gob.NewDecoder(os.Stdin).Decode(inv); err != nil {
		sendError(out, fmt.Errorf("worker: decode invocation: %w", err))
		return 1
	}
	if err := dropCredentials(inv.UID, inv.GID); err != nil {
		sendError(out, fmt.Errorf("worker: credential drop: %w", err))
		return 1
	}
	op := lookupOperation(inv.Op)
	if op == nil {
		sendError(out, fmt.Errorf("worker: unknown operation %q", inv.Op))
		return 1
	}
	res, err := op(&inv.Req)
	if err != nil {
		sendError(out, err)
		return 0
	}
	if err := sendResult(out, res); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		return 1
	}
	return 0
}

// Package runner builds and executes external commands inside a
// credential-downgraded worker, so submitted programs never run at the
// harness's privilege level.
package runner

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/refutils/go-refutils/config"
	"github.com/refutils/go-refutils/referr"
	"github.com/refutils/go-refutils/worker"
)

// DefaultTimeout bounds command execution when no timeout is given.
const DefaultTimeout = 10 * time.Second

// Result is the captured outcome of an executed command.
type Result = worker.ProcResult

// Cmd describes one external command invocation.
type Cmd struct {
	// Args is the argument vector. Elements must not contain NUL bytes.
	Args []string

	// Input feeds stdin when non-nil; otherwise stdin is the null device.
	Input []byte

	// Env replaces the default environment (the captured user snapshot
	// with the command recorded as the last-command entry).
	Env map[string]string

	// Dir is the working directory, empty for the caller's.
	Dir string

	// Timeout bounds execution, 0 means the runner default.
	Timeout time.Duration

	// CheckExit turns a nonzero exit code into an ExecError.
	CheckExit bool

	// CheckSignal turns a signal termination into an ExecError.
	CheckSignal bool
}

// Runner executes commands under a fixed credential and environment policy.
type Runner struct {
	UID      int
	GID      int
	Snapshot string
	Timeout  time.Duration
}

// New builds a Runner from harness configuration.
func New(cfg config.Config) *Runner {
	return &Runner{
		UID:      cfg.DropUID,
		GID:      cfg.DropGID,
		Snapshot: cfg.SnapshotPath,
		Timeout:  cfg.Timeout(),
	}
}

var defaultRunner = New(config.Default())

// Run executes c with the default runner.
func Run(c Cmd) (*Result, error) { return defaultRunner.Run(c) }

// Run validates c and executes it in a downgraded worker.
func (r *Runner) Run(c Cmd) (*Result, error) {
	req, err := r.request(c)
	if err != nil {
		return nil, err
	}
	return worker.RunAs(opRun, req, r.UID, r.GID)
}

func (r *Runner) request(c Cmd) (*worker.Request, error) {
	if len(c.Args) == 0 {
		return nil, referr.Validationf("empty command")
	}
	if err := checkArgs(c.Args); err != nil {
		return nil, err
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &worker.Request{
		Args:        c.Args,
		Input:       c.Input,
		Env:         envSlice(c.Env),
		Dir:         c.Dir,
		Timeout:     timeout,
		Snapshot:    r.Snapshot,
		UseEnv:      c.Env != nil,
		UseInput:    c.Input != nil,
		CheckExit:   c.CheckExit,
		CheckSignal: c.CheckSignal,
	}, nil
}

// checkArgs rejects argument elements with embedded NUL bytes: execve
// cannot represent them and would otherwise fail with an opaque EINVAL.
func checkArgs(args []string) error {
	for i, arg := range args {
		if off := strings.IndexByte(arg, 0); off >= 0 {
			return referr.Validationf("argument %d (%s) contains a NUL byte at offset %d",
				i, strconv.Quote(arg), off)
		}
	}
	return nil
}

func envSlice(env map[string]string) []string {
	if env == nil {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

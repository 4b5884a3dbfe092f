package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/refutils/go-refutils/envsnap"
	"github.com/refutils/go-refutils/referr"
	"github.com/refutils/go-refutils/worker"
)

const opRun = "runner.run"

func init() {
	worker.RegisterOperation(opRun, execute)
}

// execute runs inside the downgraded worker. It resolves the environment,
// applies the stdin and timeout policy, runs the command and classifies
// failures into the harness taxonomy.
func execute(req *worker.Request) (*worker.ProcResult, error) {
	cmdline := strings.Join(req.Args, " ")

	env := req.Env
	if !req.UseEnv {
		snapshot := req.Snapshot
		if snapshot == "" {
			snapshot = envsnap.DefaultPath
		}
		var err error
		env, err = envsnap.Environ(afero.NewOsFs(), snapshot, req.Args[0])
		if err != nil {
			return nil, referr.Internalf("load user environment: %v", err)
		}
	}
	if env == nil {
		// a nil slice would make os/exec inherit the harness environment
		env = []string{}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, req.Args[0], req.Args[1:]...)
	cmd.Env = env
	cmd.Dir = req.Dir
	if req.UseInput {
		cmd.Stdin = bytes.NewReader(req.Input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if req.MergeOutput {
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &referr.TimeoutError{Cmd: cmdline, Timeout: timeout}
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		// inspected below via ProcessState
	default:
		return nil, classifySpawn(cmdline, err)
	}

	code := exitCode(cmd.ProcessState.Sys().(syscall.WaitStatus))
	res := &worker.ProcResult{
		ExitCode: code,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}
	if req.CheckSignal && code < 0 {
		return nil, &referr.ExecError{Cmd: cmdline, ExitCode: code, Stdout: res.Stdout, Stderr: res.Stderr}
	}
	if req.CheckExit && code != 0 {
		return nil, &referr.ExecError{Cmd: cmdline, ExitCode: code, Stdout: res.Stdout, Stderr: res.Stderr}
	}
	return res, nil
}

// exitCode follows the convention of rendering signal terminations as the
// negated signal number.
func exitCode(ws syscall.WaitStatus) int {
	if ws.Signaled() {
		return -int(ws.Signal())
	}
	return ws.ExitStatus()
}

// classifySpawn translates low-level spawn failures into classified errors
// with an actionable hint instead of surfacing them raw.
func classifySpawn(cmdline string, err error) error {
	switch {
	case errors.Is(err, os.ErrPermission):
		return &referr.ExecError{
			Cmd:      cmdline,
			ExitCode: 126,
			Stderr:   []byte("permission denied, is the executable bit set?"),
		}
	case errors.Is(err, syscall.ENOEXEC):
		return &referr.ExecError{
			Cmd:      cmdline,
			ExitCode: 126,
			Stderr:   []byte("invalid executable format, is the shebang line missing?"),
		}
	case errors.Is(err, os.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		return &referr.ExecError{
			Cmd:      cmdline,
			ExitCode: 127,
			Stderr:   []byte("executable not found"),
		}
	default:
		return referr.Internalf("spawn %s: %v", cmdline, err)
	}
}

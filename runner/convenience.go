package runner

import (
	"bytes"
	"strings"

	"github.com/refutils/go-refutils/console"
	"github.com/refutils/go-refutils/referr"
	"github.com/refutils/go-refutils/worker"
)

// CombinedOutput runs c with stderr folded into stdout and returns the exit
// code with the merged output. c.CheckExit and c.CheckSignal are honored as
// given: a caller that wants signal terminations reported as errors sets
// CheckSignal.
func (r *Runner) CombinedOutput(c Cmd) (int, []byte, error) {
	req, err := r.combinedRequest(c)
	if err != nil {
		return 0, nil, err
	}
	res, err := worker.RunAs(opRun, req, r.UID, r.GID)
	if err != nil {
		return 0, nil, err
	}
	return res.ExitCode, res.Stdout, nil
}

// combinedRequest builds the merged-output request for c without touching
// its check flags.
func (r *Runner) combinedRequest(c Cmd) (*worker.Request, error) {
	req, err := r.request(c)
	if err != nil {
		return nil, err
	}
	req.MergeOutput = true
	return req, nil
}

// PayloadFromExecutable runs a helper program and returns its merged output
// for use as input data in a later step. The helper must exit cleanly, so
// both check flags are forced on. With verbose set it reports what is being
// executed.
func (r *Runner) PayloadFromExecutable(c Cmd, verbose bool) (int, []byte, error) {
	if verbose {
		console.Okf("executing %s and using its output as payload for the target", strings.Join(c.Args, " "))
	}
	c.CheckExit = true
	c.CheckSignal = true
	return r.CombinedOutput(c)
}

// RunWithMarker runs c and requires marker to appear in the merged output,
// returning a WrongOutputError otherwise. The check flags are honored as
// given, like CombinedOutput.
func (r *Runner) RunWithMarker(c Cmd, marker []byte) (int, []byte, error) {
	code, out, err := r.CombinedOutput(c)
	if err != nil {
		return 0, nil, err
	}
	if len(marker) > 0 && !bytes.Contains(out, marker) {
		return 0, nil, &referr.WrongOutputError{Output: string(out)}
	}
	return code, out, nil
}

// CombinedOutput runs c with the default runner.
func CombinedOutput(c Cmd) (int, []byte, error) { return defaultRunner.CombinedOutput(c) }

// PayloadFromExecutable runs c with the default runner.
func PayloadFromExecutable(c Cmd, verbose bool) (int, []byte, error) {
	return defaultRunner.PayloadFromExecutable(c, verbose)
}

// RunWithMarker runs c with the default runner.
func RunWithMarker(c Cmd, marker []byte) (int, []byte, error) {
	return defaultRunner.RunWithMarker(c, marker)
}

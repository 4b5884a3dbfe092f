package suite

import (
	"encoding/json"
	"os"
	"os/signal"

	"github.com/spf13/afero"

	"github.com/refutils/go-refutils/config"
	"github.com/refutils/go-refutils/console"
	"github.com/refutils/go-refutils/referr"
)

// Registry collects checks before a run. Registration happens while the
// hosting program initializes; the registry is read-only once RunTests
// starts iterating it.
type Registry struct {
	fs         afero.Fs
	resultPath string
	groups     map[string]*group
	order      []string

	// notify subscribes a channel to interrupt delivery and returns the
	// matching unsubscribe; swapped out by tests.
	notify func(c chan<- os.Signal) (stop func())
}

// New builds a registry with the default configuration.
func New() *Registry { return NewWithConfig(config.Default()) }

// NewWithConfig builds a registry persisting results per cfg.
func NewWithConfig(cfg config.Config) *Registry {
	return &Registry{
		fs:         afero.NewOsFs(),
		resultPath: cfg.ResultPath,
		groups:     make(map[string]*group),
		notify:     notifyInterrupt,
	}
}

func notifyInterrupt(c chan<- os.Signal) func() {
	signal.Notify(c, os.Interrupt)
	return func() { signal.Stop(c) }
}

// Main runs all registered checks and terminates the process with an exit
// status understood by the grading pipeline.
func (r *Registry) Main() {
	os.Exit(r.RunTests())
}

// RunTests executes all groups sequentially in registration order and
// persists their reports. Classified fatal errors are printed message-only
// so no internal detail leaks to the submitter; unexpected errors panic
// with their full diagnostic, deliberately.
func (r *Registry) RunTests() int {
	code, err := r.run()
	if err != nil {
		if referr.Classified(err) {
			console.Errf("%v", err)
			return ExitFatal
		}
		panic(err)
	}
	return code
}

func (r *Registry) run() (int, error) {
	if err := r.fs.Remove(r.resultPath); err != nil && !os.IsNotExist(err) {
		return 0, referr.Internalf("discard previous results: %v", err)
	}

	console.Okf("running tests")
	reports := make([]GroupReport, 0, len(r.order))
	allOK := true
	for _, name := range r.order {
		rep, err := r.runGroup(r.groups[name])
		if err != nil {
			return 0, err
		}
		reports = append(reports, rep)
		if !rep.Success {
			allOK = false
		}
		// rewrite after every group; partial files are not a contract
		if err := r.persist(reports); err != nil {
			return 0, err
		}
	}

	r.summarize(reports)
	if !allOK {
		return ExitFailure, nil
	}
	return ExitSuccess, nil
}

func (r *Registry) runGroup(g *group) (GroupReport, error) {
	rep := GroupReport{Name: g.name}

	check := g.check()
	if len(g.env) > 0 && check == nil {
		return rep, referr.Configf("group %q declares environment checks but no submission check", g.name)
	}

	for i, env := range g.env {
		console.Okf("group %s: environment test %d of %d", g.name, i+1, len(g.env))
		ok, err := env()
		if err != nil {
			return rep, err
		}
		if !ok {
			console.Errf("group %s: environment test %d failed", g.name, i+1)
			return rep, nil
		}
	}

	// a group without a gated check passes vacuously
	if check == nil {
		rep.Success = true
		return rep, nil
	}

	console.Okf("group %s: testing submission", g.name)
	out, err := r.invoke(check)
	if err != nil {
		if referr.Classified(err) {
			console.Errf("%v", err)
			return rep, nil
		}
		return rep, err
	}
	rep.Success = out.Success
	rep.Score = out.Score
	return rep, nil
}

// invoke runs the submission check while watching for a user interrupt.
// An interrupt fails the group but lets the remaining groups run. Capture
// is scoped to exactly this call: a fresh channel is subscribed right
// before the check starts and released right after, so a signal delivered
// at any other point keeps its default effect of ending the run and no
// stale signal can fail a later group.
func (r *Registry) invoke(check SubmissionCheck) (Outcome, error) {
	sig := make(chan os.Signal, 1)
	stop := r.notify(sig)
	defer stop()

	type result struct {
		out Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := check()
		done <- result{out: out, err: err}
	}()
	select {
	case <-sig:
		console.Errf("interrupted")
		return Outcome{}, nil
	case res := <-done:
		return res.out, res.err
	}
}

func (r *Registry) persist(reports []GroupReport) error {
	data, err := json.Marshal(reports)
	if err != nil {
		return referr.Internalf("encode results: %v", err)
	}
	if err := afero.WriteFile(r.fs, r.resultPath, data, 0o644); err != nil {
		return referr.Internalf("write results: %v", err)
	}
	return nil
}

func (r *Registry) summarize(reports []GroupReport) {
	var failed []string
	for _, rep := range reports {
		if !rep.Success {
			failed = append(failed, rep.Name)
		}
	}
	if len(failed) == 0 {
		console.Okf("all tests passed")
		return
	}
	if len(reports) > 1 {
		for _, name := range failed {
			console.Errf("group %s failed", name)
		}
	}
	console.Errf("some tests failed, please review your submission to avoid penalties during grading")
}

// Package suite registers grading checks into named groups and runs them in
// a fixed two-phase order: environment checks gate the single submission
// check of their group. Outcomes are persisted as a JSON record for the
// grading pipeline and the process exit status reports overall success.
package suite

import (
	"github.com/refutils/go-refutils/referr"
)

// DefaultGroup names the implicit group used when a registration does not
// pick one.
const DefaultGroup = "default"

// Exit codes understood by the grading pipeline.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitFatal   = 2
)

// EnvironmentCheck is a boolean precondition gate. An error aborts the
// whole run; a false result fails the group.
type EnvironmentCheck func() (bool, error)

// SubmissionCheck evaluates the submitted deliverable. A classified error
// fails the group; any other error aborts the run.
type SubmissionCheck func() (Outcome, error)

// Outcome is a submission check verdict.
type Outcome struct {
	Success bool
	Score   *float64
}

// Pass is a plain successful outcome without a score.
func Pass() Outcome { return Outcome{Success: true} }

// Fail is a plain failed outcome without a score.
func Fail() Outcome { return Outcome{} }

// Scored attaches a score to an outcome.
func Scored(success bool, score float64) Outcome {
	return Outcome{Success: success, Score: &score}
}

// GroupReport is one persisted result record.
type GroupReport struct {
	Name    string   `json:"name"`
	Success bool     `json:"success"`
	Score   *float64 `json:"score"`
}

type group struct {
	name       string
	env        []EnvironmentCheck
	submission SubmissionCheck
	extended   SubmissionCheck
}

// check returns the gated check of the group, preferring the regular
// submission check. Regular and extended checks are mutually exclusive per
// group, so at most one is set.
func (g *group) check() SubmissionCheck {
	if g.submission != nil {
		return g.submission
	}
	return g.extended
}

type regOpts struct {
	group string
}

// Option scopes a registration.
type Option func(*regOpts)

// Group scopes a registration to the named group.
func Group(name string) Option {
	return func(o *regOpts) { o.group = name }
}

func (r *Registry) target(opts []Option) *group {
	o := regOpts{group: DefaultGroup}
	for _, opt := range opts {
		opt(&o)
	}
	g, ok := r.groups[o.group]
	if !ok {
		g = &group{name: o.group}
		r.groups[o.group] = g
		r.order = append(r.order, o.group)
	}
	return g
}

// Environment registers an environment check and returns it unchanged for
// composability.
func (r *Registry) Environment(fn EnvironmentCheck, opts ...Option) EnvironmentCheck {
	if fn == nil {
		panic(referr.Configf("registered a nil environment check"))
	}
	g := r.target(opts)
	g.env = append(g.env, fn)
	return fn
}

// Submission registers the submission check of a group and returns it
// unchanged. A group holds at most one submission or extended check; a
// second registration is rejected immediately.
func (r *Registry) Submission(fn SubmissionCheck, opts ...Option) SubmissionCheck {
	if fn == nil {
		panic(referr.Configf("registered a nil submission check"))
	}
	g := r.target(opts)
	if g.check() != nil {
		panic(referr.Configf("group %q already has a submission check", g.name))
	}
	g.submission = fn
	return fn
}

// Extended registers the scored submission check of a group and returns it
// unchanged. It is mutually exclusive with a regular submission check.
func (r *Registry) Extended(fn SubmissionCheck, opts ...Option) SubmissionCheck {
	if fn == nil {
		panic(referr.Configf("registered a nil extended submission check"))
	}
	g := r.target(opts)
	if g.check() != nil {
		panic(referr.Configf("group %q already has a submission check", g.name))
	}
	g.extended = fn
	return fn
}

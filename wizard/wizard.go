// Package wizard runs declarative multi-step prompts.
//
// A Form declares, in order, the paths a wizard fills in and how to ask for
// each one: a binder that builds a prompter from the answers so far, and an
// optional predicate deciding whether the field is shown at all. A Wizard
// walks the form, re-evaluating predicates and binders from the current
// answers at every step, so going back and changing an answer re-routes the
// rest of the flow.
//
//	form := wizard.NewForm()
//	wizard.MustBindPrompter(form, name, func(wizard.Snapshot) (prompter.Prompter[string], error) {
//		return prompter.NewInput(host, "Project name"), nil
//	})
//
//	res, err := wizard.New(form, wizard.WithName("init")).Run(ctx)
//	if err != nil || res.Cancelled() {
//		return err
//	}
//
//	cfg, err := wizard.Decode[ProjectConfig](res.Snapshot())
package wizard

import (
	"context"
	"time"

	"github.com/amp-labs/amp-wizard/logger"
	"github.com/google/uuid"
)

// Option configures a Wizard or Engine.
type Option func(*config)

type config struct {
	name    string
	logger  Logger
	hooks   []Hook
	initial map[string]any
}

func newConfig(opts []Option) config {
	cfg := config{logger: NewDefaultLogger()}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithName names the wizard in logs, metrics and traces.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger replaces the default slog-backed logger. A nil logger disables
// run logging.
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l == nil {
			l = noopLogger{}
		}

		c.logger = l
	}
}

// WithHook adds an observer of field transitions.
func WithHook(hook Hook) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hook)
	}
}

// WithInitialState starts every run from a nested object instead of an
// empty state. Hidden fields keep their initial values; shown fields offer
// them as the starting answer.
func WithInitialState(nested map[string]any) Option {
	return func(c *config) {
		c.initial = nested
	}
}

// Result is the outcome of a run that did not fail.
type Result struct {
	snapshot  Snapshot
	cancelled bool
}

// Cancelled reports whether the user cancelled the first step. A cancelled
// result carries an empty snapshot.
func (r Result) Cancelled() bool {
	return r.cancelled
}

// Snapshot returns the assembled answers.
func (r Result) Snapshot() Snapshot {
	if r.snapshot.values == nil {
		return NewState().Snapshot()
	}

	return r.snapshot
}

// Wizard runs a form. Each Run starts from fresh state, so one Wizard can be
// run repeatedly, and independent Wizards can run concurrently.
type Wizard struct {
	engine  *Engine
	initial map[string]any
}

// New creates a wizard for form.
func New(form *Form, opts ...Option) *Wizard {
	cfg := newConfig(opts)

	return &Wizard{
		engine:  NewEngine(form, opts...),
		initial: cfg.initial,
	}
}

// Run asks every applicable question and returns the answers, or a
// cancelled result if the user backed out of the first step. Any failure of
// a predicate, binder or prompter aborts the run; so does ctx ending, in
// which case the active prompter is disposed and ctx's error is returned.
func (w *Wizard) Run(ctx context.Context) (res Result, err error) {
	e := w.engine
	runID := uuid.NewString()

	ctx = logger.With(ctx, "wizard", sanitizeName(e.name), "run_id", runID)
	ctx, span := startRunSpan(ctx, e.name, runID, e.form.Len())
	started := time.Now()

	e.logger.RunStarted(ctx, e.name, e.form.Len())

	defer func() {
		outcome := outcomeOf(ctx, res, err)
		elapsed := time.Since(started)

		runsTotal.WithLabelValues(sanitizeName(e.name), string(outcome)).Inc()
		runDuration.WithLabelValues(sanitizeName(e.name), string(outcome)).Observe(elapsed.Seconds())
		e.logger.RunFinished(ctx, e.name, outcome, elapsed, err)
		endSpan(span, string(outcome), err)

		if err != nil {
			err = logger.AnnotateError(err, "wizard", sanitizeName(e.name), "run_id", runID)
		}
	}()

	state := NewState()

	if w.initial != nil {
		state, err = StateFromMap(w.initial)
		if err != nil {
			return Result{}, err
		}
	}

	completed, err := e.Run(ctx, state)
	if err != nil {
		return Result{}, err
	}

	if !completed {
		return Result{cancelled: true}, nil
	}

	return Result{snapshot: state.Snapshot()}, nil
}

func outcomeOf(ctx context.Context, res Result, err error) Outcome {
	switch {
	case err != nil && ctx.Err() != nil:
		return OutcomeAborted
	case err != nil:
		return OutcomeFailed
	case res.Cancelled():
		return OutcomeCancelled
	default:
		return OutcomeCompleted
	}
}

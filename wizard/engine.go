package wizard

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	amperrors "github.com/amp-labs/amp-wizard/errors"
	"github.com/amp-labs/amp-wizard/optional"
)

// historyEntry records a field that was shown and answered, so that going
// back can restore what the field held before and offer the answer again.
type historyEntry struct {
	index  int
	prior  optional.Value[any]
	answer any
}

// Engine walks a form's fields in order, drives one prompter at a time and
// fills in a State. Going back (a cancelled prompt) rewinds to the most
// recently answered field; cancelling with nothing to go back to cancels the
// run.
type Engine struct {
	form   *Form
	name   string
	logger Logger
	hooks  []Hook
}

// NewEngine creates an engine for form.
func NewEngine(form *Form, opts ...Option) *Engine {
	cfg := newConfig(opts)

	return &Engine{
		form:   form,
		name:   cfg.name,
		logger: cfg.logger,
		hooks:  cfg.hooks,
	}
}

// Run fills state until every field has been visited, and reports whether
// the run completed. false with a nil error means the user cancelled the
// first step. On error the state must be discarded.
//
// Values already in state before Run are kept for fields that end up hidden,
// and are offered as the starting answer of fields that are shown.
func (e *Engine) Run(ctx context.Context, state *State) (bool, error) {
	fields := e.form.seal()

	var (
		history []historyEntry
		pending = optional.None[any]()
	)

	for i := 0; i < len(fields); {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		fld := fields[i]
		snap := state.Snapshot()

		visible, err := evaluate(fld, StageShowWhen, func() (bool, error) {
			if fld.config.showWhen == nil {
				return true, nil
			}

			return fld.config.showWhen(snap)
		})
		if err != nil {
			return false, err
		}

		if !visible {
			e.skip(ctx, fld, i, SkipHidden)

			pending = optional.None[any]()
			i++

			continue
		}

		current, err := evaluate(fld, StageBind, func() (step, error) {
			return fld.bind(snap)
		})
		if err != nil {
			return false, err
		}

		if current == nil {
			e.skip(ctx, fld, i, SkipNotApplicable)

			pending = optional.None[any]()
			i++

			continue
		}

		if last, ok := pending.OrElse(snap.Lookup(fld.path)).Get(); ok {
			current.prefill(last)
		}

		pending = optional.None[any]()

		// total counts every remaining field, so it is an upper bound.
		number := len(history) + 1
		total := len(history) + len(fields) - i
		current.setStep(number, total)

		answer, cancelled, err := e.prompt(ctx, fld, i, number, total, current)
		if err != nil {
			return false, err
		}

		if cancelled {
			if len(history) == 0 {
				return false, nil
			}

			last := history[len(history)-1]
			history = history[:len(history)-1]

			target := fields[last.index]
			restore(state, target.path, last.prior)

			e.emit(ctx, Event{Action: ActionRewound, Path: target.path, Index: last.index, Step: len(history) + 1,
				Value: last.prior.GetOrElse(nil)})
			e.logger.StepRewound(ctx, fld.path, target.path)

			pending = optional.Some(last.answer)
			i = last.index

			continue
		}

		prior := state.Lookup(fld.path)
		if err := state.Set(fld.path, answer); err != nil {
			return false, &PrompterError{Path: fld.path, Err: err}
		}

		history = append(history, historyEntry{index: i, prior: prior, answer: answer})
		e.emit(ctx, Event{Action: ActionAnswered, Path: fld.path, Index: i, Step: number, Value: answer})

		i++
	}

	return true, nil
}

// prompt shows one step and always disposes its prompter. If ctx ends while
// the prompt is active the prompter is disposed immediately, which stops any
// item loading it owns; a failure of that dispose is joined to ctx's error.
func (e *Engine) prompt(
	ctx context.Context, fld *field, index, number, total int, current step,
) (answer any, cancelled bool, err error) {
	stepCtx, span := startStepSpan(ctx, fld.path, index, number)
	started := time.Now()

	interrupted := make(chan error, 1)
	stop := context.AfterFunc(ctx, func() {
		interrupted <- current.dispose()
	})

	defer func() {
		var errs, interruptErrs amperrors.Collection

		if !stop() {
			interruptErrs.Add(<-interrupted)
		}

		if r := recover(); r != nil {
			errs.Add(amperrors.FromPanic(r, debug.Stack()))
		}

		errs.Add(err)
		errs.Add(current.dispose())

		err = nil
		outcome := string(ActionAnswered)

		switch {
		case ctx.Err() != nil:
			err = ctx.Err()
			outcome = string(OutcomeAborted)

			if interruptErrs.HasError() {
				err = errors.Join(err, &PrompterError{Path: fld.path, Err: interruptErrs.GetError()})
			}
		case errs.HasError():
			err = &PrompterError{Path: fld.path, Err: errs.GetError()}
			outcome = string(OutcomeFailed)
		case cancelled:
			outcome = string(OutcomeCancelled)
		default:
			stepDuration.WithLabelValues(sanitizeName(e.name), fld.path).Observe(time.Since(started).Seconds())
			e.logger.StepAnswered(stepCtx, fld.path, time.Since(started))
		}

		endSpan(span, outcome, err)
	}()

	e.emit(stepCtx, Event{Action: ActionShown, Path: fld.path, Index: index, Step: number})
	e.logger.StepShown(stepCtx, fld.path, number, total)

	return current.prompt(stepCtx)
}

func (e *Engine) skip(ctx context.Context, fld *field, index int, reason SkipReason) {
	e.emit(ctx, Event{Action: ActionSkipped, Path: fld.path, Index: index, Reason: reason})
	e.logger.StepSkipped(ctx, fld.path, reason)
}

func (e *Engine) emit(ctx context.Context, event Event) {
	stepsTotal.WithLabelValues(sanitizeName(e.name), event.Path, string(event.Action)).Inc()

	for _, hook := range e.hooks {
		hook.OnEvent(ctx, event)
	}
}

// restore puts a field back to what it held before it was answered.
func restore(state *State, path string, prior optional.Value[any]) {
	if value, ok := prior.Get(); ok {
		// The path was accepted by Set before, so it cannot conflict now.
		_ = state.Set(path, value)

		return
	}

	state.Unset(path)
}

// evaluate runs a predicate or binder, turning failures and panics into an
// EvaluationError.
func evaluate[T any](fld *field, stage Stage, f func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T

			out = zero
			err = &EvaluationError{Path: fld.path, Stage: stage, Err: amperrors.FromPanic(r, debug.Stack())}
		}
	}()

	out, err = f()
	if err != nil {
		var zero T

		return zero, &EvaluationError{Path: fld.path, Stage: stage, Err: err}
	}

	return out, nil
}

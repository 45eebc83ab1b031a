// Package prompter defines the contract for a single interactive question and
// the choice and text variants built on it.
//
// A Prompter produces exactly one terminal result per instance: a resolved
// value, or a cancellation (the user escaped or asked to go back). Prompters
// never render anything themselves; they describe the question to a Host,
// which owns the actual UI.
package prompter

import (
	"context"
	"errors"
	"fmt"

	"github.com/amp-labs/amp-wizard/optional"
)

var (
	// ErrAlreadyPrompted is returned when Prompt is called on a prompter that
	// is not in the Created state.
	ErrAlreadyPrompted = errors.New("prompter already prompted")

	// ErrDisposed is returned when Prompt is called after Dispose.
	ErrDisposed = errors.New("prompter disposed")

	// ErrItemsFailed wraps failures of the collection feeding a choice prompter.
	ErrItemsFailed = errors.New("failed to load items")

	// ErrInvalidSelection is returned when a host reports an index it never showed.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidInput is returned when a host accepts text that fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Prompter is one interactive exchange producing a T.
type Prompter[T any] interface {
	// Prompt blocks until the user resolves or cancels the question. It may
	// only be called once; later calls fail with ErrAlreadyPrompted.
	Prompt(ctx context.Context) (Result[T], error)

	// Dispose releases UI handles and stops any pending item loading.
	// It is safe to call more than once, and before or during Prompt.
	Dispose() error
}

// Prefiller is implemented by prompters that can show a previous answer as
// their starting value.
type Prefiller[T any] interface {
	Prefill(value T)
}

// StepAware is implemented by prompters that can display their position in a
// multi-step flow. Both numbers are 1-based.
type StepAware interface {
	SetStep(current, total int)
}

// Result is the terminal outcome of a prompt.
type Result[T any] struct {
	value     T
	cancelled bool
}

// Resolved returns a result carrying value.
func Resolved[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Cancelled returns the cancellation result.
func Cancelled[T any]() Result[T] {
	return Result[T]{cancelled: true}
}

// Get returns the resolved value. The boolean is false for a cancelled result.
func (r Result[T]) Get() (T, bool) {
	return r.value, !r.cancelled
}

// IsCancelled reports whether the user cancelled.
func (r Result[T]) IsCancelled() bool {
	return r.cancelled
}

// Value returns the resolved value as an optional, None when cancelled.
func (r Result[T]) Value() optional.Value[T] {
	return optional.FromPair(r.Get())
}

func (r Result[T]) String() string {
	if r.cancelled {
		return "Cancelled"
	}

	return fmt.Sprintf("Resolved(%v)", r.value)
}

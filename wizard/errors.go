package wizard

import (
	"errors"
	"fmt"

	amperrors "github.com/amp-labs/amp-wizard/errors"
)

var (
	// ErrEmptyPath is returned when a field or state path is empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrInvalidPath is returned for malformed dotted paths such as "a..b".
	ErrInvalidPath = errors.New("invalid path")
	// ErrDuplicatePath is returned when two fields bind the same path.
	ErrDuplicatePath = errors.New("path already bound")
	// ErrNilBinder is returned when a field is bound without a binder.
	ErrNilBinder = errors.New("binder is nil")
	// ErrFormSealed is returned when a field is bound after the form started running.
	ErrFormSealed = errors.New("form is already in use")
	// ErrUnknownDependency is returned by Form.Check for a dependency that no
	// earlier field writes.
	ErrUnknownDependency = errors.New("dependency is not written by an earlier field")
	// ErrWrongType is returned when a stored value cannot be read as the requested type.
	ErrWrongType = amperrors.ErrWrongType
)

// DeclarationError reports a malformed form declaration.
type DeclarationError struct {
	Path string
	Err  error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Path, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// Stage names the part of a field that failed during evaluation.
type Stage string

const (
	StageShowWhen Stage = "show_when"
	StageBind     Stage = "bind"
)

// EvaluationError reports a predicate or binder that failed or panicked.
// The run is aborted and no state is returned.
type EvaluationError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("field %q: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// PrompterError reports a prompter that failed, for example because the
// collection feeding it could not be loaded.
type PrompterError struct {
	Path string
	Err  error
}

func (e *PrompterError) Error() string {
	return fmt.Sprintf("field %q: prompt failed: %v", e.Path, e.Err)
}

func (e *PrompterError) Unwrap() error {
	return e.Err
}

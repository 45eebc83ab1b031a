package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongType is returned when a stored value does not have the requested type.
	ErrWrongType = errors.New("wrong type")
	// ErrPanicRecovery marks errors that were produced from a recovered panic.
	ErrPanicRecovery = errors.New("recovered from panic")
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// The wizard engine uses it to report a step failure together with any
// failure that happened while disposing the step's prompter.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Clear removes all errors from the collection.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// GetError returns nil if the collection is empty, the single error if there's only one,
// or a joined error (using errors.Join) if there are multiple errors.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}

// FromPanic converts a recovered panic value into an error wrapping ErrPanicRecovery.
// If the panic value is itself an error it stays reachable through errors.Is / errors.As.
// Returns nil if the recovered value is nil.
func FromPanic(recovered any, stack []byte) error {
	if recovered == nil {
		return nil
	}

	var err error
	if e, ok := recovered.(error); ok {
		err = fmt.Errorf("%w: %w", ErrPanicRecovery, e)
	} else {
		err = fmt.Errorf("%w: %v", ErrPanicRecovery, recovered)
	}

	if len(stack) > 0 {
		err = fmt.Errorf("%w\nstack trace:\n%s", err, string(stack))
	}

	return err
}

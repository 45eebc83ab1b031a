package wizard

import (
	"fmt"

	"github.com/amp-labs/amp-wizard/optional"
	"github.com/mitchellh/mapstructure"
)

// Key is a typed accessor for one state path. It lets predicates and
// binders read earlier answers without type assertions:
//
//	var foo = wizard.NewKey[string]("foo")
//
//	wizard.ShowWhen(func(s wizard.Snapshot) (bool, error) {
//		v, err := foo.Lookup(s)
//		return len(v.GetOrElse("")) > 5, err
//	})
type Key[T any] struct {
	path string
}

// NewKey creates an accessor for path.
func NewKey[T any](path string) Key[T] {
	return Key[T]{path: path}
}

// Path returns the dotted path the key reads.
func (k Key[T]) Path() string {
	return k.path
}

// Lookup returns the value at the key's path. Values that are not already a
// T are converted where mapstructure can do so losslessly enough (a JSON
// float64 into an int, for example); anything else is ErrWrongType.
func (k Key[T]) Lookup(snap Snapshot) (optional.Value[T], error) {
	raw, ok := snap.Lookup(k.path).Get()
	if !ok {
		return optional.None[T](), nil
	}

	typed, err := convert[T](raw)
	if err != nil {
		return optional.None[T](), fmt.Errorf("%w: %q holds %T: %w", ErrWrongType, k.path, raw, err)
	}

	return optional.Some(typed), nil
}

func convert[T any](raw any) (T, error) {
	if typed, ok := raw.(T); ok {
		return typed, nil
	}

	var out T
	if err := mapstructure.Decode(raw, &out); err != nil {
		return out, err
	}

	return out, nil
}

// Get is Lookup for callers that treat a value of the wrong type as unset.
func (k Key[T]) Get(snap Snapshot) optional.Value[T] {
	value, err := k.Lookup(snap)
	if err != nil {
		return optional.None[T]()
	}

	return value
}

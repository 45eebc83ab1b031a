package wizard

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Jeffail/gabs/v2"
	"github.com/amp-labs/amp-wizard/optional"
	"github.com/mitchellh/copystructure"
)

// ErrPathConflict is returned when one path is a dotted prefix of another,
// e.g. "db" and "db.host": the first would have to be both a value and an
// object.
var ErrPathConflict = errors.New("path conflicts with another path")

// ErrUncopyable is returned when a value cannot be deep-copied into a state.
var ErrUncopyable = errors.New("value cannot be copied")

// State is the mutable store a run fills in. Paths are dot separated and
// address a nested object ("db.host" lives under "db"). A path is either
// unset or holds the value last written to it; unset is distinct from any
// zero value.
//
// Values are deep-copied on the way in and again into every snapshot, so
// neither the caller of Set nor a predicate holding a snapshot can reach
// the stored answers.
//
// A State is owned by one run and is not safe for concurrent use.
type State struct {
	values map[string]any
}

// NewState creates an empty state.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// StateFromMap creates a state from a nested object, setting every leaf.
// Objects become dotted paths; arrays and empty objects are stored whole,
// so "tags": ["a", "b"] is the single path "tags".
func StateFromMap(nested map[string]any) (*State, error) {
	flat := make(map[string]any)

	for key, child := range gabs.Wrap(nested).ChildrenMap() {
		flattenInto(flat, key, child)
	}

	state := NewState()

	for _, path := range slices.Sorted(maps.Keys(flat)) {
		if err := state.Set(path, flat[path]); err != nil {
			return nil, err
		}
	}

	return state, nil
}

// StateFromJSON creates a state from a JSON object.
func StateFromJSON(data []byte) (*State, error) {
	container, err := gabs.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}

	nested, ok := container.Data().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: state must be a JSON object", ErrWrongType)
	}

	return StateFromMap(nested)
}

func flattenInto(flat map[string]any, path string, container *gabs.Container) {
	if object, ok := container.Data().(map[string]any); ok && len(object) > 0 {
		for key, child := range container.ChildrenMap() {
			flattenInto(flat, path+"."+key, child)
		}

		return
	}

	flat[path] = container.Data()
}

// Set writes a copy of value at path.
func (s *State) Set(path string, value any) error {
	if err := checkPath(path); err != nil {
		return err
	}

	owned, err := copyValue(value)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUncopyable, path, err)
	}

	for other := range s.values {
		if conflicts(path, other) {
			return fmt.Errorf("%w: %q and %q", ErrPathConflict, path, other)
		}
	}

	s.values[path] = owned

	return nil
}

// Unset removes the value at path. Unsetting an unset path does nothing.
func (s *State) Unset(path string) {
	delete(s.values, path)
}

// Lookup returns the stored value at path, or None if it is unset. The
// value is not copied; callers outside the engine should use a Snapshot.
func (s *State) Lookup(path string) optional.Value[any] {
	value, ok := s.values[path]

	return optional.FromPair(value, ok)
}

// IsSet reports whether path holds a value.
func (s *State) IsSet(path string) bool {
	_, ok := s.values[path]

	return ok
}

// Snapshot returns a deep copy of the current state.
func (s *State) Snapshot() Snapshot {
	values := make(map[string]any, len(s.values))
	for path, value := range s.values {
		values[path] = clone(value)
	}

	return Snapshot{values: values}
}

// Snapshot is an immutable view of a State, handed to predicates and binders.
// Later writes to the State are not visible through it.
type Snapshot struct {
	values map[string]any
}

// Lookup returns a copy of the value at path, or None if it is unset.
func (s Snapshot) Lookup(path string) optional.Value[any] {
	value, ok := s.values[path]
	if !ok {
		return optional.None[any]()
	}

	return optional.Some(clone(value))
}

// IsSet reports whether path holds a value.
func (s Snapshot) IsSet(path string) bool {
	_, ok := s.values[path]

	return ok
}

// Paths returns every set path, sorted.
func (s Snapshot) Paths() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Len returns the number of set paths.
func (s Snapshot) Len() int {
	return len(s.values)
}

// Map returns the state as a nested object. Unset paths are absent.
func (s Snapshot) Map() map[string]any {
	nested, _ := s.container().Data().(map[string]any)
	if nested == nil {
		return map[string]any{}
	}

	return nested
}

// JSON renders the state as an indented JSON object.
func (s Snapshot) JSON() []byte {
	return []byte(s.container().StringIndent("", "  "))
}

func (s Snapshot) container() *gabs.Container {
	container := gabs.New()

	for _, path := range s.Paths() {
		// Set rejects conflicting paths, so SetP cannot collide here.
		_, _ = container.SetP(clone(s.values[path]), path)
	}

	return container
}

func copyValue(value any) (any, error) {
	if value == nil {
		return nil, nil //nolint:nilnil
	}

	return copystructure.Copy(value)
}

// clone copies a value that Set already copied once, so it cannot fail.
func clone(value any) any {
	return copystructure.Must(copyValue(value))
}

func checkPath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
	}

	return nil
}

// conflicts reports whether one path is a dotted prefix of the other.
func conflicts(a, b string) bool {
	if a == b {
		return false
	}

	return strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".")
}

package wizard

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/amp-labs/amp-wizard/prompter"
	"go.uber.org/atomic"
)

// Binder builds the prompter for a field from the answers so far. Returning
// a nil prompter means the field does not apply under the current state and
// is skipped without prompting.
type Binder[T any] func(snap Snapshot) (prompter.Prompter[T], error)

// Predicate decides whether a field is shown for the current state.
type Predicate func(snap Snapshot) (bool, error)

// FieldOption configures a bound field.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	showWhen     Predicate
	dependencies []string
	description  string
}

// ShowWhen makes the field conditional. The predicate is evaluated afresh
// every time the field is reached, in both directions.
func ShowWhen(pred Predicate) FieldOption {
	return func(c *fieldConfig) {
		c.showWhen = pred
	}
}

// DependsOn records the paths the field's predicate and binder read. It is
// used for introspection (Fields, the visualizer, Form.Check); the engine
// never uses it to skip evaluation.
func DependsOn(paths ...string) FieldOption {
	return func(c *fieldConfig) {
		c.dependencies = append(c.dependencies, paths...)
	}
}

// Describe attaches a human readable description to the field.
func Describe(description string) FieldOption {
	return func(c *fieldConfig) {
		c.description = description
	}
}

// FieldInfo describes a declared field.
type FieldInfo struct {
	Path         string
	Description  string
	Dependencies []string
	Conditional  bool
}

// field is the type-erased form of a bound field.
type field struct {
	path   string
	config fieldConfig
	bind   func(snap Snapshot) (step, error)
}

func (f *field) info() FieldInfo {
	return FieldInfo{
		Path:         f.path,
		Description:  f.config.description,
		Dependencies: slices.Clone(f.config.dependencies),
		Conditional:  f.config.showWhen != nil,
	}
}

// Form is the ordered list of fields a wizard asks for. Declaration order is
// the order in which fields are visited.
//
// A Form may be run any number of times, but once it has been run no more
// fields can be bound.
type Form struct {
	mu     sync.Mutex
	fields []*field
	paths  map[string]struct{}
	sealed *atomic.Bool
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{
		paths:  make(map[string]struct{}),
		sealed: atomic.NewBool(false),
	}
}

// BindPrompter declares the field stored at key's path.
func BindPrompter[T any](form *Form, key Key[T], binder Binder[T], opts ...FieldOption) error {
	if binder == nil {
		return &DeclarationError{Path: key.Path(), Err: ErrNilBinder}
	}

	config := fieldConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	return form.add(&field{
		path:   key.Path(),
		config: config,
		bind: func(snap Snapshot) (step, error) {
			p, err := binder(snap)
			if err != nil || p == nil {
				return nil, err
			}

			return &typedStep[T]{prompter: p}, nil
		},
	})
}

// MustBindPrompter is BindPrompter for declarations that are known to be
// valid, such as package-level forms. It panics on a declaration error.
func MustBindPrompter[T any](form *Form, key Key[T], binder Binder[T], opts ...FieldOption) {
	if err := BindPrompter(form, key, binder, opts...); err != nil {
		panic(err)
	}
}

func (f *Form) add(fld *field) error {
	if f.sealed.Load() {
		return &DeclarationError{Path: fld.path, Err: ErrFormSealed}
	}

	if err := checkPath(fld.path); err != nil {
		return &DeclarationError{Path: fld.path, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.paths[fld.path]; ok {
		return &DeclarationError{Path: fld.path, Err: ErrDuplicatePath}
	}

	for other := range f.paths {
		if conflicts(fld.path, other) {
			return &DeclarationError{Path: fld.path, Err: fmt.Errorf("%w: %q", ErrPathConflict, other)}
		}
	}

	f.paths[fld.path] = struct{}{}
	f.fields = append(f.fields, fld)

	return nil
}

// seal stops further declarations and returns the fields to run.
func (f *Form) seal() []*field {
	f.sealed.Store(true)

	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.fields)
}

// Fields describes the declared fields in order.
func (f *Form) Fields() []FieldInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	infos := make([]FieldInfo, len(f.fields))
	for i, fld := range f.fields {
		infos[i] = fld.info()
	}

	return infos
}

// Len returns the number of declared fields.
func (f *Form) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.fields)
}

// Check verifies that every declared dependency is written by an earlier
// field, so that predicates never read a path that cannot be set yet.
func (f *Form) Check() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	written := make(map[string]struct{}, len(f.fields))

	for _, fld := range f.fields {
		for _, dep := range fld.config.dependencies {
			if !coveredBy(dep, written) {
				return &DeclarationError{Path: fld.path, Err: fmt.Errorf("%w: %q", ErrUnknownDependency, dep)}
			}
		}

		written[fld.path] = struct{}{}
	}

	return nil
}

// coveredBy reports whether dep is a written path, or an object holding one.
func coveredBy(dep string, written map[string]struct{}) bool {
	if _, ok := written[dep]; ok {
		return true
	}

	for path := range written {
		if conflicts(dep, path) && len(dep) < len(path) {
			return true
		}
	}

	return false
}

// step is one bound prompter, with its type erased for the engine.
type step interface {
	prompt(ctx context.Context) (answer any, cancelled bool, err error)
	prefill(value any)
	setStep(current, total int)
	dispose() error
}

type typedStep[T any] struct {
	prompter prompter.Prompter[T]
}

func (s *typedStep[T]) prompt(ctx context.Context) (any, bool, error) {
	res, err := s.prompter.Prompt(ctx)
	if err != nil {
		return nil, false, err
	}

	value, ok := res.Get()

	return value, !ok, nil
}

// prefill forwards value when the prompter supports it and the value has the
// field's type; values restored from untyped sources are converted first.
func (s *typedStep[T]) prefill(value any) {
	filler, ok := s.prompter.(prompter.Prefiller[T])
	if !ok {
		return
	}

	typed, err := convert[T](value)
	if err != nil {
		return
	}

	filler.Prefill(typed)
}

func (s *typedStep[T]) setStep(current, total int) {
	if aware, ok := s.prompter.(prompter.StepAware); ok {
		aware.SetStep(current, total)
	}
}

func (s *typedStep[T]) dispose() error {
	return s.prompter.Dispose()
}

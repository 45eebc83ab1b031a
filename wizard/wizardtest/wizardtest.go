// Package wizardtest inspects which fields of a form would be shown, without
// running a wizard or a UI. State is built up by applying inputs to fields,
// then visibility is asserted field by field:
//
//	tester := wizardtest.New(t, form)
//	tester.Field("foo").AssertShowFirst()
//	tester.Field("bar").AssertDoesNotShow()
//
//	tester.Field("foo").ApplyInput("Hello, world!")
//	tester.Field("bar").AssertShow()
package wizardtest

import (
	"slices"
	"testing"

	"github.com/amp-labs/amp-wizard/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tester holds a form and the state its predicates and binders are judged
// against.
type Tester struct {
	t     *testing.T
	form  *wizard.Form
	state *wizard.State
}

// New creates a tester starting from an empty state.
func New(t *testing.T, form *wizard.Form) *Tester {
	t.Helper()

	return &Tester{t: t, form: form, state: wizard.NewState()}
}

// NewWithState creates a tester starting from a nested object.
func NewWithState(t *testing.T, form *wizard.Form, nested map[string]any) *Tester {
	t.Helper()

	state, err := wizard.StateFromMap(nested)
	require.NoError(t, err, "invalid initial state")

	return &Tester{t: t, form: form, state: state}
}

// Field returns the inspector for a declared field. Undeclared paths fail
// the test.
func (wt *Tester) Field(path string) *Field {
	wt.t.Helper()

	declared := slices.ContainsFunc(wt.form.Fields(), func(info wizard.FieldInfo) bool {
		return info.Path == path
	})
	require.True(wt.t, declared, "form has no field %q", path)

	return &Field{tester: wt, path: path}
}

// Snapshot returns the state built so far.
func (wt *Tester) Snapshot() wizard.Snapshot {
	return wt.state.Snapshot()
}

// Visible returns the paths that would be shown for the current state.
func (wt *Tester) Visible() []string {
	wt.t.Helper()

	visible, err := wizard.VisibleFields(wt.form, wt.state.Snapshot())
	require.NoError(wt.t, err, "evaluating fields")

	return visible
}

// AssertVisible asserts exactly which fields would be shown, in order.
func (wt *Tester) AssertVisible(paths ...string) {
	wt.t.Helper()

	if len(paths) == 0 {
		assert.Empty(wt.t, wt.Visible(), "expected no visible fields")

		return
	}

	assert.Equal(wt.t, paths, wt.Visible())
}

// Field inspects one field of the form.
type Field struct {
	tester *Tester
	path   string
}

// Path returns the field's path.
func (f *Field) Path() string {
	return f.path
}

// ApplyInput records value as the field's answer, as if the user had given
// it. Later assertions see it.
func (f *Field) ApplyInput(value any) *Field {
	f.tester.t.Helper()

	require.NoError(f.tester.t, f.tester.state.Set(f.path, value), "applying input to %q", f.path)

	return f
}

// ClearInput removes the field's answer.
func (f *Field) ClearInput() *Field {
	f.tester.state.Unset(f.path)

	return f
}

// AssertShow asserts the field would be shown.
func (f *Field) AssertShow() {
	f.tester.t.Helper()

	assert.Contains(f.tester.t, f.tester.Visible(), f.path, "field %q should be shown", f.path)
}

// AssertShowFirst asserts the field is the first one shown.
func (f *Field) AssertShowFirst() {
	f.tester.t.Helper()

	f.AssertShowAt(0)
}

// AssertShowAt asserts the field is shown at position index (zero based)
// among the visible fields.
func (f *Field) AssertShowAt(index int) {
	f.tester.t.Helper()

	visible := f.tester.Visible()

	if !assert.Contains(f.tester.t, visible, f.path, "field %q should be shown", f.path) {
		return
	}

	assert.Equal(f.tester.t, index, slices.Index(visible, f.path),
		"field %q shown at the wrong position in %q", f.path, visible)
}

// AssertDoesNotShow asserts the field would be skipped.
func (f *Field) AssertDoesNotShow() {
	f.tester.t.Helper()

	assert.NotContains(f.tester.t, f.tester.Visible(), f.path, "field %q should not be shown", f.path)
}

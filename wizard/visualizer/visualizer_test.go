package visualizer

import (
	"strings"
	"testing"

	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/amp-labs/amp-wizard/prompter/prompttest"
	"github.com/amp-labs/amp-wizard/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resourceForm(t *testing.T) *wizard.Form {
	t.Helper()

	host := prompttest.NewHost(t)
	text := func(title string) wizard.Binder[string] {
		return func(wizard.Snapshot) (prompter.Prompter[string], error) {
			return prompter.NewInput(host, title), nil
		}
	}
	always := wizard.ShowWhen(func(wizard.Snapshot) (bool, error) { return true, nil })

	form := wizard.NewForm()
	wizard.MustBindPrompter(form, wizard.NewKey[string]("kind"), text("kind"), wizard.Describe(`The "kind"`))
	wizard.MustBindPrompter(form, wizard.NewKey[string]("bucket.name"), text("bucket"), always, wizard.DependsOn("kind"))
	wizard.MustBindPrompter(form, wizard.NewKey[string]("summary"), text("summary"), wizard.DependsOn("bucket"))

	return form
}

func TestGenerateMermaid(t *testing.T) {
	t.Parallel()

	out, err := GenerateMermaid(resourceForm(t))
	require.NoError(t, err)

	for _, want := range []string{
		"```mermaid\nflowchart TD\n",
		`f0["kind<br/>The #quot;kind#quot;"]`,
		`f1{"bucket.name"}`,
		`f2["summary"]`,
		"start --> f0",
		"f0 --> f1",
		"f1 -- skip --> f2",
		"f1 --> f2",
		"f2 --> done",
		"f0 -.-> f1",
		"f1 -.-> f2",
		"class f1 conditional",
	} {
		assert.Contains(t, out, want)
	}

	assert.True(t, strings.HasSuffix(out, "```\n"))
}

func TestGenerateMermaidWithOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions().
		WithDirection("LR").
		WithShowDependencies(false).
		WithShowDescriptions(false).
		WithHighlightPath([]string{"bucket.name"})

	out, err := GenerateMermaidWithOptions(resourceForm(t), opts)
	require.NoError(t, err)

	assert.Contains(t, out, "flowchart LR")
	assert.Contains(t, out, `f0["kind"]`)
	assert.Contains(t, out, "class f1 highlighted")
	assert.NotContains(t, out, "-.->")
	assert.NotContains(t, out, "class f1 conditional")
}

func TestGenerateMermaid_Errors(t *testing.T) {
	t.Parallel()

	_, err := GenerateMermaid(nil)
	require.ErrorIs(t, err, ErrFormNil)

	_, err = GenerateMermaid(wizard.NewForm())
	require.ErrorIs(t, err, ErrEmptyForm)

	_, err = GenerateMermaidWithOptions(resourceForm(t), DefaultOptions().WithDirection("BT"))
	require.ErrorIs(t, err, ErrDirection)
}

func TestLastConditionalFieldSkipsToDone(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t)
	form := wizard.NewForm()
	wizard.MustBindPrompter(form, wizard.NewKey[bool]("only"), func(wizard.Snapshot) (prompter.Prompter[bool], error) {
		return prompter.NewConfirm(host, "only"), nil
	}, wizard.ShowWhen(func(wizard.Snapshot) (bool, error) { return false, nil }))

	out, err := GenerateMermaid(form)
	require.NoError(t, err)
	assert.Contains(t, out, "f0 -- skip --> done")
}

package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/amp-labs/amp-wizard/prompter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func update[M tea.Model](t *testing.T, m M, msg tea.Msg) M {
	t.Helper()

	next, _ := m.Update(msg)

	out, ok := next.(M)
	require.True(t, ok, "unexpected model %T", next)

	return out
}

func TestPickModel_StreamsAndSelects(t *testing.T) {
	t.Parallel()

	m := newPickModel(t.Context(), prompter.PickRequest{Title: "region", Step: 2, TotalSteps: 3})

	m = update(t, m, batchMsg{{Label: "us-east-1"}, {Label: "us-west-2"}})
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "loading more")

	m = update(t, m, key(tea.KeyDown))
	m = update(t, m, batchMsg{{Label: "eu-west-1"}})
	m = update(t, m, loadedMsg{})
	assert.False(t, m.loading)
	assert.NotContains(t, m.View(), "loading more")

	m = update(t, m, key(tea.KeyEnter))
	require.True(t, m.done)
	assert.Equal(t, prompter.Selection{Index: 1}, m.selection)
	assert.Empty(t, m.View())
}

func TestPickModel_PickedChoiceIsHighlighted(t *testing.T) {
	t.Parallel()

	m := newPickModel(t.Context(), prompter.PickRequest{Title: "size"})
	m = update(t, m, batchMsg{{Label: "s"}, {Label: "m", Picked: true}, {Label: "l"}})
	m = update(t, m, key(tea.KeyEnter))

	assert.Equal(t, prompter.Selection{Index: 1}, m.selection)
}

func TestPickModel_EnterWithoutItems(t *testing.T) {
	t.Parallel()

	m := newPickModel(t.Context(), prompter.PickRequest{Title: "empty"})
	m = update(t, m, key(tea.KeyEnter))

	assert.False(t, m.done)
}

func TestPickModel_Cancel(t *testing.T) {
	t.Parallel()

	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newPickModel(t.Context(), prompter.PickRequest{Title: "x"})
		m = update(t, m, batchMsg{{Label: "a"}})
		m = update(t, m, key(k))

		assert.True(t, m.done)
		assert.True(t, m.selection.Cancelled)
	}
}

func TestWaitForBatch(t *testing.T) {
	t.Parallel()

	items := make(chan []prompter.Choice, 1)
	items <- []prompter.Choice{{Label: "a"}}

	assert.Equal(t, batchMsg{{Label: "a"}}, waitForBatch(t.Context(), items)())

	close(items)
	assert.Equal(t, loadedMsg{}, waitForBatch(t.Context(), items)())
}

func TestInputModel(t *testing.T) {
	t.Parallel()

	m := newInputModel(prompter.InputRequest{Title: "name", Value: "dem"})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	m = update(t, m, key(tea.KeyEnter))

	require.True(t, m.done)
	assert.Equal(t, prompter.Entry{Value: "demo"}, m.entry)
}

func TestInputModel_Validation(t *testing.T) {
	t.Parallel()

	errShort := errors.New("too short")

	m := newInputModel(prompter.InputRequest{
		Title: "name",
		Validate: func(s string) error {
			if len(s) < 3 {
				return errShort
			}

			return nil
		},
	})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	m = update(t, m, key(tea.KeyEnter))
	assert.False(t, m.done)
	assert.Contains(t, m.View(), "too short")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.NotContains(t, m.View(), "too short")

	m = update(t, m, key(tea.KeyEnter))
	assert.Equal(t, prompter.Entry{Value: "abc"}, m.entry)
}

func TestInputModel_PasswordAndCancel(t *testing.T) {
	t.Parallel()

	m := newInputModel(prompter.InputRequest{Title: "token", Value: "secret", Password: true})
	assert.NotContains(t, m.View(), "secret")

	m = update(t, m, key(tea.KeyEsc))
	assert.True(t, m.done)
	assert.True(t, m.entry.Cancelled)
}

func TestHost_ContextAlreadyDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewHost().Input(ctx, prompter.InputRequest{Title: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

package tui

import (
	"context"

	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type choiceItem struct {
	choice prompter.Choice
}

func (i choiceItem) Title() string       { return i.choice.Label }
func (i choiceItem) Description() string { return i.choice.Description }
func (i choiceItem) FilterValue() string { return i.choice.Label }

// batchMsg carries the next page of choices; loadedMsg says there are no
// more.
type (
	batchMsg  []prompter.Choice
	loadedMsg struct{}
)

// waitForBatch reads one batch. It gives up when ctx ends, which happens
// once the prompter has its answer.
func waitForBatch(ctx context.Context, items <-chan []prompter.Choice) tea.Cmd {
	return func() tea.Msg {
		select {
		case batch, ok := <-items:
			if !ok {
				return loadedMsg{}
			}

			return batchMsg(batch)
		case <-ctx.Done():
			return nil
		}
	}
}

// pickModel shows choices as they arrive, with a spinner until the last
// batch. Enter picks the highlighted choice even while loading continues.
type pickModel struct {
	ctx     context.Context //nolint:containedctx // scopes the batch reader
	items   <-chan []prompter.Choice
	list    list.Model
	spinner spinner.Model
	loading bool
	count   int

	selection prompter.Selection
	done      bool
}

func newPickModel(ctx context.Context, req prompter.PickRequest) pickModel {
	return pickModel{
		ctx:     ctx,
		items:   req.Items,
		list:    newList(heading(req.Title, req.Step, req.TotalSteps)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
	}
}

func (m pickModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForBatch(m.ctx, m.items))
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height-2, defaultHeight))

		return m, nil
	case batchMsg:
		return m.addBatch(msg)
	case loadedMsg:
		m.loading = false

		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.selection = prompter.Selection{Cancelled: true}
			m.done = true

			return m, tea.Quit
		case "enter":
			if m.count == 0 {
				return m, nil
			}

			m.selection = prompter.Selection{Index: m.list.Index()}
			m.done = true

			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m pickModel) addBatch(batch batchMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForBatch(m.ctx, m.items)}

	for _, c := range batch {
		cmds = append(cmds, m.list.InsertItem(m.count, choiceItem{choice: c}))

		if c.Picked {
			m.list.Select(m.count)
		}

		m.count++
	}

	return m, tea.Batch(cmds...)
}

func (m pickModel) View() string {
	if m.done {
		return ""
	}

	footer := stylePrompt.Render("↑/↓ move • enter select • esc back")
	if m.loading {
		footer = m.spinner.View() + styleSubtitle.Render(" loading more… ") + footer
	}

	return m.list.View() + "\n" + footer + "\n"
}

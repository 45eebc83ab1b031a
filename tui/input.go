package tui

import (
	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputModel edits one line of text. Enter submits once the request's
// validator accepts the text.
type inputModel struct {
	title    string
	prompt   string
	input    textinput.Model
	validate func(string) error
	invalid  string

	entry prompter.Entry
	done  bool
}

func newInputModel(req prompter.InputRequest) inputModel {
	input := textinput.New()
	input.Prompt = stylePrompt.Render("> ")
	input.Placeholder = req.Placeholder
	input.SetValue(req.Value)
	input.Width = defaultWidth - 4
	input.Focus()

	if req.Password {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}

	return inputModel{
		title:    heading(req.Title, req.Step, req.TotalSteps),
		prompt:   req.Prompt,
		input:    input,
		validate: req.Validate,
	}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 4

		return m, nil
	case tea.KeyMsg:
		switch msg.Type { //nolint:exhaustive // every other key edits the text
		case tea.KeyCtrlC, tea.KeyEsc:
			m.entry = prompter.Entry{Cancelled: true}
			m.done = true

			return m, tea.Quit
		case tea.KeyEnter:
			value := m.input.Value()

			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.invalid = err.Error()

					return m, nil
				}
			}

			m.entry = prompter.Entry{Value: value}
			m.done = true

			return m, tea.Quit
		}
	}

	m.invalid = ""

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}

	view := m.title + "\n"
	if m.prompt != "" {
		view += styleSubtitle.Render(m.prompt) + "\n"
	}

	view += "\n" + m.input.View() + "\n\n"

	if m.invalid != "" {
		view += styleError.Render(m.invalid) + "\n"
	}

	return view + stylePrompt.Render("enter continue • esc back") + "\n"
}

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	styleSubtitle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	stylePrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styleStep     = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

const (
	defaultWidth  = 80
	defaultHeight = 16
)

func heading(title string, step, total int) string {
	if step <= 0 || total <= 0 {
		return styleTitle.Render(title)
	}

	return styleStep.Render(fmt.Sprintf("[%d/%d]", step, total)) + " " + styleTitle.Render(title)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("252"))
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("205")).Bold(true)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.Foreground(lipgloss.Color("244")).Italic(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("212")).Italic(true)

	l := list.New(nil, delegate, defaultWidth, defaultHeight)
	l.Title = title
	l.Styles.Title = lipgloss.NewStyle()
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)

	return l
}

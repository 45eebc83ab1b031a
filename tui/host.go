// Package tui answers wizard questions with a Bubble Tea interface. Lists
// fill in as pages of items arrive; Esc or Ctrl+C goes back a step.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/amp-labs/amp-wizard/prompter"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrUnexpectedModel is returned if a program ends with a model of a type it
// was not started with.
var ErrUnexpectedModel = errors.New("question ended with an unexpected model")

// Host runs one Bubble Tea program per question.
type Host struct {
	opts []tea.ProgramOption
}

var _ prompter.Host = (*Host)(nil)

// HostOption configures a Host.
type HostOption func(*Host)

// WithIO reads keys from in and draws on out instead of the terminal.
func WithIO(in io.Reader, out io.Writer) HostOption {
	return func(h *Host) {
		h.opts = append(h.opts, tea.WithInput(in), tea.WithOutput(out))
	}
}

// NewHost creates a Bubble Tea host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Host) Pick(ctx context.Context, req prompter.PickRequest) (prompter.Selection, error) {
	final, err := run(ctx, newPickModel(ctx, req), h.opts)
	if err != nil {
		return prompter.Selection{}, err
	}

	m, ok := final.(pickModel)
	if !ok {
		return prompter.Selection{}, fmt.Errorf("%w: %T", ErrUnexpectedModel, final)
	}

	if !m.done {
		return prompter.Selection{Cancelled: true}, nil
	}

	return m.selection, nil
}

func (h *Host) Input(ctx context.Context, req prompter.InputRequest) (prompter.Entry, error) {
	final, err := run(ctx, newInputModel(req), h.opts)
	if err != nil {
		return prompter.Entry{}, err
	}

	m, ok := final.(inputModel)
	if !ok {
		return prompter.Entry{}, fmt.Errorf("%w: %T", ErrUnexpectedModel, final)
	}

	if !m.done {
		return prompter.Entry{Cancelled: true}, nil
	}

	return m.entry, nil
}

func run(ctx context.Context, model tea.Model, opts []tea.ProgramOption) (tea.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)

	final, err := tea.NewProgram(model, opts...).Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err != nil {
		return nil, err
	}

	return final, nil
}

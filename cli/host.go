package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/manifoldco/promptui"
)

// BackLabel is the list entry that goes back a step.
const BackLabel = "← Back"

const defaultListSize = 10

// Host asks questions on the terminal with promptui. Ctrl+C or Ctrl+D on
// any question, or the Back entry of a list, goes back a step.
//
// promptui cannot be interrupted while it reads, so a context ending during
// a question only takes effect once the user answers.
type Host struct {
	stdin    io.ReadCloser
	stdout   io.WriteCloser
	listSize int
}

var _ prompter.Host = (*Host)(nil)

// HostOption configures a Host.
type HostOption func(*Host)

// WithStdio reads answers from in and draws on out instead of the terminal.
func WithStdio(in io.ReadCloser, out io.WriteCloser) HostOption {
	return func(h *Host) {
		h.stdin = in
		h.stdout = out
	}
}

// WithListSize sets how many list items are visible at once.
func WithListSize(size int) HostOption {
	return func(h *Host) {
		h.listSize = size
	}
}

// NewHost creates a terminal host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{stdin: os.Stdin, stdout: os.Stdout, listSize: defaultListSize}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

type row struct {
	Label       string
	Description string
	Detail      string
}

func (h *Host) Pick(ctx context.Context, req prompter.PickRequest) (prompter.Selection, error) {
	_, _ = fmt.Fprintf(h.stdout, "%s …\r", heading(req.Title, req.Step, req.TotalSteps))

	choices, err := drain(ctx, req.Items)
	if err != nil {
		return prompter.Selection{}, err
	}

	rows, cursor := rowsFor(choices, req.Step > 1)

	sel := promptui.Select{
		Label:     heading(req.Title, req.Step, req.TotalSteps),
		Items:     rows,
		Size:      h.listSize,
		CursorPos: cursor,
		Stdin:     h.stdin,
		Stdout:    h.stdout,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ .Label | cyan }}",
			Inactive: "  {{ .Label }}",
			Selected: "✔ {{ .Label | green }}",
			Details:  "{{ if .Description }}{{ .Description | faint }}{{ end }}",
		},
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(rows[index].Label), strings.ToLower(input))
		},
	}

	index, _, err := sel.Run()

	switch {
	case isCancel(err):
		return prompter.Selection{Cancelled: true}, nil
	case err != nil:
		return prompter.Selection{}, err
	case ctx.Err() != nil:
		return prompter.Selection{}, ctx.Err()
	case index >= len(choices):
		return prompter.Selection{Cancelled: true}, nil
	default:
		return prompter.Selection{Index: index}, nil
	}
}

func (h *Host) Input(ctx context.Context, req prompter.InputRequest) (prompter.Entry, error) {
	if err := ctx.Err(); err != nil {
		return prompter.Entry{}, err
	}

	label := heading(req.Title, req.Step, req.TotalSteps)
	if req.Prompt != "" {
		label += " " + req.Prompt
	}

	prompt := promptui.Prompt{
		Label:     label,
		Default:   req.Value,
		AllowEdit: true,
		Stdin:     h.stdin,
		Stdout:    h.stdout,
	}

	if req.Validate != nil {
		prompt.Validate = promptui.ValidateFunc(req.Validate)
	}

	if req.Password {
		prompt.Mask = '*'
	}

	value, err := prompt.Run()

	switch {
	case isCancel(err):
		return prompter.Entry{Cancelled: true}, nil
	case err != nil:
		return prompter.Entry{}, err
	case ctx.Err() != nil:
		return prompter.Entry{}, ctx.Err()
	default:
		return prompter.Entry{Value: value}, nil
	}
}

// drain waits for every batch of choices.
func drain(ctx context.Context, items <-chan []prompter.Choice) ([]prompter.Choice, error) {
	var choices []prompter.Choice

	for {
		select {
		case batch, ok := <-items:
			if !ok {
				return choices, nil
			}

			choices = append(choices, batch...)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// rowsFor lays out the list and finds the row to start on: the previously
// picked choice, if any.
func rowsFor(choices []prompter.Choice, withBack bool) ([]row, int) {
	rows := make([]row, 0, len(choices)+1)
	cursor := 0

	for i, c := range choices {
		if c.Picked {
			cursor = i
		}

		rows = append(rows, row{Label: c.Label, Description: c.Description, Detail: c.Detail})
	}

	if withBack {
		rows = append(rows, row{Label: BackLabel})
	}

	return rows, cursor
}

func heading(title string, step, total int) string {
	if step <= 0 || total <= 0 {
		return title
	}

	return fmt.Sprintf("[%d/%d] %s", step, total, title)
}

func isCancel(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF) ||
		errors.Is(err, promptui.ErrAbort)
}

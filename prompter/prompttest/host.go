// Package prompttest provides test doubles for prompter hosts: a scripted
// Host that answers questions from a queue, and a Tester that drives a single
// prompter step by step.
package prompttest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/amp-labs/amp-wizard/prompter"
)

var (
	// ErrNoResponse is returned when the host is asked a question but its
	// script is exhausted.
	ErrNoResponse = errors.New("no scripted response left")

	// ErrUnexpectedQuestion is returned when the next scripted response does
	// not fit the question kind, e.g. Type for a pick list.
	ErrUnexpectedQuestion = errors.New("unexpected question")

	// ErrNoSuchItem is returned when a scripted pick names a label that was
	// not offered.
	ErrNoSuchItem = errors.New("no item with label")
)

// Kind is the kind of question a host was asked.
type Kind string

const (
	KindPick  Kind = "pick"
	KindInput Kind = "input"
)

type action int

const (
	actionPick action = iota
	actionType
	actionAccept
	actionBack
)

// Response is one scripted user action.
type Response struct {
	action action
	value  string
}

// Pick selects the first item labelled label.
func Pick(label string) Response {
	return Response{action: actionPick, value: label}
}

// Type submits value to a text question.
func Type(value string) Response {
	return Response{action: actionType, value: value}
}

// Accept keeps the prefilled answer: the picked item of a list, or the
// initial text of an input.
func Accept() Response {
	return Response{action: actionAccept}
}

// Back cancels the current question.
func Back() Response {
	return Response{action: actionBack}
}

func (r Response) String() string {
	switch r.action {
	case actionPick:
		return fmt.Sprintf("Pick(%q)", r.value)
	case actionType:
		return fmt.Sprintf("Type(%q)", r.value)
	case actionAccept:
		return "Accept()"
	case actionBack:
		return "Back()"
	default:
		return "?"
	}
}

// Request records a question the host was asked.
type Request struct {
	Kind       Kind
	Title      string
	Step       int
	TotalSteps int

	// Labels and Picked are set for pick questions.
	Labels []string
	Picked []string

	// Value is the initial text of an input question.
	Value    string
	Password bool
}

// Host answers questions from a script. It is safe for use by one wizard
// run at a time.
type Host struct {
	t testing.TB

	mu        sync.Mutex
	responses []Response
	requests  []Request
}

var _ prompter.Host = (*Host)(nil)

// NewHost creates a host that answers with responses, in order.
func NewHost(t testing.TB, responses ...Response) *Host {
	t.Helper()

	return &Host{t: t, responses: responses}
}

// Push appends responses to the script.
func (h *Host) Push(responses ...Response) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.responses = append(h.responses, responses...)
}

// Requests returns every question asked so far.
func (h *Host) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Clone(h.requests)
}

// Titles returns the titles of every question asked so far, in order.
func (h *Host) Titles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	titles := make([]string, len(h.requests))
	for i, req := range h.requests {
		titles[i] = req.Title
	}

	return titles
}

// Remaining returns how many scripted responses have not been used.
func (h *Host) Remaining() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.responses)
}

func (h *Host) next(req Request) (Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.requests = append(h.requests, req)

	if len(h.responses) == 0 {
		h.t.Logf("prompttest: %s %q asked with an empty script", req.Kind, req.Title)

		return Response{}, fmt.Errorf("%w: %s %q", ErrNoResponse, req.Kind, req.Title)
	}

	resp := h.responses[0]
	h.responses = h.responses[1:]

	return resp, nil
}

// Pick waits for every item to load, then answers with the next response.
func (h *Host) Pick(ctx context.Context, req prompter.PickRequest) (prompter.Selection, error) {
	choices, err := Drain(ctx, req.Items)
	if err != nil {
		return prompter.Selection{}, err
	}

	record := Request{
		Kind:       KindPick,
		Title:      req.Title,
		Step:       req.Step,
		TotalSteps: req.TotalSteps,
		Labels:     Labels(choices),
	}

	for _, c := range choices {
		if c.Picked {
			record.Picked = append(record.Picked, c.Label)
		}
	}

	resp, err := h.next(record)
	if err != nil {
		return prompter.Selection{}, err
	}

	return selectionFor(resp, record.Title, choices)
}

// Input answers with the next response. Typed text must pass the request's
// validator.
func (h *Host) Input(_ context.Context, req prompter.InputRequest) (prompter.Entry, error) {
	resp, err := h.next(Request{
		Kind:       KindInput,
		Title:      req.Title,
		Step:       req.Step,
		TotalSteps: req.TotalSteps,
		Value:      req.Value,
		Password:   req.Password,
	})
	if err != nil {
		return prompter.Entry{}, err
	}

	return entryFor(resp, req)
}

func selectionFor(resp Response, title string, choices []prompter.Choice) (prompter.Selection, error) {
	switch resp.action {
	case actionBack:
		return prompter.Selection{Cancelled: true}, nil
	case actionPick:
		for i, c := range choices {
			if c.Label == resp.value {
				return prompter.Selection{Index: i}, nil
			}
		}

		return prompter.Selection{}, fmt.Errorf("%w %q in %q (have %q)", ErrNoSuchItem, resp.value, title, Labels(choices))
	case actionAccept:
		for i, c := range choices {
			if c.Picked {
				return prompter.Selection{Index: i}, nil
			}
		}

		return prompter.Selection{}, fmt.Errorf("%w: nothing is picked in %q", ErrNoSuchItem, title)
	case actionType:
		return prompter.Selection{}, fmt.Errorf("%w: %s for pick %q", ErrUnexpectedQuestion, resp, title)
	}

	return prompter.Selection{}, ErrUnexpectedQuestion
}

func entryFor(resp Response, req prompter.InputRequest) (prompter.Entry, error) {
	var value string

	switch resp.action {
	case actionBack:
		return prompter.Entry{Cancelled: true}, nil
	case actionType:
		value = resp.value
	case actionAccept:
		value = req.Value
	case actionPick:
		return prompter.Entry{}, fmt.Errorf("%w: %s for input %q", ErrUnexpectedQuestion, resp, req.Title)
	}

	if req.Validate != nil {
		if err := req.Validate(value); err != nil {
			return prompter.Entry{}, fmt.Errorf("input %q rejected %q: %w", req.Title, value, err)
		}
	}

	return prompter.Entry{Value: value}, nil
}

// Drain reads every batch from items until it is closed.
func Drain(ctx context.Context, items <-chan []prompter.Choice) ([]prompter.Choice, error) {
	var all []prompter.Choice

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case batch, ok := <-items:
			if !ok {
				return all, nil
			}

			all = append(all, batch...)
		}
	}
}

// Labels returns the label of each choice.
func Labels(choices []prompter.Choice) []string {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}

	return labels
}

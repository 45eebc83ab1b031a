package prompttest

import (
	"context"
	"testing"
	"time"

	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DefaultTimeout bounds every wait performed by a Tester.
const DefaultTimeout = 5 * time.Second

type question struct {
	pick    *prompter.PickRequest
	input   *prompter.InputRequest
	choices []prompter.Choice
	answer  chan any
}

type outcome[T any] struct {
	result prompter.Result[T]
	err    error
}

// Tester drives one prompter in isolation. The prompter runs in the
// background against an interactive host; each Tester method waits for the
// question the prompter is currently asking and answers or inspects it.
type Tester[T any] struct {
	t         *testing.T
	prompter  prompter.Prompter[T]
	questions chan *question
	current   *question
	done      chan outcome[T]
	finished  *outcome[T]
	timeout   time.Duration
}

// NewTester builds a prompter against an interactive host and starts
// prompting. The prompter is disposed when the test ends.
func NewTester[T any](t *testing.T, build func(prompter.Host) prompter.Prompter[T]) *Tester[T] {
	t.Helper()

	tester := &Tester[T]{
		t:         t,
		questions: make(chan *question),
		done:      make(chan outcome[T], 1),
		timeout:   DefaultTimeout,
	}

	tester.prompter = build(&interactiveHost{questions: tester.questions})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		res, err := tester.prompter.Prompt(ctx)
		tester.done <- outcome[T]{result: res, err: err}
	}()

	t.Cleanup(func() {
		cancel()

		_ = tester.prompter.Dispose()
	})

	return tester
}

// Prompter returns the prompter under test.
func (pt *Tester[T]) Prompter() prompter.Prompter[T] {
	return pt.prompter
}

func (pt *Tester[T]) await() *question {
	pt.t.Helper()

	if pt.current != nil {
		return pt.current
	}

	select {
	case q := <-pt.questions:
		pt.current = q

		return q
	case out := <-pt.done:
		pt.finished = &out
		require.FailNow(pt.t, "prompter finished without asking", "result %v, error %v", out.result, out.err)
	case <-time.After(pt.timeout):
		require.FailNow(pt.t, "timed out waiting for the prompter to ask")
	}

	return nil
}

func (pt *Tester[T]) awaitPick() *question {
	pt.t.Helper()

	q := pt.await()
	require.NotNil(pt.t, q.pick, "prompter asked for text input, not a pick")

	return q
}

func (pt *Tester[T]) respond(answer any) {
	pt.current.answer <- answer
	pt.current = nil
}

// AssertItems asserts the labels offered by the prompter, in order.
func (pt *Tester[T]) AssertItems(labels ...string) {
	pt.t.Helper()

	q := pt.awaitPick()
	assert.Equal(pt.t, labels, Labels(q.choices))
}

// AssertPicked asserts which labels are marked as the previous answer.
func (pt *Tester[T]) AssertPicked(labels ...string) {
	pt.t.Helper()

	q := pt.awaitPick()

	var picked []string

	for _, c := range q.choices {
		if c.Picked {
			picked = append(picked, c.Label)
		}
	}

	assert.Equal(pt.t, labels, picked)
}

// AssertValue asserts the initial text of the current input question.
func (pt *Tester[T]) AssertValue(value string) {
	pt.t.Helper()

	q := pt.await()
	require.NotNil(pt.t, q.input, "prompter asked for a pick, not text input")
	assert.Equal(pt.t, value, q.input.Value)
}

// AcceptItem selects the first item labelled label.
func (pt *Tester[T]) AcceptItem(label string) {
	pt.t.Helper()

	q := pt.awaitPick()

	sel, err := selectionFor(Pick(label), q.pick.Title, q.choices)
	require.NoError(pt.t, err)

	pt.respond(sel)
}

// Type submits value to the current input question. The value must pass the
// prompter's validation.
func (pt *Tester[T]) Type(value string) {
	pt.t.Helper()

	q := pt.await()
	require.NotNil(pt.t, q.input, "prompter asked for a pick, not text input")

	entry, err := entryFor(Type(value), *q.input)
	require.NoError(pt.t, err)

	pt.respond(entry)
}

// AssertRejects asserts that the current input question refuses value.
func (pt *Tester[T]) AssertRejects(value string) {
	pt.t.Helper()

	q := pt.await()
	require.NotNil(pt.t, q.input, "prompter asked for a pick, not text input")
	require.NotNil(pt.t, q.input.Validate, "input has no validation")
	assert.Error(pt.t, q.input.Validate(value))
}

// Cancel dismisses the current question.
func (pt *Tester[T]) Cancel() {
	pt.t.Helper()

	q := pt.await()
	if q.pick != nil {
		pt.respond(prompter.Selection{Cancelled: true})
	} else {
		pt.respond(prompter.Entry{Cancelled: true})
	}
}

func (pt *Tester[T]) outcome() outcome[T] {
	pt.t.Helper()

	if pt.finished != nil {
		return *pt.finished
	}

	select {
	case out := <-pt.done:
		pt.finished = &out

		return out
	case <-time.After(pt.timeout):
		require.FailNow(pt.t, "timed out waiting for the prompter to finish")
	}

	return outcome[T]{}
}

// Result asserts that the prompter resolved to expected.
func (pt *Tester[T]) Result(expected T) {
	pt.t.Helper()

	out := pt.outcome()
	require.NoError(pt.t, out.err)

	value, ok := out.result.Get()
	require.True(pt.t, ok, "prompter was cancelled")
	assert.Equal(pt.t, expected, value)
}

// AssertCancelled asserts that the prompter finished with a cancellation.
func (pt *Tester[T]) AssertCancelled() {
	pt.t.Helper()

	out := pt.outcome()
	require.NoError(pt.t, out.err)
	assert.True(pt.t, out.result.IsCancelled(), "prompter resolved to %v", out.result)
}

// Err waits for the prompter to finish and returns its error.
func (pt *Tester[T]) Err() error {
	pt.t.Helper()

	return pt.outcome().err
}

// interactiveHost hands each question to the Tester and blocks until the
// Tester answers it.
type interactiveHost struct {
	questions chan *question
}

func (h *interactiveHost) ask(ctx context.Context, q *question) (any, error) {
	select {
	case h.questions <- q:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case answer := <-q.answer:
		return answer, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *interactiveHost) Pick(ctx context.Context, req prompter.PickRequest) (prompter.Selection, error) {
	choices, err := Drain(ctx, req.Items)
	if err != nil {
		return prompter.Selection{}, err
	}

	answer, err := h.ask(ctx, &question{pick: &req, choices: choices, answer: make(chan any, 1)})
	if err != nil {
		return prompter.Selection{}, err
	}

	sel, _ := answer.(prompter.Selection)

	return sel, nil
}

func (h *interactiveHost) Input(ctx context.Context, req prompter.InputRequest) (prompter.Entry, error) {
	answer, err := h.ask(ctx, &question{input: &req, answer: make(chan any, 1)})
	if err != nil {
		return prompter.Entry{}, err
	}

	entry, _ := answer.(prompter.Entry)

	return entry, nil
}

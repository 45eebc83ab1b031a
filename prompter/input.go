package prompter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/amp-labs/amp-wizard/optional"
)

// Input asks for free text and parses it into a T.
type Input[T any] struct {
	lifecycle

	host    Host
	title   string
	parse   func(string) (T, error)
	format  func(T) string
	opts    options
	prefill optional.Value[T]
}

var (
	_ Prompter[string]  = (*Input[string])(nil)
	_ Prefiller[string] = (*Input[string])(nil)
	_ StepAware         = (*Input[string])(nil)
)

// NewInput creates a plain text prompter.
func NewInput(host Host, title string, opts ...Option) *Input[string] {
	return NewParsedInput(host, title,
		func(s string) (string, error) { return s, nil },
		func(s string) string { return s },
		opts...)
}

// NewIntInput creates a prompter for a base-10 integer.
func NewIntInput(host Host, title string, opts ...Option) *Input[int] {
	return NewParsedInput(host, title, strconv.Atoi, strconv.Itoa, opts...)
}

// NewParsedInput creates a text prompter whose answer is parse(text). Text
// that does not parse is rejected by the host like any other validation
// failure. format renders a previous answer back into the input box.
func NewParsedInput[T any](
	host Host, title string, parse func(string) (T, error), format func(T) string, opts ...Option,
) *Input[T] {
	return &Input[T]{
		lifecycle: newLifecycle(),
		host:      host,
		title:     title,
		parse:     parse,
		format:    format,
		opts:      newOptions(opts),
	}
}

// Prefill shows value in the input box instead of the default.
func (p *Input[T]) Prefill(value T) {
	p.prefill = optional.Some(value)
}

func (p *Input[T]) Prompt(ctx context.Context) (Result[T], error) {
	runCtx, done, err := p.begin(ctx)
	if err != nil {
		return Result[T]{}, err
	}
	defer done()

	res, err := p.run(runCtx)

	return finish(ctx, &p.lifecycle, res, err)
}

func (p *Input[T]) run(ctx context.Context) (Result[T], error) {
	initial := p.opts.defaultValue
	if prev, ok := p.prefill.Get(); ok {
		initial = p.format(prev)
	}

	entry, err := p.host.Input(ctx, InputRequest{
		Title:       p.title,
		Prompt:      p.opts.prompt,
		Placeholder: p.opts.placeholder,
		Value:       initial,
		Step:        p.step,
		TotalSteps:  p.total,
		Password:    p.opts.password,
		Validate:    p.validate,
	})
	if err != nil {
		return Result[T]{}, err
	}

	if entry.Cancelled {
		return Cancelled[T](), nil
	}

	if err := p.validate(entry.Value); err != nil {
		return Result[T]{}, err
	}

	value, err := p.parse(entry.Value)
	if err != nil {
		return Result[T]{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return Resolved(value), nil
}

func (p *Input[T]) validate(text string) error {
	for _, v := range p.opts.validators {
		if err := v(text); err != nil {
			return err
		}
	}

	if _, err := p.parse(text); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}

package prompter

import (
	"fmt"
	"reflect"

	"github.com/amp-labs/amp-wizard/lazy"
	"github.com/go-playground/validator/v10"
)

var validate = lazy.New(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Option configures a prompter.
type Option func(*options)

type options struct {
	placeholder  string
	prompt       string
	defaultValue string
	password     bool
	validators   []func(string) error
	equal        func(a, b any) bool
}

func newOptions(opts []Option) options {
	o := options{equal: reflect.DeepEqual}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithPlaceholder sets the hint shown while nothing is entered or selected.
func WithPlaceholder(placeholder string) Option {
	return func(o *options) {
		o.placeholder = placeholder
	}
}

// WithPrompt sets the line shown under the title of a text prompt.
func WithPrompt(prompt string) Option {
	return func(o *options) {
		o.prompt = prompt
	}
}

// WithDefault sets the initial text of an input when there is no previous answer.
func WithDefault(value string) Option {
	return func(o *options) {
		o.defaultValue = value
	}
}

// WithPassword masks typed input.
func WithPassword() Option {
	return func(o *options) {
		o.password = true
	}
}

// WithValidate adds a text validator. Validators run in the order given.
func WithValidate(f func(string) error) Option {
	return func(o *options) {
		o.validators = append(o.validators, f)
	}
}

// WithValidateTag validates text with a go-playground/validator tag such as
// "required,min=3" or "email".
func WithValidateTag(tag string) Option {
	return WithValidate(func(s string) error {
		if err := validate.Get().Var(s, tag); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		return nil
	})
}

// WithEqual sets how a choice prompter matches items against a prefilled
// value. The default is reflect.DeepEqual.
func WithEqual(equal func(a, b any) bool) Option {
	return func(o *options) {
		o.equal = equal
	}
}

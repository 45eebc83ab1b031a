package formfile

import (
	"fmt"

	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/amp-labs/amp-wizard/wizard"
)

// Build declares def's fields on a new form whose prompters ask host.
func Build(def *Definition, host prompter.Host) (*wizard.Form, error) {
	form := wizard.NewForm()

	for _, fd := range def.Fields {
		if err := bindField(form, fd, host); err != nil {
			return nil, fmt.Errorf("field %q: %w", fd.Path, err)
		}
	}

	return form, nil
}

func bindField(form *wizard.Form, fd FieldDefinition, host prompter.Host) error {
	fieldOpts, err := fieldOptions(fd)
	if err != nil {
		return err
	}

	title := fd.Title
	if title == "" {
		title = fd.Path
	}

	switch fd.Type {
	case TypeText, TypeSecret:
		opts := inputOptions(fd)
		if fd.Type == TypeSecret {
			opts = append(opts, prompter.WithPassword())
		}

		return wizard.BindPrompter(form, wizard.NewKey[string](fd.Path),
			func(wizard.Snapshot) (prompter.Prompter[string], error) {
				return prompter.NewInput(host, title, opts...), nil
			}, fieldOpts...)
	case TypeInt:
		opts := inputOptions(fd)

		return wizard.BindPrompter(form, wizard.NewKey[int](fd.Path),
			func(wizard.Snapshot) (prompter.Prompter[int], error) {
				return prompter.NewIntInput(host, title, opts...), nil
			}, fieldOpts...)
	case TypeSelect:
		items := make([]prompter.Item[any], len(fd.Choices))
		for i, c := range fd.Choices {
			items[i] = prompter.Item[any]{Label: c.Label, Description: c.Description, Data: c.Value}
		}

		return wizard.BindPrompter(form, wizard.NewKey[any](fd.Path),
			func(wizard.Snapshot) (prompter.Prompter[any], error) {
				p := prompter.NewStaticSelect(host, title, items, prompter.WithPlaceholder(fd.Placeholder))
				if fd.Default != nil {
					p.Prefill(fd.Default)
				}

				return p, nil
			}, fieldOpts...)
	case TypeConfirm:
		return wizard.BindPrompter(form, wizard.NewKey[bool](fd.Path),
			func(wizard.Snapshot) (prompter.Prompter[bool], error) {
				p := prompter.NewConfirm(host, title)
				if def, ok := fd.Default.(bool); ok {
					p.Prefill(def)
				}

				return p, nil
			}, fieldOpts...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, fd.Type)
	}
}

func fieldOptions(fd FieldDefinition) ([]wizard.FieldOption, error) {
	var opts []wizard.FieldOption

	if fd.Description != "" {
		opts = append(opts, wizard.Describe(fd.Description))
	}

	if fd.ShowWhen == "" {
		return append(opts, wizard.DependsOn(fd.DependsOn...)), nil
	}

	cond, err := parseCondition(fd.ShowWhen)
	if err != nil {
		return nil, fmt.Errorf("%w: show_when: %w", ErrInvalidDefinition, err)
	}

	deps := fd.DependsOn
	if len(deps) == 0 {
		deps = cond.deps
	}

	return append(opts, wizard.ShowWhen(cond.eval), wizard.DependsOn(deps...)), nil
}

func inputOptions(fd FieldDefinition) []prompter.Option {
	var opts []prompter.Option

	if fd.Placeholder != "" {
		opts = append(opts, prompter.WithPlaceholder(fd.Placeholder))
	}

	if fd.Default != nil {
		opts = append(opts, prompter.WithDefault(fmt.Sprint(fd.Default)))
	}

	if fd.Validate != "" {
		opts = append(opts, prompter.WithValidateTag(fd.Validate))
	}

	return opts
}

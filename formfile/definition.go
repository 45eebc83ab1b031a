// Package formfile declares wizards in YAML.
//
//	name: bucket
//	fields:
//	  - path: kind
//	    type: select
//	    choices: [bucket, queue]
//	  - path: bucket.name
//	    title: Bucket name
//	    validate: required,min=3
//	    show_when: kind == "bucket"
//	  - path: confirm
//	    type: confirm
//
// show_when is an expr (github.com/expr-lang/expr) expression evaluated
// against the answers so far as a nested object. Unset paths read as nil;
// use optional chaining for nested ones (bucket?.name) and defined("path")
// to tell an unset path from a nil answer. Because of that, no path may
// start with the names null or defined.
package formfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/amp-labs/amp-wizard/lazy"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDefinition = errors.New("invalid form definition")
	ErrUnknownType       = errors.New("unknown field type")
	ErrNotBoolean        = errors.New("show_when did not evaluate to a boolean")
)

// FieldType selects the prompter used for a field.
type FieldType string

const (
	TypeText    FieldType = "text"
	TypeSecret  FieldType = "secret"
	TypeInt     FieldType = "int"
	TypeSelect  FieldType = "select"
	TypeConfirm FieldType = "confirm"
)

// Definition is a whole form.
type Definition struct {
	Name   string            `yaml:"name"`
	Title  string            `yaml:"title,omitempty"`
	Fields []FieldDefinition `yaml:"fields"  validate:"required,min=1,dive"`
}

// FieldDefinition is one field of a form, in visit order.
type FieldDefinition struct {
	Path        string    `yaml:"path"                 validate:"required,unreserved"`
	Type        FieldType `yaml:"type"                 validate:"oneof=text secret int select confirm" default:"text"`
	Title       string    `yaml:"title,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty"`
	Choices     []Choice  `yaml:"choices,omitempty"    validate:"required_if=Type select,dive"`
	Default     any       `yaml:"default,omitempty"`
	Validate    string    `yaml:"validate,omitempty"`
	ShowWhen    string    `yaml:"show_when,omitempty"`
	DependsOn   []string  `yaml:"depends_on,omitempty"`
}

// Choice is one item of a select field. In YAML a bare scalar is both the
// label and the value.
type Choice struct {
	Label       string `yaml:"label"                 validate:"required"`
	Value       any    `yaml:"value"`
	Description string `yaml:"description,omitempty"`
}

func (c *Choice) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var value any
		if err := node.Decode(&value); err != nil {
			return err
		}

		c.Label = node.Value
		c.Value = value

		return nil
	}

	type plain Choice

	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}

	*c = Choice(decoded)
	if c.Value == nil {
		c.Value = c.Label
	}

	return nil
}

var validate = lazy.New(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("unreserved", func(fl validator.FieldLevel) bool {
		return !reservedName(fl.Field().String())
	})

	return v
})

// Parse decodes and validates a definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var def Definition
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	for i := range def.Fields {
		if err := defaults.Set(&def.Fields[i]); err != nil {
			return nil, fmt.Errorf("applying defaults: %w", err)
		}
	}

	if err := validate.Get().Struct(def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	return &def, nil
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return def, nil
}

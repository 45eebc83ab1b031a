package wizard

import (
	"fmt"
	"time"

	"github.com/amp-labs/amp-wizard/lazy"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = lazy.New(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Decode converts a snapshot into a struct. Struct fields are matched by
// their json tags. Unset paths keep the value from the `default` tag
// (creasty/defaults), and the result is checked against its `validate` tags.
//
//	type Bucket struct {
//		Name   string `json:"name" validate:"required"`
//		Region string `json:"region" default:"us-east-1"`
//	}
func Decode[T any](snap Snapshot) (T, error) {
	var out T

	if err := defaults.Set(&out); err != nil {
		return out, fmt.Errorf("applying defaults: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "json",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, fmt.Errorf("creating decoder: %w", err)
	}

	if err := decoder.Decode(snap.Map()); err != nil {
		return out, fmt.Errorf("decoding state: %w", err)
	}

	if err := validate.Get().Struct(out); err != nil {
		return out, fmt.Errorf("validating state: %w", err)
	}

	return out, nil
}

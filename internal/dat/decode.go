package dat

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// decodeMatch maps one raw API match onto a typed record. The API is loose
// about numeric types, so decoding is weak and driven by the json tags.
func decodeMatch(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding match: %w", err)
	}

	return nil
}

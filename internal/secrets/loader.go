// Package secrets resolves credential values from configuration, with file
// indirection so secrets can be mounted instead of inlined.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source names a secret and where it may come from. A file path wins over an
// inline value.
type Source struct {
	// Name identifies the secret in error messages.
	Name string
	// Value is the inline value from configuration or environment.
	Value string
	// File is a path to read the value from instead.
	File string
}

func (s Source) label() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return "secret"
}

// Load resolves the secret, trimmed of surrounding whitespace. A configured
// but empty source is an error; the caller decides whether that is fatal.
func Load(src Source) (string, error) {
	value := src.Value

	if path := strings.TrimSpace(src.File); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading the %s: %w", src.label(), err)
		}
		value = string(data)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("no %s is configured", src.label())
	}

	return value, nil
}

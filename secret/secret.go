// Package secret keeps credentials, like the database passwords of the configuration,
// from being exposed by accident, e.g. in logs or when the configuration is printed.
package secret

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

const mask = "******"

func New(secret string) Secret {
	return Secret{value: &secret}
}

// Secret masks its value everywhere it could be printed:
// fmt verbs, json, text encoding and slog.
// Only Secret() returns the actual value.
type Secret struct {
	// a pointer, so the value is not printed by fmt's %#v.
	// It is still accessible with unsafe.
	value *string
}

var (
	_ fmt.Stringer   = Secret{}
	_ fmt.GoStringer = Secret{}
	_ slog.LogValuer = Secret{}
	_ json.Marshaler = Secret{}
)

// Secret returns the actual value. The zero Secret is the empty string.
func (s Secret) Secret() string {
	if s.value == nil {
		return ""
	}

	return *s.value
}

// IsZero reports whether no value was ever set.
func (s Secret) IsZero() bool {
	return s.value == nil
}

func (s Secret) String() string {
	return mask
}

func (s Secret) GoString() string {
	return mask
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(mask)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(mask) //nolint:wrapcheck // a string always marshals
}

func (s *Secret) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("secret has to be a json string: %w", err)
	}

	s.value = &value

	return nil
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(mask), nil
}

// UnmarshalText is used by the config decoding, e.g. for environment variables.
func (s *Secret) UnmarshalText(data []byte) error {
	value := string(data)
	s.value = &value

	return nil
}

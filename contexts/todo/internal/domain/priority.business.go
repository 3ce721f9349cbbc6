package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPriority = errors.New("invalid priority")

// Priority is the urgency of a Todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities returns all valid priorities, from least to most urgent.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// ParsePriority is case-insensitive and ignores surrounding whitespace.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}

	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}

	return false
}

func (p Priority) String() string {
	return string(p)
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText accepts an empty text as the unset Priority.
func (p *Priority) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = ""

		return nil
	}

	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

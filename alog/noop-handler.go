package alog

import (
	"context"
	"log/slog"
)

// NewNoop returns a logger that discards every record.
// Use it as a dependency in tests that do not assert on the logs.
func NewNoop() *slog.Logger {
	return slog.New(discardHandler{})
}

// discardHandler has every level disabled, so slog never builds a record.
type discardHandler struct{}

var _ slog.Handler = discardHandler{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

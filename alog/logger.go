// Package alog provides structured logging on top of log/slog.
//
// The logger fans out to any number of slog.Handlers, shares one level between
// all of them that can be changed at run time, and correlates every record with
// the span in the context.
package alog

import (
	"context"
	"log/slog"
)

// Logger interface is a subset of slog.Logger, with the aim to:
//  1. encourage the use of the methods offering context.Context, so that tracing information can be correlated.
//  2. encourage the use of the levels `DEBUG` and `INFO` over others, but without preventing them, see:
//     https://dave.cheney.net/2015/11/05/lets-talk-about-logging
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
}

var (
	_ Logger = (*slog.Logger)(nil)
	_ Logger = (*TestLogger)(nil)
)

const (
	// LevelInfo is used to see what is going on inside the infrastructure, e.g. repositories.
	LevelInfo = slog.Level(-8)

	// LevelDebug is used if you really want to know what is going on.
	LevelDebug = slog.Level(-12)
)

// MapLogLevelsToName replaces the default name of a custom log level with a speaking name.
// Use it as slog.HandlerOptions.ReplaceAttr.
func MapLogLevelsToName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}

	level, ok := attr.Value.Any().(slog.Level)
	if !ok {
		return attr
	}

	switch level {
	case LevelInfo:
		attr.Value = slog.StringValue("TODO:INFO")
	case LevelDebug:
		attr.Value = slog.StringValue("TODO:DEBUG")
	}

	return attr
}

// Error returns an attribute for err, so all errors are logged under the same key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "")
	}

	return slog.String("err", err.Error())
}

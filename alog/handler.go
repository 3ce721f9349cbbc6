package alog

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOpt allows to initialise a logger with custom options.
type LoggerOpt func(h *handler)

// WithHandler adds a slog.Handler to be logged to.
// You can set as many as you want.
func WithHandler(h slog.Handler) LoggerOpt {
	return func(l *handler) {
		l.handlers = append(l.handlers, h)
	}
}

// WithLevel initialises the logger with a starting level.
// To change the level at run time use:
// Unwrap(logger).SetLevel(LevelInfo).
func WithLevel(level slog.Level) LoggerOpt {
	return func(l *handler) {
		l.level.Set(level)
	}
}

// New returns a production ready logger.
//
// If no options are given it logs JSON to Stderr at level info.
// Otherwise, use WithHandler to set your own handlers.
func New(opts ...LoggerOpt) *slog.Logger {
	return slog.New(newHandler(opts...))
}

// NewDevelopment returns a logger for local development, logging human-readable text to Stderr.
// If lokiURL is not empty, all records are also shipped to that loki instance.
func NewDevelopment(lokiURL string) *slog.Logger {
	opts := []LoggerOpt{
		WithLevel(slog.LevelDebug),
		WithHandler(slog.NewTextHandler(os.Stderr, debugHandlerOptions())),
	}

	if lokiURL != "" {
		opts = append(opts, WithHandler(NewLokiHandler(&LokiHandlerOptions{PushURL: lokiURL})))
	}

	return New(opts...)
}

func newHandler(opts ...LoggerOpt) *handler {
	h := &handler{
		level:    &slog.LevelVar{},
		handlers: []slog.Handler{},
	}

	for _, opt := range opts {
		opt(h)
	}

	if len(h.handlers) == 0 {
		h.handlers = []slog.Handler{slog.NewJSONHandler(os.Stderr, defaultHandlerOptions())}
	}

	return h
}

// handler passes each record to all its handlers.
// The level of the individual handlers is ignored, only the level of handler counts.
// Records logged with a span in the context get the trace and span ID
// and are added to the span as an event.
type handler struct {
	// level is shared with all handlers derived via WithAttrs and WithGroup.
	level    *slog.LevelVar
	handlers []slog.Handler
}

var _ slog.Handler = (*handler)(nil)

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *handler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if sCtx := span.SpanContext(); sCtx.HasTraceID() {
		record.AddAttrs(slog.String("traceID", sCtx.TraceID().String()))
	}

	if sCtx := span.SpanContext(); sCtx.HasSpanID() {
		record.AddAttrs(slog.String("spanID", sCtx.SpanID().String()))
	}

	if attrs := FromContext(ctx); len(attrs) > 0 {
		record.AddAttrs(attrs...)
	}

	if span.IsRecording() {
		span.AddEvent("log", trace.WithAttributes(spanAttributes(record)...))

		if record.Level >= slog.LevelError {
			span.SetStatus(codes.Error, record.Message)
		}
	}

	var err error

	for _, next := range h.handlers {
		err = errors.Join(err, next.Handle(ctx, record))
	}

	return err
}

func spanAttributes(record slog.Record) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, record.NumAttrs()+2) //nolint:mnd // severity and message

	attrs = append(attrs,
		attribute.String("log.severity", record.Level.String()),
		attribute.String("log.message", record.Message),
	)

	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, attribute.String(a.Key, a.Value.String()))

		return true
	})

	return attrs
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *handler) WithGroup(name string) slog.Handler {
	return h.derive(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *handler) derive(fn func(slog.Handler) slog.Handler) *handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		handlers[i] = fn(next)
	}

	return &handler{
		level:    h.level,
		handlers: handlers,
	}
}

// SetLevel changes the level of the logger and all loggers derived from it,
// e.g. via With or WithGroup.
func (h *handler) SetLevel(level slog.Level) {
	h.level.Set(level)
}

func (h *handler) Level() slog.Level {
	return h.level.Level()
}

// LevelSetter offers control over the level of a logger at run time.
// Unwrap a logger to get access to it.
type LevelSetter interface {
	SetLevel(level slog.Level)
	Level() slog.Level
}

var (
	_ LevelSetter = (*handler)(nil)
	_ LevelSetter = (*TestLogger)(nil)
)

// Unwrap returns the LevelSetter of logger.
// If logger was not created by this package, it returns nil.
func Unwrap(logger Logger) LevelSetter { //nolint:ireturn // TestLogger and handler are valid implementations
	if l, ok := logger.(*TestLogger); ok {
		return l
	}

	if l, ok := logger.(*slog.Logger); ok {
		if h, ok := l.Handler().(*handler); ok {
			return h
		}
	}

	return nil
}

func defaultHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   true,
		Level:       LevelDebug, // the level of handler is used instead
		ReplaceAttr: MapLogLevelsToName,
	}
}

// debugHandlerOptions keep the output readable, by removing not essential keys.
func debugHandlerOptions() *slog.HandlerOptions {
	opt := defaultHandlerOptions()
	opt.AddSource = false

	return opt
}

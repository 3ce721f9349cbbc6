// Package app provides the use case pattern of the application layer
// and decorators to instrument use cases.
package app

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/todo/alog"
)

// Request can produce side effects and return data.
type Request[Req any, Res any] interface {
	H(ctx context.Context, req Req) (Res, error)
}

// Command produces side effects, e.g. mutate state.
type Command[C any] interface {
	H(ctx context.Context, cmd C) error
}

// Query does not produce side effects and returns data.
type Query[Q any, Res any] interface {
	H(ctx context.Context, query Q) (Res, error)
}

// handlerFunc is the shape all decorators work on.
// It satisfies Request and Query.
type handlerFunc[In any, Out any] func(ctx context.Context, in In) (Out, error)

func (f handlerFunc[In, Out]) H(ctx context.Context, in In) (Out, error) { //nolint:ireturn // valid use of generics
	return f(ctx, in)
}

type commandFunc[C any] func(ctx context.Context, cmd C) error

func (f commandFunc[C]) H(ctx context.Context, cmd C) error {
	return f(ctx, cmd)
}

func fromCommand[C any](cmd Command[C]) handlerFunc[C, struct{}] {
	return func(ctx context.Context, c C) (struct{}, error) {
		return struct{}{}, cmd.H(ctx, c) //nolint:wrapcheck // decorate but not change anything
	}
}

func toCommand[C any](h handlerFunc[C, struct{}]) Command[C] {
	return commandFunc[C](func(ctx context.Context, c C) error {
		_, err := h(ctx, c)

		return err
	})
}

// NewInstrumentedRequest is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedRequest[Req any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	req Request[Req, Res],
) Request[Req, Res] {
	return NewTracedRequest(traceProvider, NewMeteredRequest(meterProvider, NewLoggedRequest(logger, req)))
}

// NewInstrumentedCommand is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedCommand[C any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	cmd Command[C],
) Command[C] {
	return NewTracedCommand(traceProvider, NewMeteredCommand(meterProvider, NewLoggedCommand(logger, cmd)))
}

// NewInstrumentedQuery is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedQuery[Q any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	query Query[Q, Res],
) Query[Q, Res] {
	return NewTracedQuery(traceProvider, NewMeteredQuery(meterProvider, NewLoggedQuery(logger, query)))
}

// commandName extracts a printable name from cmd in the format of: context.package.structName.
//
// The use case function can not be used, as it is a method of an unexported handler.
// Outside a context it falls back to: package.structName.
func commandName(cmd any) string {
	pkgPath := reflect.TypeOf(cmd).PkgPath()

	// example: github.com/go-arrower/todo/contexts/todo/internal/application
	// take string after /contexts/ and then take string before /internal/
	_, afterContexts, hasContext := strings.Cut(pkgPath, "/contexts/")
	if hasContext {
		if boundedContext, _, ok := strings.Cut(afterContexts, "/internal/"); ok {
			return fmt.Sprintf("%s.%T", boundedContext, cmd)
		}
	}

	return fmt.Sprintf("%T", cmd)
}

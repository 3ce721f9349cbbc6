package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func NewTracedRequest[Req any, Res any](traceProvider trace.TracerProvider, req Request[Req, Res]) Request[Req, Res] {
	return traced[Req, Res](traceProvider, req.H)
}

func NewTracedCommand[C any](traceProvider trace.TracerProvider, cmd Command[C]) Command[C] {
	return toCommand(traced[C, struct{}](traceProvider, fromCommand(cmd)))
}

func NewTracedQuery[Q any, Res any](traceProvider trace.TracerProvider, query Query[Q, Res]) Query[Q, Res] {
	return traced[Q, Res](traceProvider, query.H)
}

func traced[In any, Out any](traceProvider trace.TracerProvider, next handlerFunc[In, Out]) handlerFunc[In, Out] {
	tracer := traceProvider.Tracer(instrumentationName)

	return func(ctx context.Context, in In) (Out, error) {
		ctx, span := tracer.Start(ctx, "usecase",
			trace.WithAttributes(attribute.String("command", commandName(in))),
		)
		defer span.End()

		out, err := next(ctx, in)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}

		return out, err
	}
}

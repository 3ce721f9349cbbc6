package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "todo.application"

func NewMeteredRequest[Req any, Res any](meterProvider metric.MeterProvider, req Request[Req, Res]) Request[Req, Res] {
	return metered[Req, Res](meterProvider, req.H)
}

func NewMeteredCommand[C any](meterProvider metric.MeterProvider, cmd Command[C]) Command[C] {
	return toCommand(metered[C, struct{}](meterProvider, fromCommand(cmd)))
}

func NewMeteredQuery[Q any, Res any](meterProvider metric.MeterProvider, query Query[Q, Res]) Query[Q, Res] {
	return metered[Q, Res](meterProvider, query.H)
}

// metered counts every call and records its duration,
// both with the attributes command and status (success or failure).
func metered[In any, Out any](meterProvider metric.MeterProvider, next handlerFunc[In, Out]) handlerFunc[In, Out] {
	meter := meterProvider.Meter(instrumentationName)

	// the errors are ignored, as a failing instrument falls back to a noop instrument
	counter, _ := meter.Int64Counter("usecases",
		metric.WithDescription("number of executed use cases"),
	)
	duration, _ := meter.Float64Histogram("usecases_duration_seconds",
		metric.WithDescription("duration of executed use cases"),
	)

	return func(ctx context.Context, in In) (Out, error) {
		start := time.Now()

		out, err := next(ctx, in)

		status := "success"
		if err != nil {
			status = "failure"
		}

		opt := metric.WithAttributes(
			attribute.String("command", commandName(in)),
			attribute.String("status", status),
		)

		counter.Add(ctx, 1, opt)
		duration.Record(ctx, time.Since(start).Seconds(), opt)

		return out, err
	}
}

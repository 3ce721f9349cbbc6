package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/todo/ctx"
)

const spanKey ctx.CTXKey = "otel_span"

var _ pgx.QueryTracer = (*pgxTraceAdapter)(nil)

type pgxTraceAdapter struct {
	tracer trace.Tracer
}

func (p pgxTraceAdapter) TraceQueryStart(
	c context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	c, span := p.tracer.Start(c, "pgx", trace.WithAttributes(
		attribute.String("db_host", conn.Config().Host),
		attribute.Int("db_port", int(conn.Config().Port)),
		attribute.String("db_database", conn.Config().Database),
		attribute.String("db_user", conn.Config().User),
		attribute.String("sql", data.SQL),
		attribute.StringSlice("sql_args", anySliceToStrings(data.Args)),
	))

	return context.WithValue(c, spanKey, span)
}

func (p pgxTraceAdapter) TraceQueryEnd(c context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	if span, ok := c.Value(spanKey).(trace.Span); ok {
		span.SetAttributes(attribute.Int64("sql_rows_affected", data.CommandTag.RowsAffected()))

		if data.Err != nil {
			span.RecordError(data.Err)
			span.SetStatus(codes.Error, data.Err.Error())
		}

		span.End()
	}
}

func anySliceToStrings(in []any) []string {
	s := make([]string, len(in))

	for i, v := range in {
		s[i] = fmt.Sprintf("%v", v)
	}

	return s
}

package alog

import (
	"context"
	"log/slog"

	"github.com/go-arrower/todo/ctx"
)

const ctxAttr ctx.CTXKey = "todo.log.attr"

// AddAttr adds attr to ctx. Every record logged with ctx contains attr.
func AddAttr(ctx context.Context, attr slog.Attr) context.Context {
	return AddAttrs(ctx, attr)
}

// AddAttrs adds attrs to ctx. Every record logged with ctx contains attrs.
func AddAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing := FromContext(ctx)

	// copy, so ctx derived from the same parent do not share one backing array
	all := make([]slog.Attr, 0, len(existing)+len(attrs))
	all = append(all, existing...)
	all = append(all, attrs...)

	return context.WithValue(ctx, ctxAttr, all)
}

// ClearAttrs removes all attributes added via AddAttr and AddAttrs.
func ClearAttrs(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxAttr, []slog.Attr{})
}

// FromContext returns the attributes of ctx. It is never nil.
func FromContext(ctx context.Context) []slog.Attr {
	if attrs, ok := ctx.Value(ctxAttr).([]slog.Attr); ok {
		return attrs
	}

	return []slog.Attr{}
}

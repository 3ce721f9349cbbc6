package app

import (
	"context"
	"log/slog"

	"github.com/go-arrower/todo/alog"
)

func NewLoggedRequest[Req any, Res any](logger alog.Logger, req Request[Req, Res]) Request[Req, Res] {
	return logged[Req, Res](logger, "request", req.H)
}

func NewLoggedCommand[C any](logger alog.Logger, cmd Command[C]) Command[C] {
	return toCommand(logged[C, struct{}](logger, "command", fromCommand(cmd)))
}

func NewLoggedQuery[Q any, Res any](logger alog.Logger, query Query[Q, Res]) Query[Q, Res] {
	return logged[Q, Res](logger, "query", query.H)
}

// logged logs on debug level, as the outcome of a use case is
// reported by its caller, e.g. the web layer.
func logged[In any, Out any](logger alog.Logger, kind string, next handlerFunc[In, Out]) handlerFunc[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		cmd := slog.String("command", commandName(in))

		logger.DebugContext(ctx, "executing "+kind, cmd)

		out, err := next(ctx, in)
		if err != nil {
			logger.DebugContext(ctx, "failed to execute "+kind, cmd, alog.Error(err))

			return out, err
		}

		logger.DebugContext(ctx, kind+" executed successfully", cmd)

		return out, nil
	}
}

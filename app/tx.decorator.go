package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-arrower/todo/postgres"
)

// NewTxRequest runs req in a transaction, that is committed if req succeeds.
// Repositories find the transaction via postgres.CtxTX.
func NewTxRequest[Req any, Res any](pool *pgxpool.Pool, req Request[Req, Res]) Request[Req, Res] {
	return inTx[Req, Res](pool, req.H)
}

func NewTxCommand[C any](pool *pgxpool.Pool, cmd Command[C]) Command[C] {
	return toCommand(inTx[C, struct{}](pool, fromCommand(cmd)))
}

func inTx[In any, Out any](pool *pgxpool.Pool, next handlerFunc[In, Out]) handlerFunc[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		var out Out

		tx, err := pool.Begin(ctx)
		if err != nil {
			return out, fmt.Errorf("could not start transaction: %w", err)
		}

		out, err = next(context.WithValue(ctx, postgres.CtxTX, tx), in)
		if err != nil {
			if rb := tx.Rollback(ctx); rb != nil {
				return out, fmt.Errorf("could not rollback transaction: %w: %w", rb, err)
			}

			return out, err
		}

		if err := tx.Commit(ctx); err != nil {
			return *new(Out), fmt.Errorf("could not commit transaction: %w", err)
		}

		return out, nil
	}
}

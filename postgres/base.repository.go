package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is implemented by a pool and a transaction.
// It is also what pgxscan expects to run a query.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// BaseRepository can be embedded in repository implementations,
// so they take part in a transaction started e.g. by a use case decorator.
type BaseRepository struct {
	PGx *pgxpool.Pool
}

func NewPostgresBaseRepository(pgx *pgxpool.Pool) BaseRepository {
	return BaseRepository{PGx: pgx}
}

// ConnOrTX returns the transaction in ctx.
// If no transaction is in the context, it falls back to the pool.
func (repo BaseRepository) ConnOrTX(ctx context.Context) Querier { //nolint:ireturn // both implementations are valid
	if tx, ok := ctx.Value(CtxTX).(pgx.Tx); ok {
		return tx
	}

	return repo.PGx
}

// InTX runs fn in the transaction of ctx or, if there is none, in a new transaction.
// A new transaction is committed if fn succeeds and rolled back otherwise.
func (repo BaseRepository) InTX(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if tx, ok := ctx.Value(CtxTX).(pgx.Tx); ok {
		return fn(tx)
	}

	return pgx.BeginFunc(ctx, repo.PGx, fn) //nolint:wrapcheck // the caller wraps the error of fn
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-arrower/todo/contexts/todo/internal/domain"
	"github.com/go-arrower/todo/postgres"
	arepo "github.com/go-arrower/todo/repository"
)

var ErrMissingConnection = errors.New("missing db connection")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar) //nolint:gochecknoglobals // squirrel recommends this

var todoColumns = []string{ //nolint:gochecknoglobals // used like a constant
	"id", "title", "description", "completed", "priority", "tags", "created_at", "updated_at",
}

// returning makes postgres return the stored values, e.g. with the precision of its timestamps.
var returning = "RETURNING " + strings.Join(todoColumns, ", ") //nolint:gochecknoglobals // used like a constant

// NewPostgresRepository expects the schema of postgres.Migrations to be applied.
func NewPostgresRepository(pg *pgxpool.Pool, opts ...Option) (*PostgresRepository, error) {
	if pg == nil {
		return nil, ErrMissingConnection
	}

	rows, err := arepo.NewPostgresRepository[todoRow, string](pg, "todos", arepo.WithOrderBy("position"))
	if err != nil {
		return nil, fmt.Errorf("could not create todos table access: %w", err)
	}

	return &PostgresRepository{
		rows: rows,
		now:  newConfig(opts).now,
	}, nil
}

// PostgresRepository takes part in the transaction of the context, if there is one.
// Reads and deletes go through the generic table access, Create and Update use their own SQL.
type PostgresRepository struct {
	rows *arepo.PostgresRepository[todoRow, string]
	now  func() time.Time
}

var _ domain.Repository = (*PostgresRepository)(nil)

// todoRow is the mapping of the todos table.
type todoRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Completed   bool      `db:"completed"`
	Priority    string    `db:"priority"`
	Tags        []string  `db:"tags"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r todoRow) toDomain() domain.Todo {
	return domain.Todo{
		ID:          domain.ID(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    domain.Priority(r.Priority),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Tags:        r.Tags,
	}
}

func (repo *PostgresRepository) Create(ctx context.Context, newTodo domain.NewTodo) (domain.Todo, error) {
	now := repo.now()

	sql, args, err := psql.Insert("todos").
		Columns(todoColumns...).
		Values(
			squirrel.Expr("'todo-' || nextval('todo_id_seq')"),
			newTodo.Title,
			newTodo.Description,
			newTodo.Completed,
			string(newTodo.Priority),
			newTodo.Tags,
			now,
			now,
		).
		Suffix(returning).
		ToSql()
	if err != nil {
		return domain.Todo{}, fmt.Errorf("%w: could not build query: %w", domain.ErrPersistenceFailed, err)
	}

	var row todoRow
	if err := pgxscan.Get(ctx, repo.rows.ConnOrTX(ctx), &row, sql, args...); err != nil {
		return domain.Todo{}, fmt.Errorf("%w: could not insert todo: %w", domain.ErrPersistenceFailed, err)
	}

	return row.toDomain(), nil
}

func (repo *PostgresRepository) FindByID(ctx context.Context, id domain.ID) (domain.Todo, error) {
	return repo.findByID(ctx, repo.rows.ConnOrTX(ctx), id, false)
}

func (repo *PostgresRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.Todo, error) {
	var where []squirrel.Sqlizer

	if filter.Completed != nil {
		where = append(where, squirrel.Eq{"completed": *filter.Completed})
	}

	if filter.Priority != nil {
		where = append(where, squirrel.Eq{"priority": string(*filter.Priority)})
	}

	if filter.Tags != nil {
		// NULL && x is NULL, so todos without tags never match
		where = append(where, squirrel.Expr("tags && ?", filter.Tags))
	}

	rows, err := repo.rows.FindBy(ctx, where...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	todos := make([]domain.Todo, len(rows))
	for i, r := range rows {
		todos[i] = r.toDomain()
	}

	return todos, nil
}

// Update locks the row, so concurrent updates of the same Todo are applied one after the other.
func (repo *PostgresRepository) Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Todo, error) {
	var updated domain.Todo

	err := repo.rows.InTX(ctx, func(tx pgx.Tx) error {
		todo, err := repo.findByID(ctx, tx, id, true)
		if err != nil {
			return err
		}

		todo = todo.Apply(patch, repo.now())

		sql, args, err := psql.Update("todos").
			SetMap(map[string]any{
				"title":       todo.Title,
				"description": todo.Description,
				"completed":   todo.Completed,
				"priority":    string(todo.Priority),
				"tags":        todo.Tags,
				"updated_at":  todo.UpdatedAt,
			}).
			Where(squirrel.Eq{"id": string(id)}).
			Suffix(returning).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: could not build query: %w", domain.ErrPersistenceFailed, err)
		}

		var row todoRow
		if err := pgxscan.Get(ctx, tx, &row, sql, args...); err != nil {
			return fmt.Errorf("%w: could not update %s: %w", domain.ErrPersistenceFailed, id, err)
		}

		updated = row.toDomain()

		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrPersistenceFailed) {
			return domain.Todo{}, err
		}

		return domain.Todo{}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	return updated, nil
}

func (repo *PostgresRepository) Delete(ctx context.Context, id domain.ID) error {
	if err := repo.rows.DeleteByID(ctx, string(id)); err != nil {
		return mapError(err, id)
	}

	return nil
}

// Clear keeps todo_id_seq counting, so IDs are not reused.
func (repo *PostgresRepository) Clear(ctx context.Context) error {
	if err := repo.rows.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	return nil
}

func (repo *PostgresRepository) findByID(
	ctx context.Context,
	db postgres.Querier,
	id domain.ID,
	forUpdate bool,
) (domain.Todo, error) {
	query := repo.rows.Select().Where(squirrel.Eq{"id": string(id)})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	row, err := repo.rows.Get(ctx, db, query)
	if err != nil {
		return domain.Todo{}, mapError(err, id)
	}

	return row.toDomain(), nil
}

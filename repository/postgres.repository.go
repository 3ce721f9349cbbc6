package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/dbscan"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-arrower/todo/postgres"
)

var (
	ErrMissingConnection = errors.New("missing db connection")
	ErrQueryFailed       = errors.New("query failed")
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar) //nolint:gochecknoglobals // squirrel recommends this

// WithOrderBy sets the columns all listings of a PostgresRepository are sorted by.
func WithOrderBy(columns ...string) Option { //nolint:revive // unexported-return is OK for this option
	return func(config *repoConfig) {
		config.orderBy = columns
	}
}

// NewPostgresRepository returns a Repository for the rows of table.
//
// The rows are mapped to E by scany: the column of a field is its `db` tag or its name in snake case.
//
//	type taskRow struct {
//		ID        string `db:"task_id"`
//		Title     string
//		CreatedAt time.Time
//	}
//
// In the example above taskRow is mapped to the columns "task_id", "title", "created_at".
// Embed the repository or keep it in a field to add queries the generic methods do not cover.
func NewPostgresRepository[E any, ID id](
	pg *pgxpool.Pool,
	table string,
	opts ...Option,
) (*PostgresRepository[E, ID], error) {
	if pg == nil {
		return nil, ErrMissingConnection
	}

	conf := repoConfig{idFieldName: "ID"}
	for _, opt := range opts {
		opt(&conf)
	}

	entity := reflect.TypeFor[E]()
	if entity.Kind() != reflect.Struct {
		return nil, fmt.Errorf("could not initialise %s postgres repository: entity is not a struct", entity.Name())
	}

	idField, found := entity.FieldByName(conf.idFieldName)
	if !found {
		return nil, fmt.Errorf("could not initialise %s postgres repository: entity does not have the ID field with name: %s",
			entity.Name(), conf.idFieldName)
	}

	return &PostgresRepository[E, ID]{
		BaseRepository: postgres.NewPostgresBaseRepository(pg),
		Table:          table,
		Columns:        columnNames(entity),
		IDColumn:       columnName(idField),
		orderBy:        conf.orderBy,
	}, nil
}

// PostgresRepository takes part in the transaction of the context, if there is one.
// The exported fields are meant for repositories adding their own queries.
type PostgresRepository[E any, ID id] struct {
	postgres.BaseRepository

	Table    string
	Columns  []string
	IDColumn string

	orderBy []string
}

// Select returns a query for all columns of the table, in the order of the repository.
func (repo *PostgresRepository[E, ID]) Select() squirrel.SelectBuilder {
	return psql.Select(repo.Columns...).From(repo.Table).OrderBy(repo.orderBy...)
}

// Get runs query and scans exactly one row.
// It returns ErrNotFound, if query has no result.
func (repo *PostgresRepository[E, ID]) Get(ctx context.Context, db postgres.Querier, query squirrel.Sqlizer) (E, error) { //nolint:ireturn,lll // valid use of generics
	sql, args, err := query.ToSql()
	if err != nil {
		return *new(E), fmt.Errorf("%w: could not build query: %w", ErrQueryFailed, err)
	}

	var entity E

	err = pgxscan.Get(ctx, db, &entity, sql, args...)
	if pgxscan.NotFound(err) {
		return *new(E), ErrNotFound
	}

	if err != nil {
		return *new(E), fmt.Errorf("%w: could not scan %s: %w", ErrQueryFailed, repo.Table, err)
	}

	return entity, nil
}

func (repo *PostgresRepository[E, ID]) FindByID(ctx context.Context, id ID) (E, error) { //nolint:ireturn // valid use of generics
	return repo.Get(ctx, repo.ConnOrTX(ctx), repo.Select().Where(squirrel.Eq{repo.IDColumn: id}))
}

func (repo *PostgresRepository[E, ID]) FindAll(ctx context.Context) ([]E, error) {
	return repo.FindBy(ctx)
}

// FindBy returns all rows matching every one of where. It never returns nil.
func (repo *PostgresRepository[E, ID]) FindBy(ctx context.Context, where ...squirrel.Sqlizer) ([]E, error) {
	query := repo.Select()
	for _, w := range where {
		query = query.Where(w)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: could not build query: %w", ErrQueryFailed, err)
	}

	entities := []E{}
	if err = pgxscan.Select(ctx, repo.ConnOrTX(ctx), &entities, sql, args...); err != nil {
		return nil, fmt.Errorf("%w: could not scan %s: %w", ErrQueryFailed, repo.Table, err)
	}

	if entities == nil {
		entities = []E{}
	}

	return entities, nil
}

func (repo *PostgresRepository[E, ID]) Exists(ctx context.Context, id ID) (bool, error) {
	sql, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(repo.Table).Where(squirrel.Eq{repo.IDColumn: id}).
		Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: could not build query: %w", ErrQueryFailed, err)
	}

	var exists bool
	if err = pgxscan.Get(ctx, repo.ConnOrTX(ctx), &exists, sql, args...); err != nil {
		return false, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	return exists, nil
}

func (repo *PostgresRepository[E, ID]) Count(ctx context.Context) (int, error) {
	var count int
	if err := pgxscan.Get(ctx, repo.ConnOrTX(ctx), &count, "SELECT COUNT(*) FROM "+repo.Table); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	return count, nil
}

// DeleteByID returns ErrNotFound, if no row with the id exists.
func (repo *PostgresRepository[E, ID]) DeleteByID(ctx context.Context, id ID) error {
	sql, args, err := psql.Delete(repo.Table).Where(squirrel.Eq{repo.IDColumn: id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %w", ErrQueryFailed, err)
	}

	tag, err := repo.ConnOrTX(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%w: could not delete: %w", ErrQueryFailed, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteAll uses DELETE and not TRUNCATE, so sequences used by the table keep counting.
func (repo *PostgresRepository[E, ID]) DeleteAll(ctx context.Context) error {
	if _, err := repo.ConnOrTX(ctx).Exec(ctx, "DELETE FROM "+repo.Table); err != nil {
		return fmt.Errorf("%w: could not delete: %w", ErrQueryFailed, err)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) Clear(ctx context.Context) error {
	return repo.DeleteAll(ctx)
}

func columnNames(entity reflect.Type) []string {
	columns := make([]string, 0, entity.NumField())

	for field := range fieldsOf(entity) {
		columns = append(columns, columnName(field))
	}

	return columns
}

func columnName(field reflect.StructField) string {
	if tag := field.Tag.Get("db"); tag != "" {
		return tag
	}

	return dbscan.SnakeCaseMapper(field.Name)
}

// fieldsOf yields the exported fields scany maps to a column.
func fieldsOf(entity reflect.Type) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for i := range entity.NumField() {
			field := entity.Field(i)
			if !field.IsExported() || field.Tag.Get("db") == "-" {
				continue
			}

			if !yield(field) {
				return
			}
		}
	}
}

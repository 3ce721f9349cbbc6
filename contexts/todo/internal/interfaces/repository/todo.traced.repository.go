package repository

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

// NewTracedRepository starts a span for every call to repo.
// The tracer is taken from the span in the context, so no spans are recorded without a parent.
func NewTracedRepository(repo domain.Repository) *TracedRepository {
	return &TracedRepository{
		repo: repo,
		name: strings.TrimPrefix(fmt.Sprintf("%T", repo), "*"),
	}
}

type TracedRepository struct {
	repo domain.Repository
	name string
}

var _ domain.Repository = (*TracedRepository)(nil)

func (repo *TracedRepository) start(
	ctx context.Context,
	method string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("method", method), attribute.String("repository", repo.name))

	return trace.SpanFromContext(ctx).TracerProvider().Tracer("todo.repository").
		Start(ctx, "repo", trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

func (repo *TracedRepository) Create(ctx context.Context, todo domain.NewTodo) (domain.Todo, error) {
	ctx, span := repo.start(ctx, "Create")

	created, err := repo.repo.Create(ctx, todo)
	span.SetAttributes(attribute.String("id", string(created.ID)))
	end(span, err)

	return created, err //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository) FindByID(ctx context.Context, id domain.ID) (domain.Todo, error) {
	ctx, span := repo.start(ctx, "FindByID", attribute.String("id", string(id)))

	todo, err := repo.repo.FindByID(ctx, id)
	end(span, err)

	return todo, err //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.Todo, error) {
	var attrs []attribute.KeyValue
	if filter.Completed != nil {
		attrs = append(attrs, attribute.Bool("completed", *filter.Completed))
	}

	if filter.Priority != nil {
		attrs = append(attrs, attribute.String("priority", filter.Priority.String()))
	}

	if filter.Tags != nil {
		attrs = append(attrs, attribute.StringSlice("tags", filter.Tags))
	}

	ctx, span := repo.start(ctx, "FindAll", attrs...)

	todos, err := repo.repo.FindAll(ctx, filter)
	span.SetAttributes(attribute.Int("count", len(todos)))
	end(span, err)

	return todos, err //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository) Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Todo, error) {
	ctx, span := repo.start(ctx, "Update", attribute.String("id", string(id)))

	todo, err := repo.repo.Update(ctx, id, patch)
	end(span, err)

	return todo, err //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository) Delete(ctx context.Context, id domain.ID) error {
	ctx, span := repo.start(ctx, "Delete", attribute.String("id", string(id)))

	err := repo.repo.Delete(ctx, id)
	end(span, err)

	return err //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository) Clear(ctx context.Context) error {
	ctx, span := repo.start(ctx, "Clear")

	err := repo.repo.Clear(ctx)
	end(span, err)

	return err //nolint:wrapcheck // this is decorator
}

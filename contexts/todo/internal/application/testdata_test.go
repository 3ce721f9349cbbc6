package application_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
	"github.com/go-arrower/todo/contexts/todo/internal/interfaces/repository"
)

var ctx = context.Background()

func newTodo(tags ...string) domain.NewTodo {
	return domain.NewTodo{
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Sentence(10),
		Priority:    domain.PriorityMedium,
		Tags:        tags,
	}
}

// serviceWith returns a service on a new memory repository, containing a Todo for each of todos.
func serviceWith(t *testing.T, todos ...domain.NewTodo) (*application.TodoService, domain.Repository) {
	t.Helper()

	repo := repository.NewMemoryRepository()

	for _, todo := range todos {
		_, err := repo.Create(ctx, todo)
		require.NoError(t, err)
	}

	return application.NewTodoService(repo), repo
}

// spyRepository records the calls made to it.
type spyRepository struct {
	calls   []string
	filter  domain.Filter
	patch   domain.Patch
	id      domain.ID
	newTodo domain.NewTodo
	err     error
}

var _ domain.Repository = (*spyRepository)(nil)

func (r *spyRepository) Create(_ context.Context, todo domain.NewTodo) (domain.Todo, error) {
	r.calls = append(r.calls, "Create")
	r.newTodo = todo

	return domain.Todo{}, r.err
}

func (r *spyRepository) FindByID(_ context.Context, id domain.ID) (domain.Todo, error) {
	r.calls = append(r.calls, "FindByID")
	r.id = id

	return domain.Todo{}, r.err
}

func (r *spyRepository) FindAll(_ context.Context, filter domain.Filter) ([]domain.Todo, error) {
	r.calls = append(r.calls, "FindAll")
	r.filter = filter

	return nil, r.err
}

func (r *spyRepository) Update(_ context.Context, id domain.ID, patch domain.Patch) (domain.Todo, error) {
	r.calls = append(r.calls, "Update")
	r.id = id
	r.patch = patch

	return domain.Todo{}, r.err
}

func (r *spyRepository) Delete(_ context.Context, id domain.ID) error {
	r.calls = append(r.calls, "Delete")
	r.id = id

	return r.err
}

func (r *spyRepository) Clear(_ context.Context) error {
	r.calls = append(r.calls, "Clear")

	return r.err
}

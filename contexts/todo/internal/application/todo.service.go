package application

import (
	"context"

	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

// NewTodoService returns a service working on repo.
func NewTodoService(repo domain.Repository) *TodoService {
	return &TodoService{repo: repo}
}

// TodoService offers intention revealing operations on Todos.
// Each operation is exactly one call to the repository, errors are returned unchanged.
type TodoService struct {
	repo domain.Repository
}

func (s *TodoService) CreateTodo(ctx context.Context, todo domain.NewTodo) (domain.Todo, error) {
	return s.repo.Create(ctx, todo) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) GetTodo(ctx context.Context, id domain.ID) (domain.Todo, error) {
	return s.repo.FindByID(ctx, id) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) GetAllTodos(ctx context.Context) ([]domain.Todo, error) {
	return s.repo.FindAll(ctx, domain.Filter{}) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) GetCompletedTodos(ctx context.Context) ([]domain.Todo, error) {
	return s.repo.FindAll(ctx, domain.Filter{Completed: domain.Ref(true)}) //nolint:wrapcheck,lll // errors of the repository are part of the api
}

func (s *TodoService) GetIncompleteTodos(ctx context.Context) ([]domain.Todo, error) {
	return s.repo.FindAll(ctx, domain.Filter{Completed: domain.Ref(false)}) //nolint:wrapcheck,lll // errors of the repository are part of the api
}

func (s *TodoService) GetTodosByPriority(ctx context.Context, priority domain.Priority) ([]domain.Todo, error) {
	return s.repo.FindAll(ctx, domain.Filter{Priority: &priority}) //nolint:wrapcheck // errors of the repository are part of the api
}

// GetTodosByTags returns all Todos having at least one of tags.
func (s *TodoService) GetTodosByTags(ctx context.Context, tags ...string) ([]domain.Todo, error) {
	if tags == nil {
		tags = []string{}
	}

	return s.repo.FindAll(ctx, domain.Filter{Tags: tags}) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) FindTodos(ctx context.Context, filter domain.Filter) ([]domain.Todo, error) {
	return s.repo.FindAll(ctx, filter) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) UpdateTodo(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Todo, error) {
	return s.repo.Update(ctx, id, patch) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) CompleteTodo(ctx context.Context, id domain.ID) (domain.Todo, error) {
	return s.repo.Update(ctx, id, domain.Patch{Completed: domain.Ref(true)}) //nolint:wrapcheck,lll // errors of the repository are part of the api
}

func (s *TodoService) ReopenTodo(ctx context.Context, id domain.ID) (domain.Todo, error) {
	return s.repo.Update(ctx, id, domain.Patch{Completed: domain.Ref(false)}) //nolint:wrapcheck,lll // errors of the repository are part of the api
}

func (s *TodoService) SetPriority(ctx context.Context, id domain.ID, priority domain.Priority) (domain.Todo, error) {
	return s.repo.Update(ctx, id, domain.Patch{Priority: &priority}) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) DeleteTodo(ctx context.Context, id domain.ID) error {
	return s.repo.Delete(ctx, id) //nolint:wrapcheck // errors of the repository are part of the api
}

func (s *TodoService) ClearTodos(ctx context.Context) error {
	return s.repo.Clear(ctx) //nolint:wrapcheck // errors of the repository are part of the api
}

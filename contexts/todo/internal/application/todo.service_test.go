package application_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

func TestTodoService(t *testing.T) {
	t.Parallel()

	t.Run("scenario", func(t *testing.T) {
		t.Parallel()

		service, _ := serviceWith(t)

		a, err := service.CreateTodo(ctx, domain.NewTodo{Title: "Learn", Priority: domain.PriorityMedium})
		require.NoError(t, err)
		assert.Equal(t, domain.ID("todo-1"), a.ID)

		b, err := service.CreateTodo(ctx, domain.NewTodo{Title: "Build", Priority: domain.PriorityHigh})
		require.NoError(t, err)
		assert.Equal(t, domain.ID("todo-2"), b.ID)

		completed, err := service.CompleteTodo(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, completed.Completed)
		assert.False(t, completed.UpdatedAt.Before(a.UpdatedAt))

		incomplete, err := service.GetIncompleteTodos(ctx)
		require.NoError(t, err)
		require.Len(t, incomplete, 1)
		assert.Equal(t, b.ID, incomplete[0].ID)

		err = service.DeleteTodo(ctx, b.ID)
		assert.NoError(t, err)

		all, err := service.GetAllTodos(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, a.ID, all[0].ID)
		assert.True(t, all[0].Completed)
	})

	t.Run("by priority and tags", func(t *testing.T) {
		t.Parallel()

		urgent := newTodo("work")
		urgent.Priority = domain.PriorityUrgent

		service, _ := serviceWith(t, newTodo(), urgent, newTodo("home", "work"), newTodo("home"))

		todos, err := service.GetTodosByPriority(ctx, domain.PriorityUrgent)
		assert.NoError(t, err)
		assert.Len(t, todos, 1)
		assert.Equal(t, domain.ID("todo-2"), todos[0].ID)

		todos, err = service.GetTodosByTags(ctx, "work")
		assert.NoError(t, err)
		assert.Len(t, todos, 2)

		todos, err = service.GetTodosByTags(ctx, "home", "garden")
		assert.NoError(t, err)
		assert.Len(t, todos, 2)

		todos, err = service.GetTodosByTags(ctx)
		assert.NoError(t, err)
		assert.Empty(t, todos)

		todos, err = service.FindTodos(ctx, domain.Filter{
			Priority: domain.Ref(domain.PriorityMedium),
			Tags:     []string{"work"},
		})
		assert.NoError(t, err)
		assert.Len(t, todos, 1)
		assert.Equal(t, domain.ID("todo-3"), todos[0].ID)
	})

	t.Run("reopen and set priority", func(t *testing.T) {
		t.Parallel()

		service, _ := serviceWith(t, newTodo())

		todo, err := service.CompleteTodo(ctx, "todo-1")
		assert.NoError(t, err)
		assert.True(t, todo.Completed)

		todo, err = service.ReopenTodo(ctx, "todo-1")
		assert.NoError(t, err)
		assert.False(t, todo.Completed)

		todo, err = service.SetPriority(ctx, "todo-1", domain.PriorityLow)
		assert.NoError(t, err)
		assert.Equal(t, domain.PriorityLow, todo.Priority)

		completed, err := service.GetCompletedTodos(ctx)
		assert.NoError(t, err)
		assert.Empty(t, completed)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		service, _ := serviceWith(t)

		_, err := service.GetTodo(ctx, "todo-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = service.CompleteTodo(ctx, "todo-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = service.DeleteTodo(ctx, "todo-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("clear keeps counting", func(t *testing.T) {
		t.Parallel()

		service, _ := serviceWith(t, newTodo(), newTodo())

		err := service.ClearTodos(ctx)
		assert.NoError(t, err)

		all, _ := service.GetAllTodos(ctx)
		assert.Empty(t, all)

		todo, err := service.CreateTodo(ctx, newTodo())
		assert.NoError(t, err)
		assert.Equal(t, domain.ID("todo-3"), todo.ID)
	})
}

func TestTodoService_delegation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		call   func(s *application.TodoService) error
		method string
		filter domain.Filter
		patch  domain.Patch
	}{
		"all": {
			call:   func(s *application.TodoService) error { _, err := s.GetAllTodos(ctx); return err },
			method: "FindAll",
		},
		"completed": {
			call:   func(s *application.TodoService) error { _, err := s.GetCompletedTodos(ctx); return err },
			method: "FindAll",
			filter: domain.Filter{Completed: domain.Ref(true)},
		},
		"incomplete": {
			call:   func(s *application.TodoService) error { _, err := s.GetIncompleteTodos(ctx); return err },
			method: "FindAll",
			filter: domain.Filter{Completed: domain.Ref(false)},
		},
		"by priority": {
			call: func(s *application.TodoService) error {
				_, err := s.GetTodosByPriority(ctx, domain.PriorityHigh)
				return err
			},
			method: "FindAll",
			filter: domain.Filter{Priority: domain.Ref(domain.PriorityHigh)},
		},
		"by tags": {
			call:   func(s *application.TodoService) error { _, err := s.GetTodosByTags(ctx, "a", "b"); return err },
			method: "FindAll",
			filter: domain.Filter{Tags: []string{"a", "b"}},
		},
		"complete": {
			call:   func(s *application.TodoService) error { _, err := s.CompleteTodo(ctx, "todo-1"); return err },
			method: "Update",
			patch:  domain.Patch{Completed: domain.Ref(true)},
		},
		"reopen": {
			call:   func(s *application.TodoService) error { _, err := s.ReopenTodo(ctx, "todo-1"); return err },
			method: "Update",
			patch:  domain.Patch{Completed: domain.Ref(false)},
		},
		"set priority": {
			call: func(s *application.TodoService) error {
				_, err := s.SetPriority(ctx, "todo-1", domain.PriorityUrgent)
				return err
			},
			method: "Update",
			patch:  domain.Patch{Priority: domain.Ref(domain.PriorityUrgent)},
		},
		"delete": {
			call:   func(s *application.TodoService) error { return s.DeleteTodo(ctx, "todo-1") },
			method: "Delete",
		},
		"clear": {
			call:   func(s *application.TodoService) error { return s.ClearTodos(ctx) },
			method: "Clear",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			errRepo := errors.New("repo failed")
			repo := &spyRepository{err: errRepo}

			err := tt.call(application.NewTodoService(repo))
			assert.Same(t, errRepo, err)
			assert.Equal(t, []string{tt.method}, repo.calls)
			assert.Equal(t, tt.filter, repo.filter)
			assert.Equal(t, tt.patch, repo.patch)
		})
	}
}

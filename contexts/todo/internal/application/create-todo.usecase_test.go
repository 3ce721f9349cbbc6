package application_test

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

func TestCreateTodoRequestHandler_H(t *testing.T) {
	t.Parallel()

	t.Run("create todo", func(t *testing.T) {
		t.Parallel()

		service, repo := serviceWith(t)
		handler := application.NewCreateTodoRequestHandler(service)

		res, err := handler.H(ctx, application.CreateTodoRequest{
			Title:    "Learn",
			Priority: domain.PriorityHigh,
			Tags:     []string{"go"},
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.ID("todo-1"), res.Todo.ID)

		// verify
		todo, err := repo.FindByID(ctx, res.Todo.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Learn", todo.Title)
		assert.Equal(t, domain.PriorityHigh, todo.Priority)
		assert.Equal(t, []string{"go"}, todo.Tags)
	})

	t.Run("default priority", func(t *testing.T) {
		t.Parallel()

		service, _ := serviceWith(t)
		handler := application.NewCreateTodoRequestHandler(service)

		res, err := handler.H(ctx, application.CreateTodoRequest{Title: "Build"})
		assert.NoError(t, err)
		assert.Equal(t, domain.PriorityMedium, res.Todo.Priority)
		assert.Nil(t, res.Todo.Tags)
	})

	t.Run("invalid request", func(t *testing.T) {
		t.Parallel()

		tests := map[string]application.CreateTodoRequest{
			"missing title":    {},
			"title too long":   {Title: strings.Repeat("a", 1025)},
			"unknown priority": {Title: "a", Priority: "someday"},
			"empty tag":        {Title: "a", Tags: []string{"ok", ""}},
		}

		for name, req := range tests {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				service, repo := serviceWith(t)
				handler := application.NewCreateTodoRequestHandler(service)

				res, err := handler.H(ctx, req)
				assert.ErrorAs(t, err, &validator.ValidationErrors{})
				assert.Empty(t, res)

				todos, _ := repo.FindAll(ctx, domain.Filter{})
				assert.Empty(t, todos)
			})
		}
	})
}

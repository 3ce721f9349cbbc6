package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

func TestListTodosQueryHandler_H(t *testing.T) {
	t.Parallel()

	high := newTodo("work")
	high.Priority = domain.PriorityHigh

	done := newTodo("home")
	done.Completed = true

	tests := map[string]struct {
		query    application.ListTodosQuery
		expected []domain.ID
	}{
		"all": {
			query:    application.ListTodosQuery{},
			expected: []domain.ID{"todo-1", "todo-2", "todo-3"},
		},
		"completed": {
			query:    application.ListTodosQuery{Completed: domain.Ref(true)},
			expected: []domain.ID{"todo-3"},
		},
		"incomplete": {
			query:    application.ListTodosQuery{Completed: domain.Ref(false)},
			expected: []domain.ID{"todo-1", "todo-2"},
		},
		"priority": {
			query:    application.ListTodosQuery{Priority: domain.Ref(domain.PriorityHigh)},
			expected: []domain.ID{"todo-2"},
		},
		"tags": {
			query:    application.ListTodosQuery{Tags: []string{"home", "work"}},
			expected: []domain.ID{"todo-2", "todo-3"},
		},
		"combined": {
			query:    application.ListTodosQuery{Completed: domain.Ref(false), Tags: []string{"home", "work"}},
			expected: []domain.ID{"todo-2"},
		},
		"nothing matches": {
			query:    application.ListTodosQuery{Priority: domain.Ref(domain.PriorityUrgent)},
			expected: []domain.ID{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			service, _ := serviceWith(t, newTodo(), high, done)
			handler := application.NewListTodosQueryHandler(service)

			res, err := handler.H(ctx, tt.query)
			assert.NoError(t, err)
			assert.Equal(t, len(tt.expected), res.Total)

			ids := []domain.ID{}
			for _, todo := range res.Todos {
				ids = append(ids, todo.ID)
			}

			assert.Equal(t, tt.expected, ids)
		})
	}

	t.Run("invalid priority", func(t *testing.T) {
		t.Parallel()

		service, _ := serviceWith(t)
		handler := application.NewListTodosQueryHandler(service)

		_, err := handler.H(ctx, application.ListTodosQuery{Priority: domain.Ref(domain.Priority("soon"))})
		assert.Error(t, err)
	})
}

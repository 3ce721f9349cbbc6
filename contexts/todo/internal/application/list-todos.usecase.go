package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/todo/app"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

var ErrListTodosFailed = errors.New("list todos failed")

func NewListTodosQueryHandler(service *TodoService) app.Query[ListTodosQuery, ListTodosResponse] {
	return app.NewValidatedQuery[ListTodosQuery, ListTodosResponse](nil, &listTodosQueryHandler{service: service})
}

type listTodosQueryHandler struct {
	service *TodoService
}

type (
	// ListTodosQuery returns all Todos, if no field is set.
	ListTodosQuery struct {
		Completed *bool
		Priority  *domain.Priority `validate:"omitnil,oneof=low medium high urgent"`
		Tags      []string         `validate:"omitempty,dive,required"`
	}
	ListTodosResponse struct {
		Todos []domain.Todo
		Total int
	}
)

func (h *listTodosQueryHandler) H(ctx context.Context, query ListTodosQuery) (ListTodosResponse, error) {
	filter := domain.Filter{Completed: query.Completed, Priority: query.Priority}
	if len(query.Tags) > 0 {
		filter.Tags = query.Tags
	}

	todos, err := h.service.FindTodos(ctx, filter)
	if err != nil {
		return ListTodosResponse{}, fmt.Errorf("%w: %w", ErrListTodosFailed, err)
	}

	return ListTodosResponse{
		Todos: todos,
		Total: len(todos),
	}, nil
}

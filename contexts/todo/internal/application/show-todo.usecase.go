package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/todo/app"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

var ErrShowTodoFailed = errors.New("show todo failed")

func NewShowTodoQueryHandler(service *TodoService) app.Query[ShowTodoQuery, ShowTodoResponse] {
	return app.NewValidatedQuery[ShowTodoQuery, ShowTodoResponse](nil, &showTodoQueryHandler{service: service})
}

type showTodoQueryHandler struct {
	service *TodoService
}

type (
	ShowTodoQuery struct {
		ID domain.ID `validate:"required"`
	}
	ShowTodoResponse struct {
		Todo domain.Todo
	}
)

func (h *showTodoQueryHandler) H(ctx context.Context, query ShowTodoQuery) (ShowTodoResponse, error) {
	todo, err := h.service.GetTodo(ctx, query.ID)
	if err != nil {
		return ShowTodoResponse{}, fmt.Errorf("%w: %w", ErrShowTodoFailed, err)
	}

	return ShowTodoResponse{Todo: todo}, nil
}

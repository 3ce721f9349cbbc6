package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/todo/app"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

var (
	ErrDeleteTodoFailed = errors.New("delete todo failed")
	ErrClearTodosFailed = errors.New("clear todos failed")
)

func NewDeleteTodoCommandHandler(service *TodoService) app.Command[DeleteTodoCommand] {
	return app.NewValidatedCommand[DeleteTodoCommand](nil, &deleteTodoCommandHandler{service: service})
}

type deleteTodoCommandHandler struct {
	service *TodoService
}

type DeleteTodoCommand struct {
	ID domain.ID `validate:"required"`
}

func (h *deleteTodoCommandHandler) H(ctx context.Context, cmd DeleteTodoCommand) error {
	if err := h.service.DeleteTodo(ctx, cmd.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteTodoFailed, err)
	}

	return nil
}

func NewClearTodosCommandHandler(service *TodoService) app.Command[ClearTodosCommand] {
	return &clearTodosCommandHandler{service: service}
}

type clearTodosCommandHandler struct {
	service *TodoService
}

// ClearTodosCommand removes all Todos. New Todos never get an ID used before.
type ClearTodosCommand struct{}

func (h *clearTodosCommandHandler) H(ctx context.Context, _ ClearTodosCommand) error {
	if err := h.service.ClearTodos(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrClearTodosFailed, err)
	}

	return nil
}

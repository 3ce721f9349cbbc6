package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/todo/app"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

var (
	ErrCompleteTodoFailed = errors.New("complete todo failed")
	ErrReopenTodoFailed   = errors.New("reopen todo failed")
)

func NewCompleteTodoCommandHandler(service *TodoService) app.Command[CompleteTodoCommand] {
	return app.NewValidatedCommand[CompleteTodoCommand](nil, &completeTodoCommandHandler{service: service})
}

type completeTodoCommandHandler struct {
	service *TodoService
}

type CompleteTodoCommand struct {
	ID domain.ID `validate:"required"`
}

func (h *completeTodoCommandHandler) H(ctx context.Context, cmd CompleteTodoCommand) error {
	if _, err := h.service.CompleteTodo(ctx, cmd.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrCompleteTodoFailed, err)
	}

	return nil
}

func NewReopenTodoCommandHandler(service *TodoService) app.Command[ReopenTodoCommand] {
	return app.NewValidatedCommand[ReopenTodoCommand](nil, &reopenTodoCommandHandler{service: service})
}

type reopenTodoCommandHandler struct {
	service *TodoService
}

type ReopenTodoCommand struct {
	ID domain.ID `validate:"required"`
}

func (h *reopenTodoCommandHandler) H(ctx context.Context, cmd ReopenTodoCommand) error {
	if _, err := h.service.ReopenTodo(ctx, cmd.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrReopenTodoFailed, err)
	}

	return nil
}

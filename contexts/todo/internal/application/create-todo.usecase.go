package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/todo/app"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

var ErrCreateTodoFailed = errors.New("create todo failed")

func NewCreateTodoRequestHandler(service *TodoService) app.Request[CreateTodoRequest, CreateTodoResponse] {
	return app.NewValidatedRequest[CreateTodoRequest, CreateTodoResponse](nil, &createTodoRequestHandler{
		service: service,
	})
}

type createTodoRequestHandler struct {
	service *TodoService
}

type (
	CreateTodoRequest struct {
		Title       string          `json:"title"       validate:"required,max=1024"`
		Description string          `json:"description" validate:"max=4096"`
		Completed   bool            `json:"completed"`
		Priority    domain.Priority `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
		Tags        []string        `json:"tags"        validate:"omitempty,max=32,dive,required,max=64"`
	}
	CreateTodoResponse struct {
		Todo domain.Todo
	}
)

// H creates the Todo with medium priority, if no priority is given.
func (h *createTodoRequestHandler) H(ctx context.Context, req CreateTodoRequest) (CreateTodoResponse, error) {
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}

	todo, err := h.service.CreateTodo(ctx, domain.NewTodo{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Tags:        req.Tags,
	})
	if err != nil {
		return CreateTodoResponse{}, fmt.Errorf("%w: %w", ErrCreateTodoFailed, err)
	}

	return CreateTodoResponse{Todo: todo}, nil
}

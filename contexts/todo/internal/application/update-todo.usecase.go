package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/todo/app"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

var ErrUpdateTodoFailed = errors.New("update todo failed")

func NewUpdateTodoRequestHandler(service *TodoService) app.Request[UpdateTodoRequest, UpdateTodoResponse] {
	return app.NewValidatedRequest[UpdateTodoRequest, UpdateTodoResponse](nil, &updateTodoRequestHandler{
		service: service,
	})
}

type updateTodoRequestHandler struct {
	service *TodoService
}

type (
	// UpdateTodoRequest changes only the fields that are set.
	// RemoveTags takes precedence over Tags.
	UpdateTodoRequest struct {
		ID          domain.ID        `json:"-"           validate:"required"`
		Title       *string          `json:"title"       validate:"omitnil,min=1,max=1024"`
		Description *string          `json:"description" validate:"omitnil,max=4096"`
		Completed   *bool            `json:"completed"`
		Priority    *domain.Priority `json:"priority"    validate:"omitnil,oneof=low medium high urgent"`
		Tags        *[]string        `json:"tags"        validate:"omitnil,max=32,dive,required,max=64"`
		RemoveTags  bool             `json:"removeTags"`
	}
	UpdateTodoResponse struct {
		Todo domain.Todo
	}
)

func (h *updateTodoRequestHandler) H(ctx context.Context, req UpdateTodoRequest) (UpdateTodoResponse, error) {
	patch := domain.Patch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Tags:        req.Tags,
	}

	if req.RemoveTags {
		patch.Tags = domain.Ref[[]string](nil)
	}

	todo, err := h.service.UpdateTodo(ctx, req.ID, patch)
	if err != nil {
		return UpdateTodoResponse{}, fmt.Errorf("%w: %w", ErrUpdateTodoFailed, err)
	}

	return UpdateTodoResponse{Todo: todo}, nil
}

package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("todo not found")
	ErrPersistenceFailed = errors.New("could not persist todo")
)

// Repository stores Todos. Every implementation keeps these guarantees:
//   - IDs are never reused by the same instance, not even after Delete or Clear.
//   - FindAll returns Todos in the order they were created.
//   - Returned Todos are copies; changing them does not change the stored state.
type Repository interface {
	Create(ctx context.Context, todo NewTodo) (Todo, error)
	FindByID(ctx context.Context, id ID) (Todo, error)
	FindAll(ctx context.Context, filter Filter) ([]Todo, error)
	Update(ctx context.Context, id ID, patch Patch) (Todo, error)
	Delete(ctx context.Context, id ID) error
	// Clear removes all Todos but keeps the ID counter.
	Clear(ctx context.Context) error
}

package repository_test

import (
	"context"
	"fmt"

	"github.com/go-arrower/todo/repository"
)

func Example_extendRepositoryWithNewMethods() {
	ctx := context.Background()

	repo := NewNoteMemoryRepository()
	repo.Create(ctx, Note{ID: 1, Title: "buy milk"})

	n, _ := repo.FindByTitle(ctx, "buy milk")
	fmt.Println(n)

	// Output: {1 buy milk}
}

type NoteID int

type Note struct {
	ID    NoteID
	Title string
}

func NewNoteMemoryRepository() *NoteMemoryRepository {
	return &NoteMemoryRepository{
		MemoryRepository: repository.NewMemoryRepository[Note, NoteID](),
	}
}

type NoteMemoryRepository struct {
	*repository.MemoryRepository[Note, NoteID]
}

// FindByTitle implements a custom method, that is not offered by the MemoryRepository out of the box.
func (repo *NoteMemoryRepository) FindByTitle(ctx context.Context, title string) (Note, error) {
	for n := range repo.All(ctx) {
		if n.Title == title {
			return n, nil
		}
	}

	return Note{}, repository.ErrNotFound
}

package domain_test

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

// newTodo returns a fresh NewTodo, so tests can change it freely.
func newTodo() domain.NewTodo {
	return domain.NewTodo{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Priority:    domain.PriorityHigh,
		Tags:        []string{"work", "home"},
	}
}

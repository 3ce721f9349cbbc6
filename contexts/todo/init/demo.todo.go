package init

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

// RunDemo walks through the life cycle of two Todos and prints every step to w.
// It expects an empty repository, so the Todos get the IDs todo-1 and todo-2.
func (c *TodoContext) RunDemo(ctx context.Context, w io.Writer) error {
	blue := color.New(color.FgBlue, color.Bold).FprintfFunc()
	green := color.New(color.FgGreen).FprintlnFunc()
	yellow := color.New(color.FgYellow).FprintlnFunc()

	step := func(format string, args ...any) {
		blue(w, "==> "+format+"\n", args...)
	}

	list := func(todos []domain.Todo) {
		if len(todos) == 0 {
			yellow(w, "    (none)")
		}

		for _, t := range todos {
			green(w, "    "+t.String())
		}
	}

	step("create todo %q", "Learn")

	learn, err := c.app.CreateTodo.H(ctx, application.CreateTodoRequest{
		Title:    "Learn",
		Priority: domain.PriorityMedium,
	})
	if err != nil {
		return fmt.Errorf("could not create todo: %w", err)
	}

	list([]domain.Todo{learn.Todo})

	step("create todo %q", "Build")

	build, err := c.app.CreateTodo.H(ctx, application.CreateTodoRequest{
		Title:    "Build",
		Priority: domain.PriorityHigh,
	})
	if err != nil {
		return fmt.Errorf("could not create todo: %w", err)
	}

	list([]domain.Todo{build.Todo})

	step("complete %s", learn.Todo.ID)

	if err = c.app.CompleteTodo.H(ctx, application.CompleteTodoCommand{ID: learn.Todo.ID}); err != nil {
		return fmt.Errorf("could not complete todo: %w", err)
	}

	step("incomplete todos")

	incomplete, err := c.app.ListTodos.H(ctx, application.ListTodosQuery{Completed: domain.Ref(false)})
	if err != nil {
		return fmt.Errorf("could not list todos: %w", err)
	}

	list(incomplete.Todos)

	step("delete %s", build.Todo.ID)

	if err = c.app.DeleteTodo.H(ctx, application.DeleteTodoCommand{ID: build.Todo.ID}); err != nil {
		return fmt.Errorf("could not delete todo: %w", err)
	}

	step("all todos")

	all, err := c.app.ListTodos.H(ctx, application.ListTodosQuery{})
	if err != nil {
		return fmt.Errorf("could not list todos: %w", err)
	}

	list(all.Todos)

	return nil
}

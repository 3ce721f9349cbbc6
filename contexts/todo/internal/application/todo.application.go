package application

import (
	"github.com/go-arrower/todo/app"
)

// TodoApplication is a dependency injection container for all use cases.
type TodoApplication struct {
	CreateTodo   app.Request[CreateTodoRequest, CreateTodoResponse]
	UpdateTodo   app.Request[UpdateTodoRequest, UpdateTodoResponse]
	ShowTodo     app.Query[ShowTodoQuery, ShowTodoResponse]
	ListTodos    app.Query[ListTodosQuery, ListTodosResponse]
	CompleteTodo app.Command[CompleteTodoCommand]
	ReopenTodo   app.Command[ReopenTodoCommand]
	DeleteTodo   app.Command[DeleteTodoCommand]
	ClearTodos   app.Command[ClearTodosCommand]
}

// NewTodoApplication returns all use cases working on service, without any instrumentation.
func NewTodoApplication(service *TodoService) TodoApplication {
	return TodoApplication{
		CreateTodo:   NewCreateTodoRequestHandler(service),
		UpdateTodo:   NewUpdateTodoRequestHandler(service),
		ShowTodo:     NewShowTodoQueryHandler(service),
		ListTodos:    NewListTodosQueryHandler(service),
		CompleteTodo: NewCompleteTodoCommandHandler(service),
		ReopenTodo:   NewReopenTodoCommandHandler(service),
		DeleteTodo:   NewDeleteTodoCommandHandler(service),
		ClearTodos:   NewClearTodosCommandHandler(service),
	}
}

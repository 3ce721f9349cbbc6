// Package init is the context's startup API.
//
// Put all initialisations here.
// For example, load context-specific configuration, setup dependency injection,
// register routes and more.
package init

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-arrower/todo"
	"github.com/go-arrower/todo/app"
	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
	"github.com/go-arrower/todo/contexts/todo/internal/interfaces/repository"
	"github.com/go-arrower/todo/contexts/todo/internal/interfaces/web"
	arepo "github.com/go-arrower/todo/repository"
)

const contextName = "todo"

func NewTodoContext(ctx context.Context, di *todo.Container) (*TodoContext, error) {
	err := ensureRequiredDependencies(di)
	if err != nil {
		return nil, fmt.Errorf("missing dependencies to initialise context todo: %w", err)
	}

	tc, err := setupTodoContext(di)
	if err != nil {
		return nil, fmt.Errorf("could not initialise context todo: %w", err)
	}

	di.Logger.DebugContext(ctx, "context todo initialised",
		slog.String("context", contextName),
		slog.String("storage_backend", string(di.Config.Storage.Backend)),
	)

	return tc, nil
}

type TodoContext struct {
	globalContainer *todo.Container

	repo domain.Repository
	app  application.TodoApplication

	todoController *web.TodoController
}

func (c *TodoContext) Shutdown(_ context.Context) error {
	return nil
}

func ensureRequiredDependencies(di *todo.Container) error {
	if di == nil {
		return fmt.Errorf("%w: container", todo.ErrMissingDependency)
	}

	if di.Logger == nil {
		return fmt.Errorf("%w: logger", todo.ErrMissingDependency)
	}

	if di.TraceProvider == nil {
		return fmt.Errorf("%w: trace provider", todo.ErrMissingDependency)
	}

	if di.MeterProvider == nil {
		return fmt.Errorf("%w: meter provider", todo.ErrMissingDependency)
	}

	if di.APIRouter == nil {
		return fmt.Errorf("%w: api router", todo.ErrMissingDependency)
	}

	return di.EnsureAllDependenciesPresent() //nolint:wrapcheck // is already wrapped with ErrMissingDependency
}

func setupTodoContext(di *todo.Container) (*TodoContext, error) {
	repo, err := newRepository(di)
	if err != nil {
		return nil, err
	}

	repo = repository.NewTracedRepository(repo)
	useCases := setupApplication(di, application.NewTodoService(repo))

	tc := &TodoContext{
		globalContainer: di,
		repo:            repo,
		app:             useCases,
		todoController:  web.NewTodoController(useCases),
	}

	tc.todoController.RegisterRoutes(di.APIRouter)

	return tc, nil
}

func newRepository(di *todo.Container) (domain.Repository, error) { //nolint:ireturn // backend is chosen by config
	conf := di.Config

	switch conf.Storage.Backend {
	case todo.JSONBackend:
		store, err := arepo.NewJSONStore(conf.Storage.JSONDir)
		if err != nil {
			return nil, fmt.Errorf("could not open json store: %w", err)
		}

		return repository.NewMemoryRepository(repository.WithStore(store)), nil
	case todo.RedisBackend:
		repo, err := repository.NewRedisRepository(di.Redis, repository.WithKeyPrefix(conf.Redis.KeyPrefix))
		if err != nil {
			return nil, fmt.Errorf("could not create redis repository: %w", err)
		}

		return repo, nil
	case todo.PostgresBackend:
		repo, err := repository.NewPostgresRepository(di.PGx)
		if err != nil {
			return nil, fmt.Errorf("could not create postgres repository: %w", err)
		}

		return repo, nil
	case todo.MemoryBackend:
	}

	return repository.NewMemoryRepository(), nil
}

// setupApplication instruments all use cases.
// With postgres, every use case changing data runs in its own transaction.
func setupApplication(di *todo.Container, service *application.TodoService) application.TodoApplication {
	useCases := application.NewTodoApplication(service)

	if di.PGx != nil {
		useCases.CreateTodo = app.NewTxRequest(di.PGx, useCases.CreateTodo)
		useCases.UpdateTodo = app.NewTxRequest(di.PGx, useCases.UpdateTodo)
		useCases.CompleteTodo = app.NewTxCommand(di.PGx, useCases.CompleteTodo)
		useCases.ReopenTodo = app.NewTxCommand(di.PGx, useCases.ReopenTodo)
		useCases.DeleteTodo = app.NewTxCommand(di.PGx, useCases.DeleteTodo)
		useCases.ClearTodos = app.NewTxCommand(di.PGx, useCases.ClearTodos)
	}

	return application.TodoApplication{
		CreateTodo:   app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, di.Logger, useCases.CreateTodo),
		UpdateTodo:   app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, di.Logger, useCases.UpdateTodo),
		ShowTodo:     app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, di.Logger, useCases.ShowTodo),
		ListTodos:    app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, di.Logger, useCases.ListTodos),
		CompleteTodo: app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, di.Logger, useCases.CompleteTodo),
		ReopenTodo:   app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, di.Logger, useCases.ReopenTodo),
		DeleteTodo:   app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, di.Logger, useCases.DeleteTodo),
		ClearTodos:   app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, di.Logger, useCases.ClearTodos),
	}
}

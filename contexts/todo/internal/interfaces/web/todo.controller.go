package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

/*
Naming follows the conventions of the other controllers:
	- index (list)
	- store (new)
	- show
	- update
	- delete
*/

func NewTodoController(app application.TodoApplication) *TodoController {
	return &TodoController{app: app}
}

// TodoController exposes the use cases as a JSON api.
type TodoController struct {
	app application.TodoApplication
}

// RegisterRoutes mounts all routes relative to r, e.g. /todos.
func (tc *TodoController) RegisterRoutes(r *echo.Group) {
	r.GET("/todos", tc.Index())
	r.POST("/todos", tc.Store())
	r.DELETE("/todos", tc.Clear())
	r.GET("/todos/:id", tc.Show())
	r.PATCH("/todos/:id", tc.Update())
	r.DELETE("/todos/:id", tc.Delete())
	r.POST("/todos/:id/complete", tc.Complete())
	r.POST("/todos/:id/reopen", tc.Reopen())
}

type todoList struct {
	Todos []domain.Todo `json:"todos"`
	Total int           `json:"total"`
}

// Index filters by the query parameters completed, priority and tag.
// The parameter tag can be given multiple times, a Todo matches if it has any of the tags.
func (tc *TodoController) Index() func(echo.Context) error {
	return func(c echo.Context) error {
		var query application.ListTodosQuery

		if completed := c.QueryParam("completed"); completed != "" {
			b, err := strconv.ParseBool(completed)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid value for completed: "+completed)
			}

			query.Completed = &b
		}

		if priority := c.QueryParam("priority"); priority != "" {
			p, err := domain.ParsePriority(priority)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}

			query.Priority = &p
		}

		query.Tags = c.QueryParams()["tag"]

		res, err := tc.app.ListTodos.H(c.Request().Context(), query)
		if err != nil {
			return httpError(err)
		}

		todos := res.Todos
		if todos == nil {
			todos = []domain.Todo{}
		}

		return c.JSON(http.StatusOK, todoList{Todos: todos, Total: res.Total})
	}
}

func (tc *TodoController) Store() func(echo.Context) error {
	return func(c echo.Context) error {
		var req application.CreateTodoRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		res, err := tc.app.CreateTodo.H(c.Request().Context(), req)
		if err != nil {
			return httpError(err)
		}

		c.Response().Header().Set(echo.HeaderLocation, c.Path()+"/"+string(res.Todo.ID))

		return c.JSON(http.StatusCreated, res.Todo)
	}
}

func (tc *TodoController) Show() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := tc.app.ShowTodo.H(c.Request().Context(), application.ShowTodoQuery{ID: domain.ID(c.Param("id"))})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, res.Todo)
	}
}

// Update changes only the fields present in the body.
func (tc *TodoController) Update() func(echo.Context) error {
	return func(c echo.Context) error {
		var req application.UpdateTodoRequest
		if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		req.ID = domain.ID(c.Param("id"))

		res, err := tc.app.UpdateTodo.H(c.Request().Context(), req)
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, res.Todo)
	}
}

func (tc *TodoController) Complete() func(echo.Context) error {
	return func(c echo.Context) error {
		err := tc.app.CompleteTodo.H(c.Request().Context(), application.CompleteTodoCommand{ID: domain.ID(c.Param("id"))})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

func (tc *TodoController) Reopen() func(echo.Context) error {
	return func(c echo.Context) error {
		err := tc.app.ReopenTodo.H(c.Request().Context(), application.ReopenTodoCommand{ID: domain.ID(c.Param("id"))})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

func (tc *TodoController) Delete() func(echo.Context) error {
	return func(c echo.Context) error {
		err := tc.app.DeleteTodo.H(c.Request().Context(), application.DeleteTodoCommand{ID: domain.ID(c.Param("id"))})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

func (tc *TodoController) Clear() func(echo.Context) error {
	return func(c echo.Context) error {
		if err := tc.app.ClearTodos.H(c.Request().Context(), application.ClearTodosCommand{}); err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// httpError maps the errors of the use cases to a status code.
// All other errors are left to the error handler of echo, which responds with 500.
func httpError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = e.Tag()
		}

		return echo.NewHTTPError(http.StatusBadRequest, fields).SetInternal(err)
	}

	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	}

	return fmt.Errorf("%w", err)
}

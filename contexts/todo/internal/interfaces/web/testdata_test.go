package web_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/todo/contexts/todo/internal/application"
	"github.com/go-arrower/todo/contexts/todo/internal/domain"
	"github.com/go-arrower/todo/contexts/todo/internal/interfaces/repository"
	"github.com/go-arrower/todo/contexts/todo/internal/interfaces/web"
)

var ctx = context.Background()

// newTestRouter returns a router serving the TodoController,
// backed by a memory repository containing todos.
func newTestRouter(t *testing.T, todos ...domain.NewTodo) *echo.Echo {
	t.Helper()

	repo := repository.NewMemoryRepository()

	for _, todo := range todos {
		_, err := repo.Create(ctx, todo)
		require.NoError(t, err)
	}

	return newRouter(application.NewTodoApplication(application.NewTodoService(repo)))
}

func newRouter(app application.TodoApplication) *echo.Echo {
	e := echo.New()
	web.NewTodoController(app).RegisterRoutes(e.Group(""))

	return e
}

// serve sends a request with the JSON body to router.
func serve(router *echo.Echo, method string, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

var (
	milk = domain.NewTodo{
		Title:    "Buy milk",
		Priority: domain.PriorityLow,
		Tags:     []string{"home", "shopping"},
	}
	report = domain.NewTodo{
		Title:     "Write report",
		Completed: true,
		Priority:  domain.PriorityHigh,
	}
)

package app_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/todo/alog"
	"github.com/go-arrower/todo/app"
)

func TestNewLoggedRequest(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		handler := app.NewLoggedRequest(logger, app.TestRequestHandler(successfulRequest))

		res, err := handler.H(ctx, request{})
		assert.NoError(t, err)
		assert.Equal(t, "ok", res.Value)

		logger.Total(2)
		logger.Contains(`msg="executing request" command=app_test.request`)
		logger.Contains(`msg="request executed successfully" command=app_test.request`)
	})

	t.Run("failed request", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		handler := app.NewLoggedRequest(logger, app.TestRequestHandler(failingRequest))

		_, err := handler.H(ctx, request{})
		assert.ErrorIs(t, err, errUseCaseFailed)

		logger.Contains(`msg="executing request"`)
		logger.Contains(`msg="failed to execute request" command=app_test.request err=some-error`)
		logger.NotContains("successfully")
	})
}

func TestNewLoggedCommand(t *testing.T) {
	t.Parallel()

	t.Run("successful command", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		handler := app.NewLoggedCommand(logger, app.TestCommandHandler(successfulCommand))

		err := handler.H(ctx, request{})
		assert.NoError(t, err)

		logger.Contains(`msg="executing command" command=app_test.request`)
		logger.Contains(`msg="command executed successfully" command=app_test.request`)
	})

	t.Run("failed command", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		handler := app.NewLoggedCommand(logger, app.TestCommandHandler(failingCommand))

		err := handler.H(ctx, request{})
		assert.ErrorIs(t, err, errUseCaseFailed)

		logger.Contains(`msg="failed to execute command" command=app_test.request err=some-error`)
	})
}

func TestNewLoggedQuery(t *testing.T) {
	t.Parallel()

	t.Run("successful query", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		handler := app.NewLoggedQuery(logger, app.TestQueryHandler(successfulRequest))

		_, err := handler.H(ctx, request{})
		assert.NoError(t, err)

		logger.Contains(`msg="executing query" command=app_test.request`)
		logger.Contains(`msg="query executed successfully" command=app_test.request`)
	})

	t.Run("failed query", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		handler := app.NewLoggedQuery(logger, app.TestQueryHandler(failingRequest))

		_, err := handler.H(ctx, request{})
		assert.ErrorIs(t, err, errUseCaseFailed)

		logger.Contains(`msg="failed to execute query" command=app_test.request err=some-error`)
	})

	t.Run("not logged above debug level", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		logger.SetLevel(slog.LevelInfo)

		handler := app.NewLoggedQuery(logger, app.TestQueryHandler(successfulRequest))

		_, err := handler.H(ctx, request{})
		assert.NoError(t, err)

		logger.Empty()
	})
}

//go:build integration

package tests_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRedisDockerForIntegrationTestingInstance(t *testing.T) {
	t.Parallel()

	t.Run("connected", func(t *testing.T) {
		t.Parallel()

		err := redisDocker.Client().Ping(context.Background()).Err()
		assert.NoError(t, err)
	})

	t.Run("unique key prefix", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, redisDocker.KeyPrefix(), redisDocker.KeyPrefix())
	})
}

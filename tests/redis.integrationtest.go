//go:build integration

package tests

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
)

//nolint:gochecknoglobals // the variables are used on purpose for a singleton pattern.
var (
	muRedis        = &sync.Mutex{}
	singletonRedis *RedisDocker
)

var defaultRedisRunOptions = &dockertest.RunOptions{ //nolint:gochecknoglobals,exhaustruct // only set required configuration
	Repository: "redis",
	Tag:        "7-alpine",
}

type RedisDocker struct {
	client        *redis.Client
	cleanupDocker func() error
}

// GetRedisDockerForIntegrationTestingInstance returns a connected client to a redis in docker.
// Subsequent calls return the same instance, so integration tests running in parallel share one container.
// Tests sharing the instance should separate their data, e.g. with a unique key prefix.
// In case of an issue, it panics.
func GetRedisDockerForIntegrationTestingInstance() *RedisDocker {
	muRedis.Lock()
	defer muRedis.Unlock()

	if singletonRedis != nil {
		return singletonRedis
	}

	var client *redis.Client

	retryFunc := func(resource *dockertest.Resource) func() error {
		return func() error {
			client = redis.NewClient(&redis.Options{ //nolint:exhaustruct
				Addr: net.JoinHostPort("localhost", resource.GetPort("6379/tcp")),
			})

			return client.Ping(context.Background()).Err() //nolint:wrapcheck
		}
	}

	options := defaultRedisRunOptions
	options.Name = fmt.Sprintf("todo-testing-redis-%d", rand.Intn(1000)) //nolint:gosec,mnd // no need for secure number, just prevent collisions

	cleanup, err := StartDockerContainer(options, retryFunc)
	if err != nil {
		panic(err)
	}

	singletonRedis = &RedisDocker{
		client:        client,
		cleanupDocker: cleanup,
	}

	return singletonRedis
}

// Client returns the redis client connected to the container.
func (rd *RedisDocker) Client() redis.UniversalClient { //nolint:ireturn // the repositories accept a UniversalClient
	return rd.client
}

// KeyPrefix returns a random prefix, use it to isolate the keys of a test.
func (rd *RedisDocker) KeyPrefix() string {
	return "test-" + randomDatabaseName()
}

// Cleanup closes the client, stops, and removes the docker container.
// In case of an issue, it panics.
func (rd *RedisDocker) Cleanup() {
	if err := rd.client.Close(); err != nil {
		panic(err)
	}

	if err := rd.cleanupDocker(); err != nil {
		panic(err)
	}
}

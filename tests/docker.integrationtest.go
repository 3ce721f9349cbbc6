//go:build integration

// Package tests starts the docker containers the integration tests of the todo service run against.
package tests

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

var (
	ErrDockerFailure       = errors.New("docker failure")
	ErrMissingInstanceName = errors.New("missing docker instance name")
)

// RetryFunc returns the connection attempt to a started container.
// The attempt is repeated with a backoff until the container accepts connections.
type RetryFunc func(resource *dockertest.Resource) func() error

// containers counts the users of every running container, by container name.
//
//nolint:gochecknoglobals // shared by all tests of one package
var containers = struct {
	sync.Mutex
	users   map[string]int
	cleanup map[string]func() error
}{
	users:   map[string]int{},
	cleanup: map[string]func() error{},
}

// GetDockerContainerInstance returns the cleanup of an already running container with the name runOptions.Name
// or starts a new one. The container is removed once every caller has called its cleanup.
func GetDockerContainerInstance(runOptions *dockertest.RunOptions, retryFunc RetryFunc) (func() error, error) {
	if runOptions == nil || runOptions.Name == "" {
		return nil, ErrMissingInstanceName
	}

	name := "/" + runOptions.Name // docker reports names with a leading slash

	containers.Lock()
	cleanup, running := containers.cleanup[name]
	if running {
		containers.users[name]++
	}
	containers.Unlock()

	if running {
		return cleanup, nil
	}

	return StartDockerContainer(runOptions, retryFunc)
}

// StartDockerContainer pulls and runs the image given by runOptions, e.g. Repository "postgres" and Tag "16-alpine",
// and blocks until retryFunc succeeds.
// The container is killed by docker after two minutes at the latest.
func StartDockerContainer(runOptions *dockertest.RunOptions, retryFunc RetryFunc) (func() error, error) {
	if runOptions == nil {
		return nil, fmt.Errorf("%w: invalid run options", ErrDockerFailure)
	}

	if retryFunc == nil {
		return nil, fmt.Errorf("%w: invalid retry func", ErrDockerFailure)
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("%w: could not create pool: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("%w: could not reach docker: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	resource, err := pool.RunWithOptions(runOptions, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not run container: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	const expire = 120
	_ = resource.Expire(expire)

	pool.MaxWait = expire * time.Second
	if err = pool.Retry(retryFunc(resource)); err != nil {
		_ = pool.Purge(resource)
		return nil, fmt.Errorf("%w: could not connect to container: %v", ErrDockerFailure, err) //nolint:errorlint,lll
	}

	name := resource.Container.Name
	cleanup := func() error {
		containers.Lock()
		defer containers.Unlock()

		containers.users[name]--
		if containers.users[name] > 0 {
			return nil
		}

		delete(containers.users, name)
		delete(containers.cleanup, name)

		if err := pool.Purge(resource); err != nil {
			return fmt.Errorf("%w: could not purge container: %v", ErrDockerFailure, err) //nolint:errorlint
		}

		return nil
	}

	containers.Lock()
	containers.users[name] = 1
	containers.cleanup[name] = cleanup
	containers.Unlock()

	return cleanup, nil
}

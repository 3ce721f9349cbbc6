package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

const maxUpdateRetries = 10

// WithKeyPrefix sets the namespace of all keys used by a RedisRepository.
// Use it to run multiple repositories on the same redis database. Default is "todo".
func WithKeyPrefix(prefix string) Option {
	return func(c *config) {
		c.keyPrefix = prefix
	}
}

// NewRedisRepository returns a Repository storing every Todo as a JSON document.
//
// Keys used:
//
//	<prefix>:seq   counter for the IDs, never reset
//	<prefix>:ids   list of all IDs, in insertion order
//	<prefix>:<id>  the Todo as JSON
func NewRedisRepository(client redis.UniversalClient, opts ...Option) (*RedisRepository, error) {
	if client == nil {
		return nil, ErrMissingConnection
	}

	conf := newConfig(opts)

	return &RedisRepository{
		client: client,
		conf:   conf,
	}, nil
}

type RedisRepository struct {
	client redis.UniversalClient
	conf   config
}

var _ domain.Repository = (*RedisRepository)(nil)

func (repo *RedisRepository) seqKey() string {
	return repo.conf.keyPrefix + ":seq"
}

func (repo *RedisRepository) idsKey() string {
	return repo.conf.keyPrefix + ":ids"
}

func (repo *RedisRepository) todoKey(id domain.ID) string {
	return repo.conf.keyPrefix + ":" + string(id)
}

func (repo *RedisRepository) Create(ctx context.Context, newTodo domain.NewTodo) (domain.Todo, error) {
	n, err := repo.client.Incr(ctx, repo.seqKey()).Result()
	if err != nil {
		return domain.Todo{}, fmt.Errorf("%w: could not get next id: %w", domain.ErrPersistenceFailed, err)
	}

	todo := newTodo.Build(domain.NewID(n), repo.conf.now())

	data, err := json.Marshal(todo)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	_, err = repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, repo.todoKey(todo.ID), data, 0)
		pipe.RPush(ctx, repo.idsKey(), string(todo.ID))

		return nil
	})
	if err != nil {
		return domain.Todo{}, fmt.Errorf("%w: could not save %s: %w", domain.ErrPersistenceFailed, todo.ID, err)
	}

	return todo, nil
}

func (repo *RedisRepository) FindByID(ctx context.Context, id domain.ID) (domain.Todo, error) {
	return repo.get(ctx, repo.client, id)
}

func (repo *RedisRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.Todo, error) {
	ids, err := repo.client.LRange(ctx, repo.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: could not list ids: %w", domain.ErrPersistenceFailed, err)
	}

	todos := []domain.Todo{}
	if len(ids) == 0 {
		return todos, nil
	}

	pipe := repo.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))

	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, repo.todoKey(domain.ID(id)))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: could not load todos: %w", domain.ErrPersistenceFailed, err)
	}

	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			// deleted between LRANGE and GET
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
		}

		var todo domain.Todo
		if err := json.Unmarshal(data, &todo); err != nil {
			return nil, fmt.Errorf("%w: corrupt todo: %w", domain.ErrPersistenceFailed, err)
		}

		if filter.Matches(todo) {
			todos = append(todos, todo)
		}
	}

	return todos, nil
}

// Update uses optimistic locking: if the Todo changes while it is updated, the update is retried.
func (repo *RedisRepository) Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Todo, error) {
	key := repo.todoKey(id)

	var updated domain.Todo

	change := func(tx *redis.Tx) error {
		todo, err := repo.get(ctx, tx, id)
		if err != nil {
			return err
		}

		updated = todo.Apply(patch, repo.conf.now())

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})

		return err //nolint:wrapcheck // checked by the caller for redis.TxFailedErr
	}

	for range maxUpdateRetries {
		err := repo.client.Watch(ctx, change, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrPersistenceFailed) {
				return domain.Todo{}, err
			}

			return domain.Todo{}, fmt.Errorf("%w: could not update %s: %w", domain.ErrPersistenceFailed, id, err)
		}

		return updated, nil
	}

	return domain.Todo{}, fmt.Errorf("%w: too many concurrent updates of %s", domain.ErrPersistenceFailed, id)
}

func (repo *RedisRepository) Delete(ctx context.Context, id domain.ID) error {
	var del *redis.IntCmd

	_, err := repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, repo.todoKey(id))
		pipe.LRem(ctx, repo.idsKey(), 0, string(id))

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: could not delete %s: %w", domain.ErrPersistenceFailed, id, err)
	}

	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return nil
}

func (repo *RedisRepository) Clear(ctx context.Context) error {
	ids, err := repo.client.LRange(ctx, repo.idsKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: could not list ids: %w", domain.ErrPersistenceFailed, err)
	}

	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, repo.idsKey())

	for _, id := range ids {
		keys = append(keys, repo.todoKey(domain.ID(id)))
	}

	if err := repo.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: could not clear: %w", domain.ErrPersistenceFailed, err)
	}

	return nil
}

// getter is implemented by the client and by a transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (repo *RedisRepository) get(ctx context.Context, client getter, id domain.ID) (domain.Todo, error) {
	data, err := client.Get(ctx, repo.todoKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Todo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	if err != nil {
		return domain.Todo{}, fmt.Errorf("%w: could not get %s: %w", domain.ErrPersistenceFailed, id, err)
	}

	var todo domain.Todo
	if err := json.Unmarshal(data, &todo); err != nil {
		return domain.Todo{}, fmt.Errorf("%w: corrupt todo %s: %w", domain.ErrPersistenceFailed, id, err)
	}

	return todo, nil
}

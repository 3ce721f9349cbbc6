package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-arrower/todo/contexts/todo/internal/domain"
	"github.com/go-arrower/todo/repository"
)

// Option configures a Repository of this package.
type Option func(*config)

// WithClock replaces time.Now as the source for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithStore persists a MemoryRepository, e.g. with a repository.JSONStore.
func WithStore(store repository.Store) Option {
	return func(c *config) {
		c.store = store
	}
}

type config struct {
	now       func() time.Time
	store     repository.Store
	keyPrefix string
}

func newConfig(opts []Option) config {
	c := config{now: time.Now, store: nil, keyPrefix: "todo"}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

const (
	todosFile   = "todos.json"
	counterFile = "todos.seq.json"
)

// NewMemoryRepository returns a Repository keeping all Todos in memory.
// With a store, the ID counter is persisted next to the Todos, so IDs are not reused after a restart.
func NewMemoryRepository(opts ...Option) *MemoryRepository {
	conf := newConfig(opts)

	repoOpts := []repository.Option{repository.WithStoreFilename(todosFile)}
	if conf.store != nil {
		repoOpts = append(repoOpts, repository.WithStore(conf.store))
	}

	repo := &MemoryRepository{
		todos: repository.NewMemoryRepository[domain.Todo, domain.ID](repoOpts...),
		store: conf.store,
		mu:    sync.Mutex{},
		seq:   0,
		now:   conf.now,
	}

	if conf.store != nil {
		err := conf.store.Load(counterFile, &repo.seq)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			panic("could not load the id counter from store: " + err.Error())
		}
	}

	// stores written without a counter file continue after the highest ID
	for todo := range repo.todos.All(context.Background()) {
		if n, ok := todo.ID.Sequence(); ok && n > repo.seq {
			repo.seq = n
		}
	}

	return repo
}

// MemoryRepository is the default Repository. It is safe for concurrent use.
type MemoryRepository struct {
	todos *repository.MemoryRepository[domain.Todo, domain.ID]
	store repository.Store

	mu  sync.Mutex // guards seq
	seq int64
	now func() time.Time
}

var _ domain.Repository = (*MemoryRepository)(nil)

// nextID counts up even if the counter can not be stored, so an ID is never handed out twice.
func (repo *MemoryRepository) nextID() (domain.ID, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.seq++

	if repo.store != nil {
		if err := repo.store.Store(counterFile, repo.seq); err != nil {
			return "", fmt.Errorf("could not store id counter: %w", err)
		}
	}

	return domain.NewID(repo.seq), nil
}

func (repo *MemoryRepository) Create(ctx context.Context, newTodo domain.NewTodo) (domain.Todo, error) {
	id, err := repo.nextID()
	if err != nil {
		return domain.Todo{}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	todo := newTodo.Build(id, repo.now())

	if err := repo.todos.Create(ctx, todo); err != nil {
		return domain.Todo{}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	return todo.Clone(), nil
}

func (repo *MemoryRepository) FindByID(ctx context.Context, id domain.ID) (domain.Todo, error) {
	todo, err := repo.todos.FindByID(ctx, id)
	if err != nil {
		return domain.Todo{}, mapError(err, id)
	}

	return todo.Clone(), nil
}

func (repo *MemoryRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.Todo, error) {
	todos, err := repo.todos.FindBy(ctx, filter.Matches)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	for i := range todos {
		todos[i] = todos[i].Clone()
	}

	return todos, nil
}

func (repo *MemoryRepository) Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Todo, error) {
	todo, err := repo.todos.Modify(ctx, id, func(todo domain.Todo) (domain.Todo, error) {
		return todo.Apply(patch, repo.now()), nil
	})
	if err != nil {
		return domain.Todo{}, mapError(err, id)
	}

	return todo.Clone(), nil
}

func (repo *MemoryRepository) Delete(ctx context.Context, id domain.ID) error {
	if err := repo.todos.DeleteByID(ctx, id); err != nil {
		return mapError(err, id)
	}

	return nil
}

func (repo *MemoryRepository) Clear(ctx context.Context) error {
	if err := repo.todos.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	return nil
}

func mapError(err error, id domain.ID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceFailed, id, err)
}

package repository

import (
	"context"
	"errors"
	"iter"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrSaveFailed    = errors.New("save failed")
	ErrAlreadyExists = errors.New("exists already")
)

// Option configures a MemoryRepository or a PostgresRepository.
type Option func(*repoConfig)

// WithIDField set's the name of the field that is used as an id or primary key.
// If not set, it is assumed that the entity struct has a field with the name "ID".
func WithIDField(idFieldName string) Option { //nolint:revive // unexported-return is OK for this option
	return func(config *repoConfig) {
		config.idFieldName = idFieldName
	}
}

// WithStore sets a Store used to persist the Repository.
//
// Every write stores the whole collection. If the Store fails, the change is rolled back in memory.
func WithStore(store Store) Option { //nolint:revive // unexported-return is OK for this option
	return func(config *repoConfig) {
		config.store = store
	}
}

// WithStoreFilename overwrites the file name a Store should use to persist this Repository.
func WithStoreFilename(name string) Option { //nolint:revive // unexported-return is OK for this option
	return func(config *repoConfig) {
		config.filename = name
	}
}

type repoConfig struct {
	idFieldName string
	store       Store
	filename    string
	orderBy     []string
}

// Repository documents the methods offered by the generic MemoryRepository.
// If your repository needs additional methods, embed MemoryRepository into your own type.
// See the examples in the test files.
type Repository[E any, ID id] interface { //nolint:interfacebloat // showcase of all methods that are possible
	Create(ctx context.Context, entity E) error
	Modify(ctx context.Context, id ID, change func(E) (E, error)) (E, error)

	FindByID(ctx context.Context, id ID) (E, error)
	FindAll(ctx context.Context) ([]E, error)
	FindBy(ctx context.Context, match func(E) bool) ([]E, error)
	Count(ctx context.Context) (int, error)

	DeleteByID(ctx context.Context, id ID) error
	DeleteAll(ctx context.Context) error
	Clear(ctx context.Context) error

	All(ctx context.Context) iter.Seq[E]
}

// id are the types allowed as a primary key used in the generic Repository.
type id interface {
	~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

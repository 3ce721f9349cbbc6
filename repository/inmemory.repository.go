package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"reflect"
	"slices"
	"sync"
)

var _ Repository[struct{ ID string }, string] = (*MemoryRepository[struct{ ID string }, string])(nil)

// NewMemoryRepository returns an implementation of Repository for the given entity E.
// It is expected that E has a field called `ID`, that is used as the primary key and can
// be overwritten by WithIDField.
// If your repository needs additional methods, you can embed this repo into our own implementation to extend
// your own repository easily to your use case. See the examples in the test files.
//
// Warning: the consistency of MemoryRepository is not on paar with ACID guarantees of a RDBMS.
func NewMemoryRepository[E any, ID id](opts ...Option) *MemoryRepository[E, ID] {
	repo := &MemoryRepository[E, ID]{
		Mutex: &sync.Mutex{},
		Data:  make(map[ID]E),
		order: []ID{},
		repoConfig: repoConfig{
			idFieldName: "ID",
			store:       noopStore{},
			filename:    defaultFileName(new(E)),
		},
	}

	for _, opt := range opts {
		opt(&repo.repoConfig)
	}

	var stored []E

	err := repo.store.Load(repo.filename, &stored)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("could not load data for memory repository from store: " + err.Error())
	}

	for _, e := range stored {
		id := repo.getID(e)
		if _, found := repo.Data[id]; !found {
			repo.order = append(repo.order, id)
		}

		repo.Data[id] = e
	}

	return repo
}

// MemoryRepository implements Repository in a generic way. Use it to speed up your unit testing.
// All methods returning multiple entities keep the order in which the entities were first added.
type MemoryRepository[E any, ID id] struct {
	// Mutex is embedded, so that repositories who extend MemoryRepository can lock the same mutex as other methods.
	*sync.Mutex

	// Data is the repository's collection. It is exposed in case you're extending the repository.
	// PREVENT using and accessing Data it directly, go through the repository methods.
	// If you write to Data, USE the Mutex to lock first.
	Data  map[ID]E
	order []ID

	repoConfig
}

const panicIDNotSupported = "type of ID is not supported: "

func defaultFileName(entity any) string {
	return reflect.TypeOf(entity).Elem().Name() + ".json"
}

func (repo *MemoryRepository[E, ID]) getID(t any) ID { //nolint:ireturn // fp, as it is not recognised even with "generic" setting
	val := reflect.ValueOf(t)

	idField := val.FieldByName(repo.idFieldName)
	if !idField.IsValid() {
		panic("entity does not have the field with name: " + repo.idFieldName)
	}

	var id ID

	switch idField.Kind() {
	case reflect.String:
		reflect.ValueOf(&id).Elem().SetString(idField.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		reflect.ValueOf(&id).Elem().SetInt(idField.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		reflect.ValueOf(&id).Elem().SetUint(idField.Uint())
	default:
		panic(panicIDNotSupported + idField.Kind().String())
	}

	return id
}

func (repo *MemoryRepository[E, ID]) Create(_ context.Context, entity E) error {
	repo.Lock()
	defer repo.Unlock()

	id := repo.getID(entity)
	if id == *new(ID) {
		return fmt.Errorf("missing ID: %w", ErrSaveFailed)
	}

	if _, found := repo.Data[id]; found {
		return ErrAlreadyExists
	}

	repo.Data[id] = entity
	repo.order = append(repo.order, id)

	if err := repo.persist(); err != nil {
		delete(repo.Data, id)
		repo.order = repo.order[:len(repo.order)-1]

		return err
	}

	return nil
}

// Modify replaces the entity with the given id by the result of change.
// Reading, changing, and writing happen under the same lock, so no other write gets lost.
// If change returns an error, the entity stays untouched.
func (repo *MemoryRepository[E, ID]) Modify( //nolint:ireturn // valid use of generics
	_ context.Context,
	id ID,
	change func(E) (E, error),
) (E, error) {
	repo.Lock()
	defer repo.Unlock()

	oldEntity, found := repo.Data[id]
	if !found {
		return *new(E), ErrNotFound
	}

	entity, err := change(oldEntity)
	if err != nil {
		return *new(E), err
	}

	if repo.getID(entity) != id {
		return *new(E), fmt.Errorf("changing the ID is not allowed: %w", ErrSaveFailed)
	}

	repo.Data[id] = entity

	if err := repo.persist(); err != nil {
		repo.Data[id] = oldEntity
		return *new(E), err
	}

	return entity, nil
}

func (repo *MemoryRepository[E, ID]) FindByID(_ context.Context, id ID) (E, error) { //nolint:ireturn // valid use of generics
	repo.Lock()
	defer repo.Unlock()

	if e, ok := repo.Data[id]; ok {
		return e, nil
	}

	return *new(E), ErrNotFound
}

func (repo *MemoryRepository[E, ID]) FindAll(ctx context.Context) ([]E, error) {
	return repo.FindBy(ctx, func(E) bool { return true })
}

// FindBy returns all entities match returns true for. It is never nil.
func (repo *MemoryRepository[E, ID]) FindBy(_ context.Context, match func(E) bool) ([]E, error) {
	repo.Lock()
	defer repo.Unlock()

	result := []E{}

	for _, id := range repo.order {
		if e := repo.Data[id]; match(e) {
			result = append(result, e)
		}
	}

	return result, nil
}

func (repo *MemoryRepository[E, ID]) Count(_ context.Context) (int, error) {
	repo.Lock()
	defer repo.Unlock()

	return len(repo.Data), nil
}

// DeleteByID returns ErrNotFound, if no entity with the id exists.
func (repo *MemoryRepository[E, ID]) DeleteByID(_ context.Context, id ID) error {
	repo.Lock()
	defer repo.Unlock()

	oldEntity, found := repo.Data[id]
	if !found {
		return ErrNotFound
	}

	oldOrder := slices.Clone(repo.order)

	delete(repo.Data, id)
	repo.order = slices.DeleteFunc(repo.order, func(o ID) bool { return o == id })

	if err := repo.persist(); err != nil {
		repo.Data[id] = oldEntity
		repo.order = oldOrder

		return fmt.Errorf("could not delete: %w", err)
	}

	return nil
}

// DeleteAll removes all entities. Integer IDs continue to count up from where they were.
func (repo *MemoryRepository[E, ID]) DeleteAll(_ context.Context) error {
	repo.Lock()
	defer repo.Unlock()

	oldData := repo.Data
	oldOrder := repo.order

	repo.Data = make(map[ID]E)
	repo.order = []ID{}

	if err := repo.persist(); err != nil {
		repo.Data = oldData
		repo.order = oldOrder

		return fmt.Errorf("could not delete: %w", err)
	}

	return nil
}

func (repo *MemoryRepository[E, ID]) Clear(ctx context.Context) error {
	return repo.DeleteAll(ctx)
}

// All iterates over a snapshot of the entities, taken when the iteration starts.
func (repo *MemoryRepository[E, ID]) All(ctx context.Context) iter.Seq[E] {
	return func(yield func(E) bool) {
		all, _ := repo.FindAll(ctx)

		for _, e := range all {
			if !yield(e) {
				return
			}
		}
	}
}

// persist writes the collection in order. The caller MUST hold the lock.
func (repo *MemoryRepository[E, ID]) persist() error {
	list := make([]E, 0, len(repo.order))
	for _, id := range repo.order {
		list = append(list, repo.Data[id])
	}

	if err := repo.store.Store(repo.filename, list); err != nil {
		return fmt.Errorf("could not save: %w", err)
	}

	return nil
}

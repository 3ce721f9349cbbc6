package repository_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/todo/repository"
)

func TestNewMemoryRepository(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()
		assert.NotNil(t, repo)
	})

	t.Run("load from store", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository(repository.WithStore(testStoreSuccessEntity(t)))
		assert.NotNil(t, repo)
	})

	t.Run("load from store fails", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			newEntityRepository(repository.WithStore(testStoreLoadFails()))
		})
	})

	t.Run("load keeps stored order", func(t *testing.T) {
		t.Parallel()

		e0, e1, e2 := testEntity(), testEntity(), testEntity()
		store := testStore{
			load: func(_ string, data any) error {
				*(data.(*[]Entity)) = []Entity{e2, e0, e1}
				return nil
			},
			store: func(_ string, _ any) error { return nil },
		}

		repo := newEntityRepository(repository.WithStore(store))

		all, err := repo.FindAll(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []Entity{e2, e0, e1}, all)
	})
}

func TestNewMemoryRepository_IntPK(t *testing.T) {
	t.Parallel()

	type (
		entityInt  int
		entityUint uint
		entity     struct {
			IntID  entityInt
			UintID entityUint
			Name   string
		}
	)

	t.Run("int id field", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewMemoryRepository[entity, entityInt](repository.WithIDField("IntID"))

		err := repo.Create(ctx, entity{IntID: 1337, Name: gofakeit.Name()})
		assert.NoError(t, err)

		e, err := repo.FindByID(ctx, 1337)
		assert.NoError(t, err)
		assert.Equal(t, entityInt(1337), e.IntID)
	})

	t.Run("uint id field", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewMemoryRepository[entity, entityUint](repository.WithIDField("UintID"))

		err := repo.Create(ctx, entity{UintID: 1337, Name: gofakeit.Name()})
		assert.NoError(t, err)

		err = repo.Create(ctx, entity{Name: gofakeit.Name()})
		assert.ErrorIs(t, err, repository.ErrSaveFailed, "zero id")
	})
}

func TestEntityWithoutID(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepository[EntityWithoutID, EntityID]()

	assert.Panics(t, func() {
		_ = repo.Create(ctx, EntityWithoutID{})
	})
}

func TestWithIDField(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepository[EntityWithoutID, string](
		repository.WithIDField("Name"),
	)

	err := repo.Create(ctx, EntityWithoutID{Name: gofakeit.Name()})
	assert.NoError(t, err)
}

func TestMemoryRepository_Create(t *testing.T) {
	t.Parallel()

	t.Run("create", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository(repository.WithStore(testStoreSuccessEntity(t)))
		err := repo.Create(ctx, defaultEntity)
		assert.NoError(t, err)

		got, err := repo.FindByID(ctx, defaultEntity.ID)
		assert.NoError(t, err)
		assert.Equal(t, defaultEntity, got)
	})

	t.Run("create same again", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()

		err := repo.Create(ctx, defaultEntity)
		assert.NoError(t, err)

		err = repo.Create(ctx, defaultEntity)
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()

		err := repo.Create(ctx, Entity{})
		assert.ErrorIs(t, err, repository.ErrSaveFailed)
	})

	t.Run("store fails", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository(repository.WithStore(testStoreStoreFails()))

		err := repo.Create(ctx, defaultEntity)
		assert.ErrorIs(t, err, errStoreFailed)

		c, _ := repo.Count(ctx)
		assert.Equal(t, 0, c, "roll back")

		all, _ := repo.FindAll(ctx)
		assert.Empty(t, all)
	})
}

func TestMemoryRepository_Modify(t *testing.T) {
	t.Parallel()

	t.Run("modify", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()
		entity := testEntity()
		_ = repo.Create(ctx, entity)

		name := gofakeit.Name()
		e, err := repo.Modify(ctx, entity.ID, func(e Entity) (Entity, error) {
			e.Name = name
			return e, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, name, e.Name)

		e, _ = repo.FindByID(ctx, entity.ID)
		assert.Equal(t, name, e.Name)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()

		e, err := repo.Modify(ctx, defaultEntity.ID, func(e Entity) (Entity, error) {
			t.Fatal("change must not be called")
			return e, nil
		})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Empty(t, e)
	})

	t.Run("change fails", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()
		entity := testEntity()
		_ = repo.Create(ctx, entity)

		errChange := errors.New("some error")
		_, err := repo.Modify(ctx, entity.ID, func(e Entity) (Entity, error) {
			e.Name = ""
			return e, errChange
		})
		assert.ErrorIs(t, err, errChange)

		e, _ := repo.FindByID(ctx, entity.ID)
		assert.Equal(t, entity, e)
	})

	t.Run("id must not change", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()
		entity := testEntity()
		_ = repo.Create(ctx, entity)

		_, err := repo.Modify(ctx, entity.ID, func(e Entity) (Entity, error) {
			e.ID = testEntity().ID
			return e, nil
		})
		assert.ErrorIs(t, err, repository.ErrSaveFailed)
	})

	t.Run("store fails", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository(repository.WithStore(testStoreStoreFails()))
		entity := testEntity()
		repo.Data[entity.ID] = entity

		_, err := repo.Modify(ctx, entity.ID, func(e Entity) (Entity, error) {
			e.Name = gofakeit.Name()
			return e, nil
		})
		assert.ErrorIs(t, err, errStoreFailed)

		e, _ := repo.FindByID(ctx, entity.ID)
		assert.Equal(t, entity, e, "roll back")
	})

	t.Run("concurrent modifications are not lost", func(t *testing.T) {
		t.Parallel()

		type counter struct {
			ID string
			N  int
		}

		repo := repository.NewMemoryRepository[counter, string]()
		_ = repo.Create(ctx, counter{ID: "c"})

		const routines = 50

		wg := sync.WaitGroup{}
		wg.Add(routines)

		for range routines {
			go func() {
				defer wg.Done()

				_, _ = repo.Modify(ctx, "c", func(c counter) (counter, error) {
					c.N++
					return c, nil
				})
			}()
		}

		wg.Wait()

		c, _ := repo.FindByID(ctx, "c")
		assert.Equal(t, routines, c.N)
	})
}

func TestMemoryRepository_FindByID(t *testing.T) {
	t.Parallel()

	repo := newEntityRepository()

	e, err := repo.FindByID(ctx, testEntity().ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, e)
}

func TestMemoryRepository_FindAll(t *testing.T) {
	t.Parallel()

	repo := newEntityRepository()

	all, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all, "new repository should be empty")

	entities := []Entity{testEntity(), testEntity(), testEntity(), testEntity()}
	for _, e := range entities {
		_ = repo.Create(ctx, e)
	}

	all, err = repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Equal(t, entities, all, "keep insertion order")
}

func TestMemoryRepository_FindBy(t *testing.T) {
	t.Parallel()

	repo := newEntityRepository()
	e0 := Entity{ID: "0", Name: "a"}
	e1 := Entity{ID: "1", Name: "b"}
	e2 := Entity{ID: "2", Name: "a"}

	_ = repo.Create(ctx, e0)
	_ = repo.Create(ctx, e1)
	_ = repo.Create(ctx, e2)

	found, err := repo.FindBy(ctx, func(e Entity) bool { return e.Name == "a" })
	assert.NoError(t, err)
	assert.Equal(t, []Entity{e0, e2}, found)

	found, err = repo.FindBy(ctx, func(Entity) bool { return false })
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestMemoryRepository_DeleteByID(t *testing.T) {
	t.Parallel()

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository(repository.WithStore(testStoreSuccessEntity(t)))
		e0, e1, e2 := testEntity(), testEntity(), testEntity()
		_ = repo.Create(ctx, e0)
		_ = repo.Create(ctx, e1)
		_ = repo.Create(ctx, e2)

		err := repo.DeleteByID(ctx, e1.ID)
		assert.NoError(t, err)

		e, err := repo.FindByID(ctx, e1.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Empty(t, e)

		all, _ := repo.FindAll(ctx)
		assert.Equal(t, []Entity{e0, e2}, all)
	})

	t.Run("multiple delete", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()
		_ = repo.Create(ctx, defaultEntity)

		err := repo.DeleteByID(ctx, defaultEntity.ID)
		assert.NoError(t, err)

		err = repo.DeleteByID(ctx, defaultEntity.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("store fails", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository(repository.WithStore(testStoreStoreFails()))
		repo.Data[defaultEntity.ID] = defaultEntity

		err := repo.DeleteByID(ctx, defaultEntity.ID)
		assert.ErrorIs(t, err, errStoreFailed)

		_, err = repo.FindByID(ctx, defaultEntity.ID)
		assert.NoError(t, err, "roll back")
	})
}

func TestMemoryRepository_Clear(t *testing.T) {
	t.Parallel()

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository()
		_ = repo.Create(ctx, testEntity())
		_ = repo.Create(ctx, testEntity())

		err := repo.Clear(ctx)
		assert.NoError(t, err)

		c, _ := repo.Count(ctx)
		assert.Equal(t, 0, c)

		all, _ := repo.FindAll(ctx)
		assert.Empty(t, all)

		err = repo.Create(ctx, defaultEntity)
		assert.NoError(t, err, "can be used after clear")
	})

	t.Run("store fails", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepository(repository.WithStore(testStoreStoreFails()))
		repo.Data[defaultEntity.ID] = defaultEntity

		err := repo.DeleteAll(ctx)
		assert.ErrorIs(t, err, errStoreFailed)

		c, _ := repo.Count(ctx)
		assert.Equal(t, 1, c, "roll back")
	})
}

func TestMemoryRepository_All(t *testing.T) {
	t.Parallel()

	repo := newEntityRepository()
	entities := []Entity{testEntity(), testEntity(), testEntity()}

	for _, e := range entities {
		_ = repo.Create(ctx, e)
	}

	var got []Entity
	for e := range repo.All(ctx) {
		got = append(got, e)

		// writing while iterating does not dead lock
		_, _ = repo.Modify(ctx, e.ID, func(e Entity) (Entity, error) { return e, nil })
	}

	assert.Equal(t, entities, got)

	got = nil
	for e := range repo.All(ctx) {
		got = append(got, e)
		break
	}

	assert.Len(t, got, 1, "stop early")
}

func TestMemoryRepository_Concurrently(t *testing.T) {
	t.Parallel()

	repo := newEntityRepository()

	const routines = 100

	wg := sync.WaitGroup{}
	wg.Add(routines)

	for range routines {
		go func() {
			defer wg.Done()

			e := testEntity()
			_ = repo.Create(ctx, e)
			_, _ = repo.FindAll(ctx)
			_ = repo.DeleteByID(ctx, e.ID)
		}()
	}

	wg.Wait()

	c, _ := repo.Count(ctx)
	assert.Equal(t, 0, c)
}

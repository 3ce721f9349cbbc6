package repository

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/go-arrower/todo/contexts/todo/internal/domain"
)

// TestSuite is the contract every domain.Repository has to fulfil.
// newRepo has to return a new and empty repository on each call, with its ID counter at the start.
//
//nolint:maintidx // one suite for all implementations
func TestSuite(t *testing.T, newRepo func(t *testing.T) domain.Repository) {
	t.Helper()

	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		n := newTestTodo()

		todo, err := repo.Create(ctx, n)
		assert.NoError(t, err)
		assert.Equal(t, domain.ID("todo-1"), todo.ID)
		assert.Equal(t, n.Title, todo.Title)
		assert.Equal(t, n.Description, todo.Description)
		assert.Equal(t, n.Priority, todo.Priority)
		assert.Equal(t, n.Tags, todo.Tags)
		assert.False(t, todo.Completed)
		assert.False(t, todo.CreatedAt.IsZero())
		assert.True(t, todo.CreatedAt.Equal(todo.UpdatedAt))

		second, err := repo.Create(ctx, n)
		assert.NoError(t, err)
		assert.Equal(t, domain.ID("todo-2"), second.ID)
	})

	t.Run("find by id", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		created, _ := repo.Create(ctx, newTestTodo())

		todo, err := repo.FindByID(ctx, created.ID)
		assert.NoError(t, err)
		assertSameTodo(t, created, todo)

		todo, err = repo.FindByID(ctx, "todo-1337")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, todo)
	})

	t.Run("keep nil and empty tags apart", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		n := newTestTodo()
		n.Tags = nil
		untagged, _ := repo.Create(ctx, n)

		n.Tags = []string{}
		empty, _ := repo.Create(ctx, n)

		todo, err := repo.FindByID(ctx, untagged.ID)
		assert.NoError(t, err)
		assert.Nil(t, todo.Tags)

		todo, err = repo.FindByID(ctx, empty.ID)
		assert.NoError(t, err)
		assert.NotNil(t, todo.Tags)
		assert.Empty(t, todo.Tags)
	})

	t.Run("find all in insertion order", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		all, err := repo.FindAll(ctx, domain.Filter{})
		assert.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)

		var ids []domain.ID
		for range 5 {
			todo, _ := repo.Create(ctx, newTestTodo())
			ids = append(ids, todo.ID)
		}

		// an update does not change the order
		_, _ = repo.Update(ctx, ids[0], domain.Patch{Title: domain.Ref("updated")})

		all, err = repo.FindAll(ctx, domain.Filter{})
		assert.NoError(t, err)
		assert.Equal(t, ids, idsOf(all))
	})

	t.Run("filter", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		work := domain.NewTodo{Title: "work", Priority: domain.PriorityHigh, Tags: []string{"work"}}
		home := domain.NewTodo{Title: "home", Priority: domain.PriorityLow, Tags: []string{"home", "garden"}, Completed: true}
		none := domain.NewTodo{Title: "none", Priority: domain.PriorityHigh}

		t1, _ := repo.Create(ctx, work)
		t2, _ := repo.Create(ctx, home)
		t3, _ := repo.Create(ctx, none)
		t4, _ := repo.Create(ctx, work)

		tests := map[string]struct {
			filter   domain.Filter
			expected []domain.ID
		}{
			"completed":     {domain.Filter{Completed: domain.Ref(true)}, []domain.ID{t2.ID}},
			"not completed": {domain.Filter{Completed: domain.Ref(false)}, []domain.ID{t1.ID, t3.ID, t4.ID}},
			"priority":      {domain.Filter{Priority: domain.Ref(domain.PriorityHigh)}, []domain.ID{t1.ID, t3.ID, t4.ID}},
			"no match":      {domain.Filter{Priority: domain.Ref(domain.PriorityUrgent)}, []domain.ID{}},
			"any tag":       {domain.Filter{Tags: []string{"garden", "work"}}, []domain.ID{t1.ID, t2.ID, t4.ID}},
			"unknown tag":   {domain.Filter{Tags: []string{"unknown"}}, []domain.ID{}},
			"combined": {
				domain.Filter{Completed: domain.Ref(false), Priority: domain.Ref(domain.PriorityHigh), Tags: []string{"work"}},
				[]domain.ID{t1.ID, t4.ID},
			},
		}

		for name, tt := range tests {
			all, err := repo.FindAll(ctx, tt.filter)
			assert.NoError(t, err, name)
			assert.Equal(t, tt.expected, idsOf(all), name)
		}
	})

	t.Run("returned todos are copies", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		created, _ := repo.Create(ctx, newTestTodo())

		all, _ := repo.FindAll(ctx, domain.Filter{})
		all[0].Tags[0] = "changed"
		all[0].Title = "changed"

		found, _ := repo.FindByID(ctx, created.ID)
		found.Tags[0] = "changed"

		todo, _ := repo.FindByID(ctx, created.ID)
		assert.Equal(t, created.Title, todo.Title)
		assert.Equal(t, created.Tags, todo.Tags)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		created, _ := repo.Create(ctx, newTestTodo())

		title := gofakeit.Sentence(3)
		updated, err := repo.Update(ctx, created.ID, domain.Patch{
			Title:     domain.Ref(title),
			Completed: domain.Ref(true),
			Tags:      &[]string{"new"},
		})
		assert.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, created.Description, updated.Description)
		assert.Equal(t, created.Priority, updated.Priority)
		assert.True(t, updated.Completed)
		assert.Equal(t, []string{"new"}, updated.Tags)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		todo, _ := repo.FindByID(ctx, created.ID)
		assertSameTodo(t, updated, todo)

		again, err := repo.Update(ctx, created.ID, domain.Patch{})
		assert.NoError(t, err)
		assert.False(t, again.UpdatedAt.Before(updated.UpdatedAt))
		assert.Equal(t, title, again.Title)
	})

	t.Run("update removes tags", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		created, _ := repo.Create(ctx, newTestTodo())

		var noTags []string
		_, err := repo.Update(ctx, created.ID, domain.Patch{Tags: &noTags})
		assert.NoError(t, err)

		todo, _ := repo.FindByID(ctx, created.ID)
		assert.Nil(t, todo.Tags)

		all, _ := repo.FindAll(ctx, domain.Filter{Tags: created.Tags})
		assert.Empty(t, all)
	})

	t.Run("update unknown todo", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		created, _ := repo.Create(ctx, newTestTodo())

		todo, err := repo.Update(ctx, "todo-1337", domain.Patch{Title: domain.Ref("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, todo)

		all, _ := repo.FindAll(ctx, domain.Filter{})
		assert.Len(t, all, 1)
		assertSameTodo(t, created, all[0])
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		t1, _ := repo.Create(ctx, newTestTodo())
		t2, _ := repo.Create(ctx, newTestTodo())
		t3, _ := repo.Create(ctx, newTestTodo())

		err := repo.Delete(ctx, t2.ID)
		assert.NoError(t, err)

		_, err = repo.FindByID(ctx, t2.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = repo.Delete(ctx, t2.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		all, _ := repo.FindAll(ctx, domain.Filter{})
		assert.Equal(t, []domain.ID{t1.ID, t3.ID}, idsOf(all))

		t4, _ := repo.Create(ctx, newTestTodo())
		assert.Equal(t, domain.ID("todo-4"), t4.ID, "ids are not reused")
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		_, _ = repo.Create(ctx, newTestTodo())
		_, _ = repo.Create(ctx, newTestTodo())

		err := repo.Clear(ctx)
		assert.NoError(t, err)

		all, err := repo.FindAll(ctx, domain.Filter{})
		assert.NoError(t, err)
		assert.Empty(t, all)

		todo, err := repo.Create(ctx, newTestTodo())
		assert.NoError(t, err)
		assert.Equal(t, domain.ID("todo-3"), todo.ID, "counter is not reset")

		err = repo.Clear(ctx)
		assert.NoError(t, err, "clear an empty repository")
	})

	t.Run("concurrent creates get unique ids", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		const routines = 20

		ids := make(chan domain.ID, routines)
		g := errgroup.Group{}

		for range routines {
			g.Go(func() error {
				todo, err := repo.Create(ctx, newTestTodo())
				ids <- todo.ID

				return err
			})
		}

		assert.NoError(t, g.Wait())
		close(ids)

		unique := map[domain.ID]struct{}{}
		for id := range ids {
			unique[id] = struct{}{}
		}

		assert.Len(t, unique, routines)

		all, _ := repo.FindAll(ctx, domain.Filter{})
		assert.Len(t, all, routines)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		created, _ := repo.Create(ctx, newTestTodo())

		const routines = 10

		g := errgroup.Group{}

		for i := range routines {
			g.Go(func() error {
				// every routine sets a different field, so each change has to survive
				patch := domain.Patch{Tags: &[]string{"t"}}
				if i%2 == 0 {
					patch = domain.Patch{Completed: domain.Ref(true)}
				}

				_, err := repo.Update(ctx, created.ID, patch)

				return err
			})
		}

		assert.NoError(t, g.Wait())

		todo, _ := repo.FindByID(ctx, created.ID)
		assert.True(t, todo.Completed)
		assert.Equal(t, []string{"t"}, todo.Tags)
	})
}

func newTestTodo() domain.NewTodo {
	return domain.NewTodo{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Sentence(10),
		Priority:    domain.Priorities()[gofakeit.Number(0, len(domain.Priorities())-1)],
		Tags:        []string{gofakeit.Noun(), gofakeit.Verb()},
	}
}

func idsOf(todos []domain.Todo) []domain.ID {
	ids := []domain.ID{}
	for _, t := range todos {
		ids = append(ids, t.ID)
	}

	return ids
}

// assertSameTodo compares the timestamps by instant, as a backend might change the location.
func assertSameTodo(t *testing.T, expected, actual domain.Todo) {
	t.Helper()

	assert.True(t, expected.CreatedAt.Equal(actual.CreatedAt), "createdAt")
	assert.True(t, expected.UpdatedAt.Equal(actual.UpdatedAt), "updatedAt")

	expected.CreatedAt = actual.CreatedAt
	expected.UpdatedAt = actual.UpdatedAt
	assert.Equal(t, expected, actual)
}

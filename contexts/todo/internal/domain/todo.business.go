package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const idPrefix = "todo-"

// ID identifies a Todo. It is assigned by a Repository and never changes.
type ID string

// NewID returns the ID for the n-th Todo created by a Repository.
func NewID(n int64) ID {
	return ID(idPrefix + strconv.FormatInt(n, 10))
}

// Sequence returns the number the ID was generated from.
// It returns false if the ID was not created by NewID.
func (id ID) Sequence() (int64, bool) {
	num, found := strings.CutPrefix(string(id), idPrefix)
	if !found {
		return 0, false
	}

	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// Todo is the only entity of this context.
//
// Tags being nil means the Todo has no tags at all, which is different from an empty list of tags.
type Todo struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tags        []string  `json:"tags"`
}

func (t Todo) String() string {
	state := " "
	if t.Completed {
		state = "x"
	}

	return fmt.Sprintf("[%s] %s %s (%s)", state, t.ID, t.Title, t.Priority)
}

// Clone returns a deep copy, so the caller can change the tags without affecting t.
func (t Todo) Clone() Todo {
	t.Tags = cloneTags(t.Tags)

	return t
}

// HasAnyTag reports whether t carries at least one of tags.
// A Todo without tags matches nothing.
func (t Todo) HasAnyTag(tags []string) bool {
	for _, tag := range t.Tags {
		if slices.Contains(tags, tag) {
			return true
		}
	}

	return false
}

// Apply returns a copy of t with all fields set in patch overwritten.
// UpdatedAt is set to now, but never moves backwards.
// ID and CreatedAt are not touched.
func (t Todo) Apply(patch Patch, now time.Time) Todo {
	t = t.Clone()

	if patch.Title != nil {
		t.Title = *patch.Title
	}

	if patch.Description != nil {
		t.Description = *patch.Description
	}

	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}

	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}

	if patch.Tags != nil {
		t.Tags = cloneTags(*patch.Tags)
	}

	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}

	return t
}

// NewTodo holds everything required to create a Todo,
// except the values a Repository assigns: ID and timestamps.
type NewTodo struct {
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	Tags        []string
}

// Build creates the Todo with the given id, created at now.
func (n NewTodo) Build(id ID, now time.Time) Todo {
	return Todo{
		ID:          id,
		Title:       n.Title,
		Description: n.Description,
		Completed:   n.Completed,
		Priority:    n.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        cloneTags(n.Tags),
	}
}

// Patch is a partial Todo. Only the non nil fields are changed by an update.
// To remove all tags, set Tags to a pointer of a nil slice.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	Tags        *[]string
}

// Filter selects Todos. All set fields have to match.
// The zero value matches every Todo.
type Filter struct {
	Completed *bool
	Priority  *Priority
	// Tags matches, if a Todo has at least one of them.
	Tags []string
}

// Matches reports whether t satisfies all conditions of f.
func (f Filter) Matches(t Todo) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}

	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}

	if f.Tags != nil && !t.HasAnyTag(f.Tags) {
		return false
	}

	return true
}

// Ref returns a pointer to v. Use it to build a Patch or Filter.
func Ref[T any](v T) *T {
	return &v
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}

	c := make([]string, len(tags))
	copy(c, tags)

	return c
}

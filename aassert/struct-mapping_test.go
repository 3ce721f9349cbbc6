package aassert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/todo/aassert"
)

func TestNumFields(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		object   any
		expected int
		pass     bool
	}{
		"nil":                    {nil, 0, false},
		"string":                 {"", 0, false},
		"slice":                  {[]item{}, 1, false},
		"ptr to int":             {new(int), 0, false},
		"flat struct":            {item{}, 1, true},
		"ptr to struct":          {&item{}, 1, true},
		"miscount":               {item{}, 1337, false},
		"struct without exports": {time.Time{}, 0, true},
		"nested":                 {list{}, 9, true},
		"embedded":               {detailedItem{}, 5, true},
		"recursive":              {node{}, 2, true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// uses a new T, so the expected failures do not fail this test
			pass := aassert.NumFields(new(testing.T), tt.expected, tt.object)
			assert.Equal(t, tt.pass, pass)
		})
	}
}

type (
	item struct {
		Title string
		done  bool //nolint:unused // unexported fields are not counted
	}
	list struct {
		Name    string          // 1
		Items   []item          // 2
		ByTag   map[string]item // 2
		Pinned  *item           // 2
		Created time.Time       // 1
		Counts  map[string]int  // 1
	}
	detailedItem struct {
		item         // unexported embedding is not counted
		Meta         // 1 + 2
		Owner string // 1
		Due   *int   // 1
	}
	Meta struct {
		Tags    []string
		Version int
	}
	node struct {
		Value string
		Next  *node
	}
)

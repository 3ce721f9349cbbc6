package aassert

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// NumFields asserts that the struct object has the expected number of exported fields.
// Exported fields of nested and embedded structs count as well,
// also if they are behind a pointer, slice, array or map.
//
// Use it on structs that are mapped from one layer to another,
// so a new field fails the test of the mapping instead of getting lost silently.
func NumFields(t *testing.T, expected int, object any, msgAndArgs ...any) bool {
	t.Helper()

	typ := reflect.TypeOf(object)
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ == nil || typ.Kind() != reflect.Struct {
		return assert.Fail(t, fmt.Sprintf("invalid argument %T, it has to be a struct", object), msgAndArgs...)
	}

	if n := countFields(typ, map[reflect.Type]bool{}); n != expected {
		t.Logf("The number of exported fields of %s changed. "+
			"Check all functions mapping it and the test data, then correct the expected count of %s.", typ, t.Name())

		return assert.Fail(t, fmt.Sprintf("struct changed, it has: %d fields, expected: %d", n, expected), msgAndArgs...)
	}

	return true
}

func countFields(typ reflect.Type, seen map[reflect.Type]bool) int {
	switch typ.Kind() { //nolint:exhaustive // all other kinds have no fields
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
		return countFields(typ.Elem(), seen)
	case reflect.Struct:
		if seen[typ] {
			return 0 // recursive type
		}

		seen[typ] = true
		defer delete(seen, typ)

		var n int

		for field := range fields(typ) {
			n += 1 + countFields(field.Type, seen)
		}

		return n
	default:
		return 0
	}
}

func fields(typ reflect.Type) func(yield func(reflect.StructField) bool) {
	return func(yield func(reflect.StructField) bool) {
		for i := range typ.NumField() {
			if f := typ.Field(i); f.IsExported() && !yield(f) {
				return
			}
		}
	}
}

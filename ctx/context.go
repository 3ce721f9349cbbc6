// Package ctx holds the key type for values the todo service puts into a context.Context.
package ctx

// CTXKey is the type used by all keys put in a context,
// as recommended by the package context for the use of WithValue.
type CTXKey string

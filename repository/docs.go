// Package repository offers a generic, in memory Repository for any entity with a comparable ID.
//
// A MemoryRepository offers a set of methods out of the box. That might not be enough, though.
// It is possible to overwrite an existing method to change the behaviour as well as extend the Repository
// with new methods by embedding it. There are examples for both.
//
// The collection keeps the order in which entities were added, so listings are stable.
// Optionally, a Store persists the whole collection on every write, e.g. the JSONStore for local demoing.
// This is NOT intended for heavy production use: for that implement a repository on a real datastore.
//
// A PostgresRepository offers the same reads and deletes on a table, mapped with scany.
// Writes are left to the embedding repository, as they usually need its own SQL.
package repository

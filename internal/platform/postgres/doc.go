// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in internal/store. It handles query execution, error
// code mapping, and data mapping between domain entities and rows.
package postgres

// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying storage mechanism from the
// application's core logic, keeping business rules independent of the
// specific database technology.
package store

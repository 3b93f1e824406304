// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in the store and task packages.
package postgres

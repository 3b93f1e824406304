package service

import (
	"database/sql"

	"github.com/rootcalc/rootcalc-api/internal/store"
)

// ComputationRepositoryAdapter adapts a store.ComputationStore to the
// service-layer ComputationRepository interface, carrying the database
// handle the service needs for transaction management.
type ComputationRepositoryAdapter struct {
	store.ComputationStore
	db *sql.DB
}

// NewComputationRepositoryAdapter creates a new adapter that implements
// ComputationRepository by delegating to a store.ComputationStore.
func NewComputationRepositoryAdapter(
	computationStore store.ComputationStore,
	db *sql.DB,
) *ComputationRepositoryAdapter {
	return &ComputationRepositoryAdapter{
		ComputationStore: computationStore,
		db:               db,
	}
}

// WithTx returns a new repository instance bound to the given transaction.
func (a *ComputationRepositoryAdapter) WithTx(tx *sql.Tx) ComputationRepository {
	return &ComputationRepositoryAdapter{
		ComputationStore: a.ComputationStore.WithTx(tx),
		db:               a.db,
	}
}

// DB returns the underlying database connection.
func (a *ComputationRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// Ensure ComputationRepositoryAdapter implements ComputationRepository
var _ ComputationRepository = (*ComputationRepositoryAdapter)(nil)

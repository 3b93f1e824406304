package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rootcalc/rootcalc-api/internal/domain"
	"github.com/rootcalc/rootcalc-api/internal/platform/logger"
	"github.com/rootcalc/rootcalc-api/internal/store"
)

// PostgreSQL error codes
const pgUniqueViolationCode = "23505"

// PostgresComputationStore implements the store.ComputationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresComputationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresComputationStore creates a new PostgreSQL implementation of the
// ComputationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresComputationStore(db store.DBTX, logger *slog.Logger) *PostgresComputationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresComputationStore{
		db:     db,
		logger: logger.With(slog.String("component", "computation_store")),
	}
}

// Ensure PostgresComputationStore implements store.ComputationStore interface
var _ store.ComputationStore = (*PostgresComputationStore)(nil)

// Create implements store.ComputationStore.Create
// It saves a new computation to the database.
// Returns store.ErrInvalidEntity if a computation with the same ID already exists.
func (s *PostgresComputationStore) Create(ctx context.Context, computation *domain.Computation) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO computations (id, epsilon, guess, root, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		computation.ID,
		computation.Epsilon,
		computation.Guess,
		nullFloat(computation.Root),
		computation.Status,
		nullString(computation.ErrorMessage),
		computation.CreatedAt,
		computation.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Warn("duplicate computation ID during create",
				slog.String("error", err.Error()),
				slog.String("computation_id", computation.ID.String()))
			return fmt.Errorf("%w: computation with ID %s already exists",
				store.ErrInvalidEntity, computation.ID)
		}

		log.Error("failed to create computation",
			slog.String("error", err.Error()),
			slog.String("computation_id", computation.ID.String()))
		return err
	}

	log.Info("computation created successfully",
		slog.String("computation_id", computation.ID.String()),
		slog.String("status", string(computation.Status)))
	return nil
}

// GetByID implements store.ComputationStore.GetByID
// It retrieves a computation by its unique ID.
// Returns store.ErrComputationNotFound if the computation does not exist.
func (s *PostgresComputationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Computation, error) {
	log := logger.FromContext(ctx)

	log.Debug("retrieving computation by ID", slog.String("computation_id", id.String()))

	query := `
		SELECT id, epsilon, guess, root, status, error_message, created_at, updated_at
		FROM computations
		WHERE id = $1
	`

	var computation domain.Computation
	var status string
	var root sql.NullFloat64
	var errorMessage sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&computation.ID,
		&computation.Epsilon,
		&computation.Guess,
		&root,
		&status,
		&errorMessage,
		&computation.CreatedAt,
		&computation.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("computation not found", slog.String("computation_id", id.String()))
			return nil, store.ErrComputationNotFound
		}
		log.Error("failed to get computation by ID",
			slog.String("error", err.Error()),
			slog.String("computation_id", id.String()))
		return nil, err
	}

	computation.Status = domain.ComputationStatus(status)
	if root.Valid {
		value := root.Float64
		computation.Root = &value
	}
	computation.ErrorMessage = errorMessage.String

	log.Debug("computation retrieved successfully",
		slog.String("computation_id", id.String()),
		slog.String("status", string(computation.Status)))
	return &computation, nil
}

// Update implements store.ComputationStore.Update
// It saves changes to an existing computation, including its status, root,
// and error message.
// Returns store.ErrComputationNotFound if the computation does not exist.
func (s *PostgresComputationStore) Update(ctx context.Context, computation *domain.Computation) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE computations
		SET root = $1, status = $2, error_message = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		nullFloat(computation.Root),
		computation.Status,
		nullString(computation.ErrorMessage),
		computation.UpdatedAt,
		computation.ID,
	)

	if err != nil {
		log.Error("failed to update computation",
			slog.String("error", err.Error()),
			slog.String("computation_id", computation.ID.String()),
			slog.String("status", string(computation.Status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("computation_id", computation.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("computation not found for update",
			slog.String("computation_id", computation.ID.String()))
		return store.ErrComputationNotFound
	}

	log.Info("computation updated successfully",
		slog.String("computation_id", computation.ID.String()),
		slog.String("status", string(computation.Status)))
	return nil
}

// UpdateStatus implements store.ComputationStore.UpdateStatus
// It updates the bookkeeping status of an existing computation.
// Returns store.ErrComputationNotFound if the computation does not exist.
// Returns domain.ErrInvalidComputationStatus if the status is not recognized.
func (s *PostgresComputationStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ComputationStatus,
) error {
	log := logger.FromContext(ctx)

	log.Debug("updating computation status",
		slog.String("computation_id", id.String()),
		slog.String("status", string(status)))

	switch status {
	case domain.ComputationStatusPending,
		domain.ComputationStatusProcessing,
		domain.ComputationStatusCompleted,
		domain.ComputationStatusFailed:
	default:
		log.Warn("rejected unknown computation status",
			slog.String("computation_id", id.String()),
			slog.String("status", string(status)))
		return domain.ErrInvalidComputationStatus
	}

	updatedAt := time.Now().UTC()

	query := `
		UPDATE computations
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		log.Error("failed to update computation status",
			slog.String("error", err.Error()),
			slog.String("computation_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("computation_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("computation not found for status update",
			slog.String("computation_id", id.String()))
		return store.ErrComputationNotFound
	}

	log.Info("computation status updated successfully",
		slog.String("computation_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.ComputationStore.WithTx
// It returns a new ComputationStore bound to the provided transaction.
func (s *PostgresComputationStore) WithTx(tx *sql.Tx) store.ComputationStore {
	return &PostgresComputationStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullFloat converts an optional float into its SQL representation.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// nullString converts an empty string to SQL NULL.
func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

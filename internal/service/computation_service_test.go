package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rootcalc/rootcalc-api/internal/domain"
	"github.com/rootcalc/rootcalc-api/internal/events"
	"github.com/rootcalc/rootcalc-api/internal/store"
	"github.com/rootcalc/rootcalc-api/internal/task"
)

// MockComputationRepository is a mock implementation of ComputationRepository
type MockComputationRepository struct {
	mock.Mock
}

func (m *MockComputationRepository) Create(ctx context.Context, computation *domain.Computation) error {
	args := m.Called(ctx, computation)
	return args.Error(0)
}

func (m *MockComputationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Computation, error) {
	args := m.Called(ctx, id)
	computation, _ := args.Get(0).(*domain.Computation)
	return computation, args.Error(1)
}

func (m *MockComputationRepository) Update(ctx context.Context, computation *domain.Computation) error {
	args := m.Called(ctx, computation)
	return args.Error(0)
}

func (m *MockComputationRepository) WithTx(tx *sql.Tx) ComputationRepository {
	// The mock ignores the transaction and keeps recording calls on itself.
	return m
}

func (m *MockComputationRepository) DB() *sql.DB {
	return nil
}

// MockEventEmitter is a mock implementation of events.EventEmitter
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// newTestService builds a service whose transaction runner invokes the
// callback directly, so unit tests run without a database.
func newTestService(
	t *testing.T,
	repo ComputationRepository,
	emitter events.EventEmitter,
) *computationServiceImpl {
	t.Helper()

	svc, err := NewComputationService(repo, emitter, slog.Default())
	require.NoError(t, err)

	impl, ok := svc.(*computationServiceImpl)
	require.True(t, ok)
	impl.runInTx = func(ctx context.Context, db *sql.DB, fn store.TxFn) error {
		return fn(ctx, nil)
	}
	return impl
}

func TestNewComputationService(t *testing.T) {
	t.Parallel()

	repo := new(MockComputationRepository)
	emitter := new(MockEventEmitter)

	t.Run("valid dependencies", func(t *testing.T) {
		svc, err := NewComputationService(repo, emitter, slog.Default())
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("nil repo", func(t *testing.T) {
		svc, err := NewComputationService(nil, emitter, slog.Default())
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("nil emitter", func(t *testing.T) {
		svc, err := NewComputationService(repo, nil, slog.Default())
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		svc, err := NewComputationService(repo, emitter, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestSubmitComputation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Computation")).Return(nil)
		emitter.On("EmitEvent", mock.Anything, mock.AnythingOfType("*events.TaskRequestEvent")).
			Return(nil)

		computation, err := svc.SubmitComputation(ctx, 0.001, -20)
		require.NoError(t, err)
		require.NotNil(t, computation)

		assert.Equal(t, domain.ComputationStatusPending, computation.Status)
		assert.Equal(t, 0.001, computation.Epsilon)
		assert.Equal(t, float64(-20), computation.Guess)
		assert.Nil(t, computation.Root)

		repo.AssertExpectations(t)
		emitter.AssertExpectations(t)

		// The emitted event must carry the computation ID and the
		// computation task type.
		emittedEvent := emitter.Calls[0].Arguments.Get(1).(*events.TaskRequestEvent)
		assert.Equal(t, task.TaskTypeComputation, emittedEvent.Type)

		var payload struct {
			ComputationID uuid.UUID `json:"computation_id"`
		}
		require.NoError(t, json.Unmarshal(emittedEvent.Payload, &payload))
		assert.Equal(t, computation.ID, payload.ComputationID)
	})

	t.Run("invalid inputs rejected before persistence", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		cases := []struct {
			name    string
			epsilon float64
			guess   float64
			wantErr error
		}{
			{"zero epsilon", 0, -20, domain.ErrNonPositiveEpsilon},
			{"negative epsilon", -0.5, -20, domain.ErrNonPositiveEpsilon},
			{"NaN epsilon", math.NaN(), -20, domain.ErrNonFiniteEpsilon},
			{"infinite guess", 0.001, math.Inf(1), domain.ErrNonFiniteGuess},
			{"NaN guess", 0.001, math.NaN(), domain.ErrNonFiniteGuess},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				computation, err := svc.SubmitComputation(ctx, tc.epsilon, tc.guess)
				assert.Nil(t, computation)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}

		// Nothing was saved and no task was enqueued.
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		emitter.AssertNotCalled(t, "EmitEvent", mock.Anything, mock.Anything)
	})

	t.Run("computation creation fails", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		createErr := errors.New("database error")
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Computation")).
			Return(createErr)

		computation, err := svc.SubmitComputation(ctx, 0.001, -20)
		assert.Nil(t, computation)
		assert.ErrorIs(t, err, createErr)

		emitter.AssertNotCalled(t, "EmitEvent", mock.Anything, mock.Anything)
	})

	t.Run("event emission fails", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		emitErr := errors.New("emitter error")
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Computation")).Return(nil)
		emitter.On("EmitEvent", mock.Anything, mock.AnythingOfType("*events.TaskRequestEvent")).
			Return(emitErr)

		computation, err := svc.SubmitComputation(ctx, 0.001, -20)
		assert.Nil(t, computation)
		assert.ErrorIs(t, err, emitErr)
	})
}

func TestGetComputation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		stored, err := domain.NewComputation(0.001, -20)
		require.NoError(t, err)

		repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)

		computation, err := svc.GetComputation(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, stored, computation)
	})

	t.Run("unknown ID", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		unknownID := uuid.New()
		repo.On("GetByID", mock.Anything, unknownID).
			Return(nil, store.ErrComputationNotFound)

		computation, err := svc.GetComputation(ctx, unknownID)
		assert.Nil(t, computation)
		assert.ErrorIs(t, err, ErrComputationNotFound)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		repoErr := errors.New("connection lost")
		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(nil, repoErr)

		computation, err := svc.GetComputation(ctx, id)
		assert.Nil(t, computation)
		assert.ErrorIs(t, err, repoErr)
		assert.NotErrorIs(t, err, ErrComputationNotFound)
	})
}

func TestUpdateComputationStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("pending to processing", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		stored, err := domain.NewComputation(0.001, -20)
		require.NoError(t, err)

		repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		repo.On("Update", mock.Anything, stored).Return(nil)

		err = svc.UpdateComputationStatus(ctx, stored.ID, domain.ComputationStatusProcessing)
		require.NoError(t, err)
		assert.Equal(t, domain.ComputationStatusProcessing, stored.Status)

		repo.AssertExpectations(t)
	})

	t.Run("terminal status is immutable", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		stored, err := domain.NewComputation(0.001, -20)
		require.NoError(t, err)
		require.NoError(t, stored.SetResult(0))

		repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)

		err = svc.UpdateComputationStatus(ctx, stored.ID, domain.ComputationStatusProcessing)
		assert.ErrorIs(t, err, domain.ErrTerminalStatus)

		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestRecordResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		stored, err := domain.NewComputation(0.001, -20)
		require.NoError(t, err)
		require.NoError(t, stored.UpdateStatus(domain.ComputationStatusProcessing))

		repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		repo.On("Update", mock.Anything, stored).Return(nil)

		root := math.Cbrt(-2)
		err = svc.RecordResult(ctx, stored.ID, root)
		require.NoError(t, err)

		assert.Equal(t, domain.ComputationStatusCompleted, stored.Status)
		require.NotNil(t, stored.Root)
		assert.Equal(t, root, *stored.Root)

		repo.AssertExpectations(t)
	})

	t.Run("unknown computation", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		unknownID := uuid.New()
		repo.On("GetByID", mock.Anything, unknownID).
			Return(nil, store.ErrComputationNotFound)

		err := svc.RecordResult(ctx, unknownID, 0)
		assert.ErrorIs(t, err, ErrComputationNotFound)
	})
}

func TestRecordFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		stored, err := domain.NewComputation(0.001, -20)
		require.NoError(t, err)
		require.NoError(t, stored.UpdateStatus(domain.ComputationStatusProcessing))

		repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		repo.On("Update", mock.Anything, stored).Return(nil)

		message := "newton-raphson did not converge within 200 iterations"
		err = svc.RecordFailure(ctx, stored.ID, message)
		require.NoError(t, err)

		assert.Equal(t, domain.ComputationStatusFailed, stored.Status)
		assert.Equal(t, message, stored.ErrorMessage)
		assert.Nil(t, stored.Root)

		repo.AssertExpectations(t)
	})

	t.Run("already completed", func(t *testing.T) {
		repo := new(MockComputationRepository)
		emitter := new(MockEventEmitter)
		svc := newTestService(t, repo, emitter)

		stored, err := domain.NewComputation(0.001, -20)
		require.NoError(t, err)
		require.NoError(t, stored.SetResult(1.5))

		repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)

		err = svc.RecordFailure(ctx, stored.ID, "late failure")
		assert.ErrorIs(t, err, domain.ErrTerminalStatus)

		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

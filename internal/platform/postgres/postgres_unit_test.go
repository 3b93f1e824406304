package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootcalc/rootcalc-api/internal/store"
	"github.com/rootcalc/rootcalc-api/internal/task"
)

// mockDBTX is a no-op store.DBTX for constructor tests. Query behavior is
// exercised against a real database in integration tests.
type mockDBTX struct{}

func (m *mockDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}

func (m *mockDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, nil
}

func (m *mockDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, nil
}

func (m *mockDBTX) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func TestNewPostgresComputationStore(t *testing.T) {
	tests := []struct {
		name string
		db   store.DBTX
	}{
		{name: "real_db_handle", db: &sql.DB{}},
		{name: "mock_dbtx", db: &mockDBTX{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPostgresComputationStore(tt.db, nil)
			assert.NotNil(t, s)
			assert.NotNil(t, s.db)
			assert.NotNil(t, s.logger)
		})
	}

	t.Run("nil_db_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewPostgresComputationStore(nil, nil)
		})
	})
}

func TestNewPostgresTaskStore(t *testing.T) {
	db := &sql.DB{}
	s := NewPostgresTaskStore(db)
	require.NotNil(t, s)
	assert.Equal(t, db, s.db)
}

func TestNullFloat(t *testing.T) {
	assert.Equal(t, sql.NullFloat64{}, nullFloat(nil))

	value := 1.25
	assert.Equal(t, sql.NullFloat64{Float64: 1.25, Valid: true}, nullFloat(&value))
}

func TestNullString(t *testing.T) {
	assert.Equal(t, sql.NullString{}, nullString(""))
	assert.Equal(
		t,
		sql.NullString{String: "did not converge", Valid: true},
		nullString("did not converge"),
	)
}

func TestStoredTask_Getters(t *testing.T) {
	taskID := uuid.New()
	payload := []byte(`{"computation_id":"` + uuid.New().String() + `"}`)

	st := &storedTask{
		id:       taskID,
		taskType: task.TaskTypeComputation,
		payload:  payload,
		status:   task.TaskStatusPending,
	}

	assert.Equal(t, taskID, st.ID())
	assert.Equal(t, task.TaskTypeComputation, st.Type())
	assert.Equal(t, payload, st.Payload())
	assert.Equal(t, task.TaskStatusPending, st.Status())
}

func TestStoredTask_ExecuteRequiresResolution(t *testing.T) {
	st := &storedTask{
		id:       uuid.New(),
		taskType: task.TaskTypeComputation,
		payload:  []byte("{}"),
		status:   task.TaskStatusPending,
	}

	err := st.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolved before execution")
}

package shared

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	sql  string
	args []any
}

func (r *recordingExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = sql
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestAuditLoggerRecordUsesContextActor(t *testing.T) {
	exec := &recordingExecer{}
	logger := NewAuditLogger(exec)
	ctx := ContextWithActor(context.Background(), 42)

	err := logger.Record(ctx, AuditLog{Action: "create", Entity: "transaction", EntityID: "7", Meta: map[string]any{"total": "10.00"}})
	require.NoError(t, err)
	require.Contains(t, exec.sql, "INSERT INTO audit_logs")
	require.Equal(t, int64(42), exec.args[0])
	require.Equal(t, "transaction", exec.args[2])
	require.JSONEq(t, `{"total":"10.00"}`, string(exec.args[4].([]byte)))
}

func TestAuditLoggerRejectsIncompleteRecord(t *testing.T) {
	logger := NewAuditLogger(&recordingExecer{})
	require.Error(t, logger.Record(context.Background(), AuditLog{Action: "create"}))

	var nilLogger *AuditLogger
	require.Error(t, nilLogger.Record(context.Background(), AuditLog{Action: "a", Entity: "b", EntityID: "c"}))
}

func TestAuditLoggerAddsRequestID(t *testing.T) {
	exec := &recordingExecer{}
	meta := map[string]any{"total": "10.00"}
	ctx := ContextWithRequestID(context.Background(), "req-1")

	require.NoError(t, NewAuditLogger(exec).Record(ctx, AuditLog{Action: "delete", Entity: "transaction", EntityID: "7", Meta: meta}))
	require.JSONEq(t, `{"total":"10.00","request_id":"req-1"}`, string(exec.args[4].([]byte)))
	require.NotContains(t, meta, "request_id")
}

package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type failingExec struct {
	calls int
}

func (f *failingExec) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls++
	return pgconn.CommandTag{}, errors.New("insert failed")
}

type countingDrops struct {
	n int
}

func (c *countingDrops) AuditEntryDropped() { c.n++ }

func TestRecordNeverPanicsWithoutPool(t *testing.T) {
	w := NewWriter(nil, nil, nil)
	w.Record(context.Background(), Entry{})
	w.Flush()
}

func TestRecordSwallowsInsertFailure(t *testing.T) {
	exec := &failingExec{}
	drops := &countingDrops{}
	w := NewWriter(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), drops)
	w.pool = exec

	// Record must return immediately even though the insert will fail;
	// the caller's mutation has already succeeded at this point.
	w.Record(context.Background(), Entry{
		RestaurantID: uuid.New(),
		UserID:       7,
		Action:       ActionCreate,
		EntityType:   EntityMenuItem,
	})
	w.Flush()

	require.Equal(t, 1, exec.calls)
	require.Equal(t, 1, drops.n)
}

func TestEntryValidation(t *testing.T) {
	valid := Entry{
		RestaurantID: uuid.New(),
		UserID:       7,
		Action:       ActionCreate,
		EntityType:   EntityMenuItem,
	}
	require.True(t, valid.Valid())

	missingTenant := valid
	missingTenant.RestaurantID = uuid.Nil
	require.False(t, missingTenant.Valid())

	openAction := valid
	openAction.Action = Action("drop-tables")
	require.False(t, openAction.Valid())

	openEntity := valid
	openEntity.EntityType = Entity("anything")
	require.False(t, openEntity.Valid())
}

func TestWriteCSV(t *testing.T) {
	data, err := WriteCSV(makeRows(2))
	require.NoError(t, err)
	require.Contains(t, string(data), "created_at,user_id,user_email,action,entity_type,entity_id")
	require.Contains(t, string(data), "user@example.com")
}

package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is the slice of pgxpool.Pool the writer needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder is the write-side contract services depend on. Record must never
// fail or block the caller's primary operation.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// DroppedCounter counts entries lost on the write path.
type DroppedCounter interface {
	AuditEntryDropped()
}

// Writer persists entries fire-and-forget: the insert runs on its own
// goroutine with a detached context, and every failure is swallowed after a
// warn log. A lost audit entry must not roll back a legitimate user action.
type Writer struct {
	pool    execer
	logger  *slog.Logger
	dropped DroppedCounter
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewWriter constructs a Writer. dropped may be nil.
func NewWriter(pool *pgxpool.Pool, logger *slog.Logger, dropped DroppedCounter) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		logger:  logger,
		dropped: dropped,
		timeout: 5 * time.Second,
	}
	if pool != nil {
		w.pool = pool
	}
	return w
}

// Record queues the entry for persistence. Invalid entries are dropped.
func (w *Writer) Record(ctx context.Context, entry Entry) {
	if w == nil || w.pool == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if !entry.Valid() {
		w.logger.Warn("audit entry rejected",
			slog.String("action", string(entry.Action)),
			slog.String("entity", string(entry.EntityType)))
		w.drop()
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		// Detached from the request context so a finished request cannot
		// cancel the write.
		writeCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		if err := w.insert(writeCtx, entry); err != nil {
			w.logger.Warn("audit write failed", slog.Any("error", err))
			w.drop()
		}
	}()
}

// Flush waits for in-flight writes, used on shutdown and in tests.
func (w *Writer) Flush() {
	if w == nil {
		return
	}
	w.wg.Wait()
}

func (w *Writer) insert(ctx context.Context, entry Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO audit_entries (restaurant_id, user_id, user_email, action, entity_type, entity_id, details, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`
	_, err = w.pool.Exec(ctx, query,
		entry.RestaurantID, entry.UserID, entry.UserEmail,
		string(entry.Action), string(entry.EntityType), entry.EntityID,
		details, entry.CreatedAt)
	return err
}

func (w *Writer) drop() {
	if w.dropped != nil {
		w.dropped.AuditEntryDropped()
	}
}

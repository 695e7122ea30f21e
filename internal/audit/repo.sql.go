package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads audit entries from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the read repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// TimelineWindow fetches one page of entries, newest-first.
func (r *PGRepository) TimelineWindow(ctx context.Context, filters Filters, limit, offset int) ([]Row, error) {
	query, args := buildTimelineQuery(filters)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.queryRows(ctx, query, args)
}

// TimelineAll fetches the full filtered timeline.
func (r *PGRepository) TimelineAll(ctx context.Context, filters Filters) ([]Row, error) {
	query, args := buildTimelineQuery(filters)
	return r.queryRows(ctx, query, args)
}

// DeleteOlderThan removes entries past the retention horizon for all tenants.
func (r *PGRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_entries WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func buildTimelineQuery(filters Filters) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
SELECT user_id, user_email, action, entity_type, COALESCE(entity_id, ''), details, created_at
FROM audit_entries
WHERE restaurant_id = $1`)
	args := []any{filters.RestaurantID}

	if action := strings.TrimSpace(filters.Action); action != "" {
		args = append(args, action)
		fmt.Fprintf(&sb, " AND action = $%d", len(args))
	}
	if entity := strings.TrimSpace(filters.EntityType); entity != "" {
		args = append(args, entity)
		fmt.Fprintf(&sb, " AND entity_type = $%d", len(args))
	}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	return sb.String(), args
}

func (r *PGRepository) queryRows(ctx context.Context, query string, args []any) ([]Row, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		var details []byte
		if err := rows.Scan(&row.UserID, &row.UserEmail, &row.Action, &row.EntityType, &row.EntityID, &details, &row.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &row.Details)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

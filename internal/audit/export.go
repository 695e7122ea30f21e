package audit

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// WriteCSV renders timeline rows as CSV for export downloads.
func WriteCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"created_at", "user_id", "user_email", "action", "entity_type", "entity_id"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(row.UserID, 10),
			row.UserEmail,
			row.Action,
			row.EntityType,
			row.EntityID,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

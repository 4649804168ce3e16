package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/audit"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
)

// ChangeStore is the audit.Sink backed by the change_log table.
type ChangeStore struct {
	db *sql.DB
}

func NewChangeStore(db *sql.DB) *ChangeStore {
	return &ChangeStore{db: db}
}

// Record writes a batch of changes in one transaction.
func (s *ChangeStore) Record(ctx context.Context, changes []audit.Change) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin change log transaction: %w", err)
	}

	for _, c := range changes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO change_log (id, service_id, field_key, field_display_name,
				original_value, new_value, quantity, frequency, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID.String(), c.ServiceID, c.FieldKey, c.FieldDisplayName,
			c.OriginalValue, c.NewValue, c.Quantity, string(c.Frequency),
			c.RecordedAt.UTC().Format(timeLayout),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert change %s: %w", c.FieldKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit change log transaction: %w", err)
	}
	return nil
}

// List returns the newest changes first. An empty serviceID lists every service; limit <= 0
// means no limit.
func (s *ChangeStore) List(ctx context.Context, serviceID string, limit int) ([]audit.Change, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service_id, field_key, field_display_name,
			original_value, new_value, quantity, frequency, recorded_at
		FROM change_log
		WHERE ? = '' OR service_id = ?
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?`, serviceID, serviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var out []audit.Change
	for rows.Next() {
		var (
			c        audit.Change
			id, freq string
			recorded string
		)
		if err := rows.Scan(&id, &c.ServiceID, &c.FieldKey, &c.FieldDisplayName,
			&c.OriginalValue, &c.NewValue, &c.Quantity, &freq, &recorded); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse change id: %w", err)
		}
		if c.RecordedAt, err = time.Parse(timeLayout, recorded); err != nil {
			return nil, fmt.Errorf("parse change timestamp: %w", err)
		}
		c.Frequency = frequency.Key(freq)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change log: %w", err)
	}
	return out, nil
}

// Package store persists service configs and the change log in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
)

// Fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ConfigRecord is one stored version of a service config.
type ConfigRecord struct {
	ServiceID string         `json:"serviceId"`
	Version   int            `json:"version"`
	Active    bool           `json:"active"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ConfigStore keeps versioned service configs. At most one version per service is active.
type ConfigStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db, now: time.Now}
}

// ActiveConfig returns the active config object of serviceID, or rates.ErrNotFound.
func (s *ConfigStore) ActiveConfig(ctx context.Context, serviceID string) (map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT config_json FROM service_configs
		WHERE service_id = ? AND active = 1
		ORDER BY version DESC LIMIT 1`, serviceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rates.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query active config: %w", err)
	}

	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("decode config of %s: %w", serviceID, err)
	}
	return cfg, nil
}

// SaveConfig stores cfg as the next version of serviceID and makes it the active one.
func (s *ConfigStore) SaveConfig(ctx context.Context, serviceID string, cfg map[string]any) (ConfigRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConfigRecord{}, fmt.Errorf("begin config transaction: %w", err)
	}

	rec, err := saveConfig(ctx, tx, serviceID, cfg, s.now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return ConfigRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return ConfigRecord{}, fmt.Errorf("commit config transaction: %w", err)
	}
	return rec, nil
}

func saveConfig(ctx context.Context, tx *sql.Tx, serviceID string, cfg map[string]any, at time.Time) (ConfigRecord, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return ConfigRecord{}, fmt.Errorf("encode config of %s: %w", serviceID, err)
	}

	var version int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM service_configs WHERE service_id = ?`, serviceID,
	).Scan(&version); err != nil {
		return ConfigRecord{}, fmt.Errorf("next config version: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE service_configs SET active = 0 WHERE service_id = ? AND active = 1`, serviceID,
	); err != nil {
		return ConfigRecord{}, fmt.Errorf("deactivate previous config: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO service_configs (service_id, version, config_json, active, created_at)
		VALUES (?, ?, ?, 1, ?)`, serviceID, version, string(raw), at.Format(timeLayout),
	); err != nil {
		return ConfigRecord{}, fmt.Errorf("insert config: %w", err)
	}

	return ConfigRecord{
		ServiceID: serviceID,
		Version:   version,
		Active:    true,
		Config:    cfg,
		CreatedAt: at,
	}, nil
}

// Save stores cfg inside an existing transaction. Seeding uses it to batch every service.
func (s *ConfigStore) Save(ctx context.Context, tx *sql.Tx, serviceID string, cfg map[string]any) (ConfigRecord, error) {
	return saveConfig(ctx, tx, serviceID, cfg, s.now().UTC())
}

// Active lists the active config of every service, ordered by service id.
func (s *ConfigStore) Active(ctx context.Context) ([]ConfigRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service_id, version, config_json, created_at
		FROM service_configs WHERE active = 1
		ORDER BY service_id`)
	if err != nil {
		return nil, fmt.Errorf("query active configs: %w", err)
	}
	defer rows.Close()

	var out []ConfigRecord
	for rows.Next() {
		var (
			rec     ConfigRecord
			raw     string
			created string
		)
		if err := rows.Scan(&rec.ServiceID, &rec.Version, &raw, &created); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &rec.Config); err != nil {
			return nil, fmt.Errorf("decode config of %s: %w", rec.ServiceID, err)
		}
		rec.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse config timestamp: %w", err)
		}
		rec.Active = true
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configs: %w", err)
	}
	return out, nil
}

// HasActive reports whether serviceID has an active config.
func HasActive(ctx context.Context, tx *sql.Tx, serviceID string) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM service_configs WHERE service_id = ? AND active = 1 LIMIT 1)`, serviceID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active config of %s: %w", serviceID, err)
	}
	return exists, nil
}

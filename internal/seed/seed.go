package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/store"
)

// Config contains the values required by the startup seed.
type Config struct {
	Catalog *services.Catalog
	// Overwrite stores the static defaults as a new active version even when a service already
	// has an active config.
	Overwrite bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run stores every catalog service's default config as its active config. Services that
// already have one are left alone unless cfg.Overwrite is set, so repeated runs are no-ops.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	if cfg.Catalog == nil {
		cfg.Catalog = services.Default()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	configs := store.NewConfigStore(db)
	stats := Stats{}
	for _, rule := range cfg.Catalog.All() {
		if err := ensureConfig(ctx, tx, configs, rule, cfg.Overwrite, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureConfig(ctx context.Context, tx *sql.Tx, configs *store.ConfigStore, rule services.Rule, overwrite bool, stats *Stats) error {
	exists, err := store.HasActive(ctx, tx, rule.ID)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return nil
	}

	if _, err := configs.Save(ctx, tx, rule.ID, rule.Schema.Nested()); err != nil {
		return fmt.Errorf("seed config of %s: %w", rule.ID, err)
	}
	if exists {
		stats.Updates++
	} else {
		stats.Inserts++
	}
	return nil
}

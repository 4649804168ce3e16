package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/db"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/migrations"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/store"
)

func openSeeded(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	database := openSeeded(t)
	catalog := services.Default()
	want := len(catalog.IDs())

	for i := 0; i < 5; i++ {
		stats, err := Run(context.Background(), database, Config{Catalog: catalog})
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != want {
				t.Fatalf("expected %d inserts in first run, got %d", want, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no writes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM service_configs`, want)
	assertCount(t, database, `SELECT COUNT(*) FROM service_configs WHERE active = 1`, want)
}

func TestRunOverwriteAddsVersion(t *testing.T) {
	t.Parallel()

	database := openSeeded(t)
	ctx := context.Background()
	if _, err := Run(ctx, database, Config{}); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	stats, err := Run(ctx, database, Config{Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite seed: %v", err)
	}
	if stats.Updates != len(services.Default().IDs()) || stats.Inserts != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM service_configs WHERE version = 2 AND active = 1`, stats.Updates)
}

func TestSeededConfigResolvesWithoutDefaults(t *testing.T) {
	t.Parallel()

	database := openSeeded(t)
	ctx := context.Background()
	if _, err := Run(ctx, database, Config{}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resolver := rates.NewResolver(store.NewConfigStore(database), nil)
	for _, rule := range services.Default().All() {
		eff := resolver.Fetch(ctx, rule.ID, rule.Schema)
		if eff.UsingDefaults {
			t.Fatalf("%s: expected stored config", rule.ID)
		}
		for _, key := range eff.Config.Keys() {
			if eff.Origins[key] != rates.OriginRemote {
				t.Fatalf("%s: leaf %s resolved from %v", rule.ID, key, eff.Origins[key])
			}
			if got, want := eff.Config.Get(key), rule.Schema.Defaults().Get(key); got != want {
				t.Fatalf("%s: leaf %s = %v, want %v", rule.ID, key, got, want)
			}
		}
	}
}

func TestRulesFileVisitCountsWinOverSeededConfig(t *testing.T) {
	t.Parallel()

	database := openSeeded(t)
	ctx := context.Background()
	if _, err := Run(ctx, database, Config{}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	catalog := services.Default()
	rf, err := services.ParseRules([]byte(`service "saniclean" {
  visits_per_year = { quarterly = 3 }
}`), "rules.hcl")
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	if err := catalog.Apply(rf); err != nil {
		t.Fatalf("apply rules: %v", err)
	}
	if _, err := Run(ctx, database, Config{Catalog: catalog}); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	rule, err := catalog.Get("saniclean")
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	eff := rates.NewResolver(store.NewConfigStore(database), nil).Fetch(ctx, rule.ID, rule.Schema)

	const key = "frequencyMetadata.quarterly.visitsPerYear"
	if got := eff.Config.Get(key); got != 3 {
		t.Fatalf("%s = %v, want 3", key, got)
	}
	if eff.Origins[key] != rates.OriginPinned {
		t.Fatalf("%s resolved from %v", key, eff.Origins[key])
	}
	if eff.UsingDefaults {
		t.Fatalf("expected the stored config for unpinned leaves")
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, expected int) {
	t.Helper()

	var count int
	if err := database.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}

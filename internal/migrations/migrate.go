package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

const sqliteDialect = "sqlite3"

//go:embed sql/*.sql
var files embed.FS

// goose keeps its dialect and base FS in package state.
var mu sync.Mutex

// Up applies every pending embedded migration.
func Up(db *sql.DB) error {
	mu.Lock()
	defer mu.Unlock()
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.Up(db, "sql"); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}
	return nil
}

// Version reports the schema version currently applied.
func Version(db *sql.DB) (int64, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := prepare(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func prepare() error {
	goose.SetBaseFS(files)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Copyright (c) 2025 Resmirror

package assetdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"resmirror-cli/internal/config"
)

// ReadIndex loads the rows of an exported asset index
func ReadIndex(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset index: %w", err)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse asset index %s: %w", path, err)
	}
	return rows, nil
}

// Seed replaces the contents of the configured SQL asset table with rows,
// creating the table when it does not exist yet
func Seed(ctx context.Context, cfg config.AssetDBConfig, rows []Row) (int, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err = connect(ctx, "mysql", MySQLDSN(cfg))
	case config.DriverSQLite:
		if cfg.Path == "" {
			return 0, fmt.Errorf("asset_db.path is required for the sqlite driver")
		}
		db, err = connect(ctx, "sqlite", cfg.Path)
	default:
		return 0, fmt.Errorf("driver %q has no table to seed", cfg.Driver)
	}
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return SeedDB(ctx, db, cfg.Table, rows)
}

// SeedDB is Seed over an already open database
func SeedDB(ctx context.Context, db *sql.DB, table string, rows []Row) (int, error) {
	q, err := NewSQLQuerier(db, table)
	if err != nil {
		return 0, err
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (uuid VARCHAR(64) NOT NULL PRIMARY KEY, url VARCHAR(1024) NOT NULL)", q.table)
	if _, err := db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create asset table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", q.table)); err != nil {
		return 0, fmt.Errorf("clear asset table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (uuid, url) VALUES (?, ?)", q.table))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]bool, len(rows))
	count := 0
	for _, r := range rows {
		if r.UUID == "" || seen[r.UUID] {
			continue
		}
		seen[r.UUID] = true
		if _, err := stmt.ExecContext(ctx, r.UUID, r.URL); err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.UUID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return count, nil
}

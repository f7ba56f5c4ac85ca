// Copyright (c) 2025 Resmirror

package assetdb

import (
	"context"
	"database/sql"
	"fmt"

	"resmirror-cli/internal/config"
)

// Open creates the querier selected by cfg.Driver
func Open(ctx context.Context, cfg config.AssetDBConfig) (Source, error) {
	switch cfg.Driver {
	case "", config.DriverIndex:
		if cfg.Path == "" {
			return nil, fmt.Errorf("asset_db.path is required for the index driver")
		}
		return NewIndexQuerier(cfg.Path), nil
	case config.DriverMySQL:
		db, err := connect(ctx, "mysql", MySQLDSN(cfg))
		if err != nil {
			return nil, err
		}
		return newOwnedSQL(db, cfg.Table)
	case config.DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("asset_db.path is required for the sqlite driver")
		}
		db, err := connect(ctx, "sqlite", cfg.Path)
		if err != nil {
			return nil, err
		}
		return newOwnedSQL(db, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown asset_db driver: %s", cfg.Driver)
	}
}

func newOwnedSQL(db *sql.DB, table string) (*SQLQuerier, error) {
	q, err := NewSQLQuerier(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return q, nil
}

// Copyright (c) 2025 Resmirror

package assetdb

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"resmirror-cli/internal/config"
)

// DefaultTable holds one row per asset: uuid, url
const DefaultTable = "assets"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLQuerier queries an asset table over database/sql
type SQLQuerier struct {
	db    *sql.DB
	table string
}

// NewSQLQuerier wraps an open database. The table needs uuid and url columns.
func NewSQLQuerier(db *sql.DB, table string) (*SQLQuerier, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid asset table name: %q", table)
	}
	return &SQLQuerier{db: db, table: table}, nil
}

// QueryAssets returns the uuids whose url matches pattern. The literal prefix
// of the pattern narrows the scan in SQL; the glob itself is applied in Go.
func (q *SQLQuerier) QueryAssets(ctx context.Context, pattern string) ([]string, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT uuid, url FROM %s WHERE url LIKE ? ESCAPE '!' ORDER BY url", q.table)
	rows, err := q.db.QueryContext(ctx, query, escapeLike(literalPrefix(pattern))+"%")
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var all []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.UUID, &r.URL); err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read asset rows: %w", err)
	}

	return filterRows(all, pattern), nil
}

// Close closes the underlying database
func (q *SQLQuerier) Close() error {
	return q.db.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// MySQLDSN builds a go-sql-driver DSN from the asset_db config
func MySQLDSN(db config.AssetDBConfig) string {
	c := mysql.NewConfig()
	c.User = db.User
	c.Passwd = db.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(db.Host, db.Port)
	c.DBName = db.Name
	return c.FormatDSN()
}

// connect opens and pings a database
func connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to asset database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping asset database: %w", err)
	}

	return conn, nil
}

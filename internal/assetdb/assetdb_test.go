// Copyright (c) 2025 Resmirror

package assetdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"resmirror-cli/internal/config"
)

const internalPattern = "db://internal/resources/**/*"

var testRows = []Row{
	{UUID: "e1", URL: "db://internal/resources/effects"},
	{UUID: "e2", URL: "db://internal/resources/effects/builtin-unlit.effect"},
	{UUID: "m1", URL: "db://internal/resources/materials/builtin-unlit.mtl"},
	{UUID: "r1", URL: "db://internal/resources/root.json"},
	{UUID: "x1", URL: "db://internal/image/default_btn_normal.png"},
	{UUID: "s1", URL: "db://assets/Scene/LaunchScene.fire"},
	{UUID: "l1", URL: "db://internal/resources_legacy/old.effect"},
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern string
		url     string
		want    bool
	}{
		{internalPattern, "db://internal/resources/effects/builtin-unlit.effect", true},
		{internalPattern, "db://internal/resources/root.json", true},
		{internalPattern, "db://internal/resources", false},
		{internalPattern, "db://internal/resources_legacy/old.effect", false},
		{internalPattern, "db://assets/resources/a.png", false},
		{internalPattern, "file://internal/resources/a.png", false},
		{"db://assets/Scene/LaunchScene.fire", "db://assets/Scene/LaunchScene.fire", true},
		{"db://assets/Scene/*.fire", "db://assets/Scene/sub/Other.fire", false},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.url); got != c.want {
			t.Errorf("Match(%q, %q): expected %v, got %v", c.pattern, c.url, c.want, got)
		}
	}
}

func TestLiteralPrefix(t *testing.T) {
	if got := literalPrefix(internalPattern); got != "db://internal/resources/" {
		t.Errorf("unexpected prefix: %q", got)
	}
	if got := literalPrefix("db://assets/a.fire"); got != "db://assets/a.fire" {
		t.Errorf("unexpected prefix: %q", got)
	}
	if got := escapeLike("a_b%c!"); got != "a!_b!%c!!" {
		t.Errorf("unexpected escape: %q", got)
	}
}

func writeIndex(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset-index.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIndexQuerier(t *testing.T) {
	path := writeIndex(t, `[
		{"uuid": "r1", "url": "db://internal/resources/root.json"},
		{"uuid": "e2", "url": "db://internal/resources/effects/builtin-unlit.effect"},
		{"uuid": "s1", "url": "db://assets/Scene/LaunchScene.fire"},
		{"uuid": "e1", "url": "db://internal/resources/effects"}
	]`)

	q := NewIndexQuerier(path)
	got, err := q.QueryAssets(context.Background(), internalPattern)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []string{"e1", "e2", "r1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestIndexQuerierErrors(t *testing.T) {
	q := NewIndexQuerier(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := q.QueryAssets(context.Background(), internalPattern); err == nil {
		t.Error("expected error for missing index")
	}

	q = NewIndexQuerier(writeIndex(t, `{"not": "an array"}`))
	if _, err := q.QueryAssets(context.Background(), internalPattern); err == nil {
		t.Error("expected error for malformed index")
	}

	q = NewIndexQuerier(writeIndex(t, `[]`))
	if _, err := q.QueryAssets(context.Background(), "db://internal/[res"); !errors.Is(err, ErrBadPattern) {
		t.Errorf("expected ErrBadPattern, got %v", err)
	}
}

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// every pooled connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE assets (uuid TEXT PRIMARY KEY, url TEXT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, r := range testRows {
		if _, err := db.Exec(`INSERT INTO assets (uuid, url) VALUES (?, ?)`, r.UUID, r.URL); err != nil {
			t.Fatalf("insert %s: %v", r.UUID, err)
		}
	}
	return db
}

func TestSQLQuerierSQLite(t *testing.T) {
	q, err := NewSQLQuerier(openMemoryDB(t), "")
	if err != nil {
		t.Fatalf("new querier: %v", err)
	}

	got, err := q.QueryAssets(context.Background(), internalPattern)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []string{"e1", "e2", "m1", "r1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got, err = q.QueryAssets(context.Background(), "db://assets/Scene/LaunchScene.fire")
	if err != nil {
		t.Fatalf("query scene: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"s1"}) {
		t.Errorf("expected [s1], got %v", got)
	}
}

func TestSQLQuerierRejectsBadTable(t *testing.T) {
	if _, err := NewSQLQuerier(openMemoryDB(t), "assets; DROP TABLE assets"); err == nil {
		t.Fatal("expected error for unsafe table name")
	}
}

func TestSQLQuerierCanceledContext(t *testing.T) {
	q, err := NewSQLQuerier(openMemoryDB(t), "assets")
	if err != nil {
		t.Fatalf("new querier: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.QueryAssets(ctx, internalPattern); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE library (uuid TEXT, url TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO library VALUES ('e2', 'db://internal/resources/a.effect')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	src, err := Open(context.Background(), config.AssetDBConfig{Driver: config.DriverSQLite, Path: path, Table: "library"})
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	defer src.Close()

	got, err := src.QueryAssets(context.Background(), internalPattern)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"e2"}) {
		t.Errorf("expected [e2], got %v", got)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(context.Background(), config.AssetDBConfig{Driver: "postgres"}); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), config.AssetDBConfig{Driver: config.DriverIndex}); err == nil {
		t.Error("expected error for index driver without path")
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.AssetDBConfig{
		User:     "editor",
		Password: "pw",
		Host:     "127.0.0.1",
		Port:     "3306",
		Name:     "assetdb",
	})
	if !strings.HasPrefix(dsn, "editor:pw@tcp(127.0.0.1:3306)/assetdb") {
		t.Errorf("unexpected dsn: %s", dsn)
	}
}

func TestSeedSQLite(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "asset-index.json")
	if err := os.WriteFile(index, []byte(`[
		{"uuid": "e1", "url": "db://internal/resources/builtin.effect"},
		{"uuid": "s1", "url": "db://assets/Scene/LaunchScene.fire"},
		{"uuid": "e1", "url": "db://internal/resources/duplicate.effect"}
	]`), 0644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	rows, err := ReadIndex(index)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}

	cfg := config.AssetDBConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "assets.db"), Table: "assets"}
	n, err := Seed(context.Background(), cfg, rows)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows seeded, got %d", n)
	}

	// Seeding again replaces rather than appends
	if _, err := Seed(context.Background(), cfg, rows[:1]); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	src, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	defer src.Close()

	got, err := src.QueryAssets(context.Background(), "db://**/*")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"e1"}) {
		t.Errorf("expected [e1], got %v", got)
	}
}

func TestSeedRejectsIndexDriver(t *testing.T) {
	if _, err := Seed(context.Background(), config.AssetDBConfig{Driver: config.DriverIndex}, testRows); err == nil {
		t.Fatal("expected error for index driver")
	}
}

// Copyright (c) 2025 Resmirror

package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"resmirror-cli/internal/mirror"
)

func task(uuid, hash string, raw bool, ext string) mirror.Task {
	return mirror.Task{Ref: mirror.Ref{UUID: uuid, Hash: hash, Raw: raw, Ext: ext}}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "mirror_ledger.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l.Entries) != 0 {
		t.Errorf("expected empty ledger, got %+v", l.Entries)
	}
}

func TestRecordKeepsNewestHash(t *testing.T) {
	l := &Ledger{}
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	l.Record([]mirror.Task{task("ab01", "h1", false, "json"), task("cd02", "h2", true, "png")}, t0)
	l.Record([]mirror.Task{task("ab01", "h1", false, "json"), task("cd02", "h9", true, "png")}, t1)

	if len(l.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(l.Entries))
	}

	ab, _ := l.Lookup("ab01")
	if ab.MirroredAt != t0.Format(time.RFC3339) {
		t.Errorf("unchanged entry must keep its timestamp, got %s", ab.MirroredAt)
	}

	cd, ok := l.Lookup("cd02")
	if !ok {
		t.Fatal("cd02 missing")
	}
	if cd.Hash != "h9" || cd.Path != "raw-assets/cd/cd02.h9.png" || cd.MirroredAt != t1.Format(time.RFC3339) {
		t.Errorf("unexpected entry: %+v", cd)
	}
}

func TestSaveLoadAndMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared", "mirror_ledger.json")
	tree := filepath.Join(dir, "res_internal")

	l := &Ledger{Platform: "wechatgame"}
	l.Record([]mirror.Task{task("zz09", "h3", false, "json"), task("ab01", "h1", false, "json")}, time.Now())
	if err := l.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Platform != "wechatgame" || len(loaded.Entries) != 2 || loaded.Entries[0].UUID != "ab01" {
		t.Fatalf("unexpected ledger: %+v", loaded)
	}

	present := filepath.Join(tree, "import", "ab", "ab01.h1.json")
	if err := os.MkdirAll(filepath.Dir(present), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(present, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	missing := loaded.Missing(tree)
	if len(missing) != 1 || missing[0].UUID != "zz09" {
		t.Errorf("expected zz09 missing, got %+v", missing)
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror_ledger.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

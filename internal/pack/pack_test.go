// Copyright (c) 2025 Resmirror

package pack

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCollect(t *testing.T) {
	root := filepath.Join(t.TempDir(), "res_internal")
	writeFile(t, filepath.Join(root, "raw-assets", "9f", "9f00aa.abc123.png"), "PNG")
	writeFile(t, filepath.Join(root, "import", "ab", "ab12cd.def456.json"), "{}")
	writeFile(t, filepath.Join(root, "import", "ab", ".DS_Store"), "junk")

	files, err := Collect(root, "res_internal")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	if files[0].MPQPath != `res_internal\import\ab\ab12cd.def456.json` {
		t.Errorf("unexpected mpq path: %s", files[0].MPQPath)
	}
	if files[1].MPQPath != `res_internal\raw-assets\9f\9f00aa.abc123.png` {
		t.Errorf("unexpected mpq path: %s", files[1].MPQPath)
	}

	files, err = Collect(root, "")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if files[0].MPQPath != `import\ab\ab12cd.def456.json` {
		t.Errorf("unexpected unprefixed path: %s", files[0].MPQPath)
	}
}

func TestCollectMissingRoot(t *testing.T) {
	files, err := Collect(filepath.Join(t.TempDir(), "absent"), "")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %+v", files)
	}
}

func TestArchiveEmptyTreeWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "res_internal.mpq")

	count, err := Archive(filepath.Join(dir, "res_internal"), "res_internal", out)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 files, got %d", count)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("archive must not be created for an empty tree")
	}
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "res_internal")
	writeFile(t, filepath.Join(root, "import", "ab", "ab12cd.def456.json"), `{"a":1}`)
	writeFile(t, filepath.Join(root, "raw-assets", "9f", "9f00aa.abc123.png"), "PNG")

	out := filepath.Join(dir, "dist", "res_internal.mpq")
	count, err := Archive(root, "res_internal", out)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 files, got %d", count)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat archive: %v", err)
	}
	if info.Size() == 0 {
		t.Error("archive is empty")
	}
}

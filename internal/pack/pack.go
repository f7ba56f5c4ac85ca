// Copyright (c) 2025 Resmirror
// Packs a mirrored cache tree into a single MPQ archive.

package pack

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gompq "github.com/suprsokr/go-mpq"
)

// File is one file to add to the archive
type File struct {
	SrcPath string // Absolute path on disk
	MPQPath string // Backslash separated path inside the archive
}

// Collect lists the files under root in archive order. Archive paths are
// prefixed with prefix when it is not empty.
func Collect(root, prefix string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		// Skip hidden files and common junk files
		name := d.Name()
		if strings.HasPrefix(name, ".") || name == "Thumbs.db" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		mpqPath := strings.ReplaceAll(filepath.ToSlash(rel), "/", "\\")
		if prefix != "" {
			mpqPath = prefix + "\\" + mpqPath
		}
		files = append(files, File{SrcPath: path, MPQPath: mpqPath})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].MPQPath < files[j].MPQPath })
	return files, nil
}

// Archive packages every file under root into an MPQ at outputPath and
// returns the number of files added. Nothing is written for an empty tree.
func Archive(root, prefix, outputPath string) (int, error) {
	files, err := Collect(root, prefix)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}

	// Ensure output directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return 0, fmt.Errorf("create archive directory: %w", err)
	}
	os.Remove(outputPath)

	archive, err := gompq.CreateV2(outputPath, len(files)+10)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}

	for _, file := range files {
		if err := archive.AddFile(file.SrcPath, file.MPQPath); err != nil {
			archive.Close()
			return 0, fmt.Errorf("add %s: %w", file.MPQPath, err)
		}
	}

	if err := archive.Close(); err != nil {
		return 0, fmt.Errorf("write archive: %w", err)
	}

	return len(files), nil
}

// Copyright (c) 2025 Resmirror

package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"resmirror-cli/internal/mirror"
)

// Entry records the last mirrored version of one asset
type Entry struct {
	UUID       string `json:"uuid"`
	Hash       string `json:"hash"`
	Path       string `json:"path"`        // relative to the secondary tree
	MirroredAt string `json:"mirrored_at"` // RFC3339
}

// Ledger tracks which assets have been mirrored into the secondary tree
type Ledger struct {
	Platform string  `json:"platform,omitempty"`
	Entries  []Entry `json:"entries"`
}

// Load reads the ledger at path. A missing file yields an empty ledger.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Ledger{Entries: []Entry{}}, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	return &l, nil
}

// Save writes the ledger to path, sorted by uuid
func (l *Ledger) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	sort.Slice(l.Entries, func(i, j int) bool { return l.Entries[i].UUID < l.Entries[j].UUID })

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Record stores the tasks of a mirror run; the newest hash per uuid wins
func (l *Ledger) Record(tasks []mirror.Task, at time.Time) {
	index := make(map[string]int, len(l.Entries))
	for i, e := range l.Entries {
		index[e.UUID] = i
	}

	stamp := at.UTC().Format(time.RFC3339)
	for _, task := range tasks {
		entry := Entry{
			UUID:       task.Ref.UUID,
			Hash:       task.Ref.Hash,
			Path:       task.Ref.RelPath(),
			MirroredAt: stamp,
		}
		if i, ok := index[entry.UUID]; ok {
			if l.Entries[i].Hash == entry.Hash {
				continue
			}
			l.Entries[i] = entry
			continue
		}
		index[entry.UUID] = len(l.Entries)
		l.Entries = append(l.Entries, entry)
	}
}

// Lookup returns the entry for uuid
func (l *Ledger) Lookup(uuid string) (Entry, bool) {
	for _, e := range l.Entries {
		if e.UUID == uuid {
			return e, true
		}
	}
	return Entry{}, false
}

// Missing returns entries whose file is no longer present under root
func (l *Ledger) Missing(root string) []Entry {
	var missing []Entry
	for _, e := range l.Entries {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(e.Path))); os.IsNotExist(err) {
			missing = append(missing, e)
		}
	}
	return missing
}

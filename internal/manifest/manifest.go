// Copyright (c) 2025 Resmirror
// Build manifest produced by the editor's build pass.

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// FolderType is the asset type reported for directories in the asset database
const FolderType = "folder"

// Manifest is the build result of one editor build.
// It is loaded once per build and must be treated as read-only.
type Manifest struct {
	MD5Map       map[string]string `json:"md5Map"`       // imported asset uuid -> hash
	NativeMD5Map map[string]string `json:"nativeMd5Map"` // raw asset uuid -> hash
	BuildAssets  map[string]Asset  `json:"buildAssets"`
	PackedAssets PackGroups        `json:"packedAssets"`
}

// Asset is a single entry of the build asset table
type Asset struct {
	Type        string   `json:"type,omitempty"`
	NativePath  string   `json:"nativePath,omitempty"`
	DependUUIDs []string `json:"dependUuids,omitempty"`
	Folder      bool     `json:"isFolder,omitempty"`
}

// PackGroup is a set of small assets merged into one output file
type PackGroup struct {
	ID      string
	Members []string
}

// PackGroups keeps pack groups in manifest document order
type PackGroups []PackGroup

// Load reads and parses a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest document
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// HashOf returns the content hash of an asset, imported table first
func (m *Manifest) HashOf(uuid string) (string, bool) {
	if h, ok := m.MD5Map[uuid]; ok && h != "" {
		return h, true
	}
	if h, ok := m.NativeMD5Map[uuid]; ok && h != "" {
		return h, true
	}
	return "", false
}

// AssetOf returns the build record of an asset
func (m *Manifest) AssetOf(uuid string) (Asset, bool) {
	a, ok := m.BuildAssets[uuid]
	return a, ok
}

// IsFolder reports whether the asset is a directory. Unknown ids are not folders.
func (m *Manifest) IsFolder(uuid string) bool {
	a, ok := m.BuildAssets[uuid]
	if !ok {
		return false
	}
	return a.Folder || a.Type == FolderType
}

// PackGroupContaining returns the first pack group (document order) that lists uuid
func (m *Manifest) PackGroupContaining(uuid string) (string, bool) {
	for _, g := range m.PackedAssets {
		for _, member := range g.Members {
			if member == uuid {
				return g.ID, true
			}
		}
	}
	return "", false
}

// Validate returns a warning per dangling reference. Dangling references are
// tolerated by the mirror, so these are never errors.
func (m *Manifest) Validate() []string {
	var warnings []string
	for uuid, a := range m.BuildAssets {
		for _, dep := range a.DependUUIDs {
			if _, ok := m.BuildAssets[dep]; !ok {
				warnings = append(warnings, fmt.Sprintf("asset %s depends on unknown asset %s", uuid, dep))
			}
		}
	}
	for _, g := range m.PackedAssets {
		for _, member := range g.Members {
			if _, ok := m.BuildAssets[member]; !ok {
				warnings = append(warnings, fmt.Sprintf("pack group %s lists unknown asset %s", g.ID, member))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}

// UnmarshalJSON decodes the packedAssets object without losing key order
func (g *PackGroups) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*g = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("packedAssets: expected object, got %v", tok)
	}

	groups := PackGroups{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("packedAssets: unexpected key %v", keyTok)
		}
		var members []string
		if err := dec.Decode(&members); err != nil {
			return fmt.Errorf("packedAssets[%s]: %w", key, err)
		}
		groups = append(groups, PackGroup{ID: key, Members: members})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*g = groups
	return nil
}

// MarshalJSON encodes pack groups back into an object in the same order
func (g PackGroups) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(group.ID)
		if err != nil {
			return nil, err
		}
		members := group.Members
		if members == nil {
			members = []string{}
		}
		val, err := json.Marshal(members)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

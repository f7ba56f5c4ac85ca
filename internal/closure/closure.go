// Copyright (c) 2025 Resmirror

// Package closure expands root assets into everything that has to be mirrored
// alongside them: dependencies, transitively, plus the pack group each visited
// asset was merged into.
package closure

import "resmirror-cli/internal/manifest"

// Resolve returns the mirror targets reachable from roots, in depth-first order.
//
// Roots without a build record and folders are skipped. Folder children are
// expected to appear as roots themselves. Pack groups are terminal targets; they
// are expanded only if reached again as an ordinary asset.
func Resolve(m *manifest.Manifest, roots []string) []string {
	w := walker{
		m:        m,
		expanded: make(map[string]bool),
		emitted:  make(map[string]bool),
	}
	w.walk(roots)
	return w.out
}

type walker struct {
	m        *manifest.Manifest
	expanded map[string]bool
	emitted  map[string]bool
	out      []string
}

func (w *walker) walk(uuids []string) {
	for _, uuid := range uuids {
		asset, ok := w.m.AssetOf(uuid)
		if !ok || w.m.IsFolder(uuid) {
			continue
		}
		// a revisit would only repeat the same copies; this also stops cycles
		if w.expanded[uuid] {
			continue
		}
		w.expanded[uuid] = true

		w.emit(uuid)
		if len(asset.DependUUIDs) > 0 {
			w.walk(asset.DependUUIDs)
		}
		if group, ok := w.m.PackGroupContaining(uuid); ok {
			w.emit(group)
		}
	}
}

func (w *walker) emit(uuid string) {
	if w.emitted[uuid] {
		return
	}
	w.emitted[uuid] = true
	w.out = append(w.out, uuid)
}

// Copyright (c) 2025 Resmirror

// Package mirror copies built assets from the primary output tree into the
// secondary cache tree.
//
// Both trees share one content-addressed layout:
//
//	raw-assets/{uuid[0:2]}/{uuid}.{hash}.{ext}   assets with a native file
//	import/{uuid[0:2]}/{uuid}.{hash}.json        serialized imported assets
//
// The same uuid and hash always map to the same path, so an existing
// destination file is taken as already mirrored and never rewritten.
package mirror

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/manifest"
)

const (
	RawAssetsDir = "raw-assets"
	ImportDir    = "import"
	ImportExt    = "json"
)

// Ref is an asset resolved against the manifest
type Ref struct {
	UUID string
	Hash string
	Raw  bool
	Ext  string
}

// Resolve looks up the hash and storage class of uuid. It returns false when
// neither hash table knows the asset.
func Resolve(m *manifest.Manifest, uuid string) (Ref, bool) {
	hash, ok := m.HashOf(uuid)
	if !ok {
		return Ref{}, false
	}

	ref := Ref{UUID: uuid, Hash: hash, Ext: ImportExt}
	if asset, ok := m.AssetOf(uuid); ok && asset.NativePath != "" {
		ref.Raw = true
		ref.Ext = nativeExt(asset.NativePath)
	}
	return ref, true
}

// nativeExt returns the text after the last dot of the file name, or the whole
// name when it has no dot
func nativeExt(nativePath string) string {
	base := path.Base(filepath.ToSlash(nativePath))
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}

// Shard returns the two character directory an asset is stored under
func Shard(uuid string) string {
	if len(uuid) < 2 {
		return uuid
	}
	return uuid[:2]
}

// Dir returns the slash separated category/shard directory of the ref
func (r Ref) Dir() string {
	category := ImportDir
	if r.Raw {
		category = RawAssetsDir
	}
	return path.Join(category, Shard(r.UUID))
}

// FileName returns {uuid}.{hash}.{ext}
func (r Ref) FileName() string {
	return fmt.Sprintf("%s.%s.%s", r.UUID, r.Hash, r.Ext)
}

// RelPath returns the slash separated path of the ref inside a tree
func (r Ref) RelPath() string {
	return path.Join(r.Dir(), r.FileName())
}

// Task copies one resolved asset between the two trees
type Task struct {
	Ref Ref
	Src string
	Dst string
}

// Report summarizes a mirror run
type Report struct {
	Planned int
	Copied  int
	Skipped int // destination already present
}

// Add accumulates another run into r
func (r *Report) Add(o Report) {
	r.Planned += o.Planned
	r.Copied += o.Copied
	r.Skipped += o.Skipped
}

// Executor mirrors files from SrcRoot into DstRoot
type Executor struct {
	fs      FS
	srcRoot string
	dstRoot string
	log     zerolog.Logger
}

// NewExecutor creates a mirror executor between two tree roots
func NewExecutor(fs FS, srcRoot, dstRoot string, log zerolog.Logger) *Executor {
	return &Executor{
		fs:      fs,
		srcRoot: srcRoot,
		dstRoot: dstRoot,
		log:     log.With().Str("component", "mirror").Logger(),
	}
}

// Plan turns asset ids into copy tasks. Ids without a hash are dropped.
func (e *Executor) Plan(m *manifest.Manifest, uuids []string) []Task {
	tasks := make([]Task, 0, len(uuids))
	for _, uuid := range uuids {
		ref, ok := Resolve(m, uuid)
		if !ok {
			e.log.Trace().Str("uuid", uuid).Msg("no hash in manifest, nothing to mirror")
			continue
		}
		rel := filepath.FromSlash(ref.RelPath())
		tasks = append(tasks, Task{
			Ref: ref,
			Src: filepath.Join(e.srcRoot, rel),
			Dst: filepath.Join(e.dstRoot, rel),
		})
	}
	return tasks
}

// Run executes tasks in order and stops at the first filesystem error
func (e *Executor) Run(ctx context.Context, tasks []Task) (Report, error) {
	report := Report{Planned: len(tasks)}
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := e.fs.EnsureDir(filepath.Dir(task.Dst)); err != nil {
			return report, fmt.Errorf("create directory for %s: %w", task.Ref.UUID, err)
		}

		if e.fs.Exists(task.Dst) {
			report.Skipped++
			continue
		}

		if err := e.fs.CopyFile(task.Src, task.Dst); err != nil {
			return report, fmt.Errorf("copy %s: %w", task.Ref.RelPath(), err)
		}
		report.Copied++
		e.log.Debug().Str("src", task.Src).Str("dst", task.Dst).Msg("copied")
	}
	return report, nil
}

// Mirror plans and runs uuids in one call
func (e *Executor) Mirror(ctx context.Context, m *manifest.Manifest, uuids []string) (Report, error) {
	return e.Run(ctx, e.Plan(m, uuids))
}

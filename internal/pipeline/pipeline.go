// Copyright (c) 2025 Resmirror

// Package pipeline hooks the mirror into the editor build lifecycle.
//
// The host calls OnPreBuild before a build writes any output and OnPostBuild
// once the build results are final. Both phases only act for the configured
// target platform in release builds; the post-build phase additionally needs
// the MD5 cache to be enabled.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/assetdb"
	"resmirror-cli/internal/closure"
	"resmirror-cli/internal/manifest"
	"resmirror-cli/internal/mirror"
)

const (
	DefaultTargetPlatform  = "wechatgame"
	DefaultPrimaryDir      = "res"
	DefaultSecondaryDir    = "res_internal"
	DefaultInternalPattern = "db://internal/resources/**/*"
)

// BuildHook is the surface registered with the host build pipeline
type BuildHook interface {
	OnPreBuild(ctx context.Context, opts Options) error
	OnPostBuild(ctx context.Context, opts Options, m *manifest.Manifest) error
}

// Options are the per-build values supplied by the host
type Options struct {
	Platform   string // Platform actually being built
	Debug      bool
	MD5Cache   bool
	Dest       string // Build output root
	StartScene string // uuid of the launch scene
}

// Hook mirrors internal resources and the start scene after a build
type Hook struct {
	TargetPlatform  string
	PrimaryDir      string
	SecondaryDir    string
	InternalPattern string

	Query assetdb.Querier
	FS    mirror.FS
	Log   zerolog.Logger
}

var _ BuildHook = (*Hook)(nil)

// Result describes one post-build phase
type Result struct {
	Ran        bool
	Internal   mirror.Report
	StartScene mirror.Report
	Tasks      []mirror.Task // every task that completed, in order
	QueryErr   error         // internal resource query failure, if any
}

// Total returns the combined report of both root sets
func (r Result) Total() mirror.Report {
	total := r.Internal
	total.Add(r.StartScene)
	return total
}

func (h *Hook) targetPlatform() string {
	if h.TargetPlatform == "" {
		return DefaultTargetPlatform
	}
	return h.TargetPlatform
}

func (h *Hook) primaryDir() string {
	if h.PrimaryDir == "" {
		return DefaultPrimaryDir
	}
	return h.PrimaryDir
}

func (h *Hook) secondaryDir() string {
	if h.SecondaryDir == "" {
		return DefaultSecondaryDir
	}
	return h.SecondaryDir
}

func (h *Hook) internalPattern() string {
	if h.InternalPattern == "" {
		return DefaultInternalPattern
	}
	return h.InternalPattern
}

func (h *Hook) fs() mirror.FS {
	if h.FS == nil {
		return mirror.OSFS{}
	}
	return h.FS
}

// PreBuildGate reports whether the pre-build cleanup applies to opts
func (h *Hook) PreBuildGate(opts Options) bool {
	return opts.Platform == h.targetPlatform() && !opts.Debug
}

// PostBuildGate reports whether the post-build mirror applies to opts
func (h *Hook) PostBuildGate(opts Options) bool {
	return h.PreBuildGate(opts) && opts.MD5Cache
}

// PrimaryRoot returns the tree the build writes under dest
func (h *Hook) PrimaryRoot(dest string) string {
	return filepath.Join(dest, h.primaryDir())
}

// SecondaryRoot returns the tree mirrored into under dest
func (h *Hook) SecondaryRoot(dest string) string {
	return filepath.Join(dest, h.secondaryDir())
}

// OnPreBuild removes both output trees so the build starts from nothing
func (h *Hook) OnPreBuild(ctx context.Context, opts Options) error {
	if !h.PreBuildGate(opts) {
		h.Log.Debug().Str("platform", opts.Platform).Bool("debug", opts.Debug).Msg("pre-build: gate closed, skipping")
		return nil
	}
	if opts.Dest == "" {
		return errors.New("pre-build: build destination is empty")
	}

	for _, dir := range []string{h.PrimaryRoot(opts.Dest), h.SecondaryRoot(opts.Dest)} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.fs().RemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
		h.Log.Info().Str("dir", dir).Msg("pre-build: removed output tree")
	}
	return nil
}

// OnPostBuild mirrors the internal resources and the start scene
func (h *Hook) OnPostBuild(ctx context.Context, opts Options, m *manifest.Manifest) error {
	_, err := h.PostBuild(ctx, opts, m)
	return err
}

// PostBuild is OnPostBuild returning what was done
func (h *Hook) PostBuild(ctx context.Context, opts Options, m *manifest.Manifest) (Result, error) {
	var res Result
	if !h.PostBuildGate(opts) {
		h.Log.Debug().
			Str("platform", opts.Platform).
			Bool("debug", opts.Debug).
			Bool("md5_cache", opts.MD5Cache).
			Msg("post-build: gate closed, skipping")
		return res, nil
	}
	if m == nil {
		return res, errors.New("post-build: no build manifest")
	}
	if opts.Dest == "" {
		return res, errors.New("post-build: build destination is empty")
	}
	res.Ran = true

	exec := mirror.NewExecutor(h.fs(), h.PrimaryRoot(opts.Dest), h.SecondaryRoot(opts.Dest), h.Log)

	// Engine built-in effects and materials
	roots, err := h.queryInternal(ctx)
	if err != nil {
		res.QueryErr = err
		h.Log.Warn().Err(err).Str("pattern", h.internalPattern()).Msg("post-build: asset query failed, skipping internal resources")
	} else {
		tasks := exec.Plan(m, closure.Resolve(m, roots))
		report, err := exec.Run(ctx, tasks)
		res.Internal = report
		if err != nil {
			return res, fmt.Errorf("mirror internal resources: %w", err)
		}
		res.Tasks = append(res.Tasks, tasks...)
		h.Log.Info().Int("roots", len(roots)).Int("copied", report.Copied).Int("skipped", report.Skipped).Msg("post-build: internal resources mirrored")
	}

	// Start scene and everything it pulls in
	if opts.StartScene == "" {
		h.Log.Warn().Msg("post-build: no start scene configured")
		return res, nil
	}
	tasks := exec.Plan(m, closure.Resolve(m, []string{opts.StartScene}))
	report, err := exec.Run(ctx, tasks)
	res.StartScene = report
	if err != nil {
		return res, fmt.Errorf("mirror start scene %s: %w", opts.StartScene, err)
	}
	res.Tasks = append(res.Tasks, tasks...)
	h.Log.Info().Str("scene", opts.StartScene).Int("copied", report.Copied).Int("skipped", report.Skipped).Msg("post-build: start scene mirrored")

	return res, nil
}

func (h *Hook) queryInternal(ctx context.Context) ([]string, error) {
	if h.Query == nil {
		return nil, errors.New("no asset database configured")
	}
	return h.Query.QueryAssets(ctx, h.internalPattern())
}

// Copyright (c) 2025 Resmirror

package commands

import (
	"flag"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/assetdb"
	"resmirror-cli/internal/config"
	"resmirror-cli/internal/mirror"
	"resmirror-cli/internal/pipeline"
)

// buildFlags are the build options the host passes on the command line
type buildFlags struct {
	platform   *string
	debug      *bool
	md5Cache   *bool
	dest       *string
	startScene *string
	manifest   *string
}

// addBuildFlags registers the build option flags, defaulting from cfg
func addBuildFlags(fs *flag.FlagSet, cfg *config.Config) *buildFlags {
	return &buildFlags{
		platform:   fs.String("platform", cfg.Build.TargetPlatform, "Platform being built"),
		debug:      fs.Bool("debug", false, "Build is a debug build"),
		md5Cache:   fs.Bool("md5-cache", false, "Build uses MD5 cache file names"),
		dest:       fs.String("dest", cfg.GetDestPath(), "Build output directory"),
		startScene: fs.String("start-scene", cfg.Build.StartScene, "UUID of the start scene"),
		manifest:   fs.String("manifest", "", "Build results file (default: from config)"),
	}
}

// options converts parsed flags into pipeline options
func (b *buildFlags) options() pipeline.Options {
	return pipeline.Options{
		Platform:   *b.platform,
		Debug:      *b.debug,
		MD5Cache:   *b.md5Cache,
		Dest:       *b.dest,
		StartScene: *b.startScene,
	}
}

// manifestPath returns the manifest flag or the configured location
func (b *buildFlags) manifestPath(cfg *config.Config) string {
	if *b.manifest != "" {
		return *b.manifest
	}
	if cfg.Build.Manifest == "" && *b.dest != cfg.GetDestPath() {
		return config.DefaultManifestPath(*b.dest)
	}
	return cfg.GetManifestPath()
}

// newHook builds the pipeline hook described by cfg
func newHook(cfg *config.Config, query assetdb.Querier, log zerolog.Logger) *pipeline.Hook {
	return &pipeline.Hook{
		TargetPlatform:  cfg.Build.TargetPlatform,
		PrimaryDir:      cfg.Build.PrimaryDir,
		SecondaryDir:    cfg.Build.SecondaryDir,
		InternalPattern: cfg.Build.InternalPattern,
		Query:           query,
		FS:              mirror.OSFS{},
		Log:             log,
	}
}

// Copyright (c) 2025 Resmirror

package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/config"
)

// PreBuild clears both output trees before the editor starts a build
func PreBuild(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("prebuild", flag.ExitOnError)
	bf := addBuildFlags(fs, cfg)
	fs.Parse(args)

	opts := bf.options()
	hook := newHook(cfg, nil, log)

	if !hook.PreBuildGate(opts) {
		fmt.Printf("Pre-build skipped (platform=%s debug=%v)\n", opts.Platform, opts.Debug)
		return nil
	}

	fmt.Println("=== Pre-build: clearing output trees ===")
	if err := hook.OnPreBuild(ctx, opts); err != nil {
		return fmt.Errorf("pre-build: %w", err)
	}
	fmt.Printf("  Removed %s\n", hook.PrimaryRoot(opts.Dest))
	fmt.Printf("  Removed %s\n", hook.SecondaryRoot(opts.Dest))

	return nil
}

// Copyright (c) 2025 Resmirror

package commands

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/config"
	"resmirror-cli/internal/pack"
)

// Pack packages the mirrored tree into an MPQ archive
func Pack(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	dest := fs.String("dest", cfg.GetDestPath(), "Build output directory")
	output := fs.String("output", "", "Archive path (default: from config)")
	fs.Parse(args)

	out := *output
	if out == "" {
		out = cfg.GetPackPath(*dest)
	}
	root := newHook(cfg, nil, zerolog.Nop()).SecondaryRoot(*dest)

	fmt.Println("=== Packaging mirrored resources ===")
	count, err := pack.Archive(root, cfg.Build.SecondaryDir, out)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	if count == 0 {
		fmt.Printf("  Nothing to package in %s\n", root)
		return nil
	}
	fmt.Printf("  Packaged %d file(s) into %s\n", count, out)
	return nil
}

// Copyright (c) 2025 Resmirror

package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/config"
	"resmirror-cli/internal/ledger"
)

// Status shows what the ledger knows about the mirrored tree
func Status(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	dest := fs.String("dest", cfg.GetDestPath(), "Build output directory")
	verbose := fs.Bool("v", false, "List every ledger entry")
	fs.Parse(args)

	fmt.Println("=== Resmirror Status ===")
	fmt.Println()
	fmt.Printf("Workspace: %s\n", cfg.WorkspaceRoot)
	fmt.Printf("Target:    %s\n", cfg.Build.TargetPlatform)

	root := newHook(cfg, nil, zerolog.Nop()).SecondaryRoot(*dest)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		fmt.Printf("Mirror:    %s (not created yet)\n", root)
	} else {
		fmt.Printf("Mirror:    %s\n", root)
	}
	fmt.Println()

	l, err := ledger.Load(cfg.GetLedgerPath())
	if err != nil {
		return err
	}
	if len(l.Entries) == 0 {
		fmt.Println("No mirrored assets recorded.")
		fmt.Println("Run 'resmirror postbuild --md5-cache' after a release build.")
		return nil
	}

	missing := l.Missing(root)
	fmt.Printf("Recorded assets: %d\n", len(l.Entries))
	fmt.Printf("Missing on disk: %d\n", len(missing))

	if *verbose {
		fmt.Println()
		for _, e := range l.Entries {
			fmt.Printf("  %s  %s  %s\n", e.MirroredAt, e.UUID, e.Path)
		}
	}
	if len(missing) > 0 {
		fmt.Println()
		fmt.Println("Missing:")
		for _, e := range missing {
			fmt.Printf("  - %s (%s)\n", e.Path, e.UUID)
		}
	}

	return nil
}

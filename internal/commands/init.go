// Copyright (c) 2025 Resmirror

package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"resmirror-cli/assets"
	"resmirror-cli/internal/assetdb"
	"resmirror-cli/internal/config"
)

// Init initializes a new resmirror workspace
func Init(configPath string, args []string) error {
	// Check if this is a subcommand
	if len(args) > 0 && args[0] == "db" {
		return InitDB(context.Background(), configPath, args[1:])
	}

	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing files")
	useTOML := fs.Bool("toml", false, "Write config.toml instead of config.json")
	fs.Parse(args)

	workspaceRoot := filepath.Dir(configPath)
	if workspaceRoot == "." {
		var err error
		workspaceRoot, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}
	if *useTOML && filepath.Ext(configPath) != ".toml" {
		configPath = filepath.Join(workspaceRoot, "config.toml")
	}

	if _, err := os.Stat(configPath); err == nil && !*force {
		return fmt.Errorf("workspace already initialized (%s exists). Use --force to reinitialize", filepath.Base(configPath))
	}

	fmt.Println("Initializing resmirror workspace...")
	fmt.Println()

	dirs := []struct {
		path string
		desc string
	}{
		{"shared", "Mirror ledger"},
		{"library", "Asset index exported by the editor"},
	}

	for _, d := range dirs {
		dirPath := filepath.Join(workspaceRoot, d.path)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", d.path, err)
		}
		fmt.Printf("  Created: %s/\n", d.path)
	}

	if filepath.Ext(configPath) == ".toml" {
		if err := os.WriteFile(configPath, assets.ConfigTemplateTOML(), 0644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	} else {
		if err := config.WriteConfig(config.DefaultConfig(), configPath); err != nil {
			return err
		}
	}
	fmt.Printf("  Created: %s\n", filepath.Base(configPath))

	indexPath := filepath.Join(workspaceRoot, "library", "asset-index.json")
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := os.WriteFile(indexPath, []byte("[]\n"), 0644); err != nil {
			return fmt.Errorf("write asset index: %w", err)
		}
		fmt.Printf("  Created: library/asset-index.json\n")
	}

	gitignore := `# resmirror workspace
shared/mirror_ledger.json
build/
*.mpq

# OS files
.DS_Store
Thumbs.db
`
	gitignorePath := filepath.Join(workspaceRoot, ".gitignore")
	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) || *force {
		if err := os.WriteFile(gitignorePath, []byte(gitignore), 0644); err != nil {
			return fmt.Errorf("write .gitignore: %w", err)
		}
		fmt.Printf("  Created: .gitignore\n")
	}

	fmt.Println()
	fmt.Println("✓ Workspace initialized!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Edit %s (build.start_scene, asset_db)\n", filepath.Base(configPath))
	fmt.Println("  2. Export the editor asset database to library/asset-index.json")
	fmt.Println("  3. Run 'resmirror prebuild' and 'resmirror postbuild --md5-cache' around each release build")

	return nil
}

// InitDB loads the asset index into the configured SQL asset table
func InitDB(ctx context.Context, configPath string, args []string) error {
	fs := flag.NewFlagSet("init db", flag.ExitOnError)
	from := fs.String("from", "", "Asset index to load (default: library/asset-index.json)")
	fs.Parse(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	index := *from
	if index == "" {
		index = filepath.Join(cfg.WorkspaceRoot, "library", "asset-index.json")
	}

	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║        Seeding asset database            ║")
	fmt.Println("╚══════════════════════════════════════════╝")
	fmt.Println()

	rows, err := assetdb.ReadIndex(index)
	if err != nil {
		return err
	}

	db := cfg.ResolvedAssetDB()
	n, err := assetdb.Seed(ctx, db, rows)
	if err != nil {
		return fmt.Errorf("seed %s database: %w", db.Driver, err)
	}

	fmt.Printf("  ✓ Loaded %d asset(s) into %s table %s\n", n, db.Driver, db.Table)
	return nil
}

// Copyright (c) 2025 Resmirror

package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/assetdb"
	"resmirror-cli/internal/config"
	"resmirror-cli/internal/ledger"
	"resmirror-cli/internal/manifest"
	"resmirror-cli/internal/pack"
)

// PostBuild mirrors internal resources and the start scene once a build finished
func PostBuild(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("postbuild", flag.ExitOnError)
	bf := addBuildFlags(fs, cfg)
	skipLedger := fs.Bool("skip-ledger", false, "Do not update the mirror ledger")
	fs.Parse(args)

	opts := bf.options()

	// Gate before touching the manifest or the asset database
	if !newHook(cfg, nil, log).PostBuildGate(opts) {
		fmt.Printf("Post-build skipped (platform=%s debug=%v md5-cache=%v)\n", opts.Platform, opts.Debug, opts.MD5Cache)
		return nil
	}

	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║        Resmirror Post-build              ║")
	fmt.Println("╚══════════════════════════════════════════╝")
	fmt.Println()

	m, err := manifest.Load(bf.manifestPath(cfg))
	if err != nil {
		return err
	}
	for _, w := range m.Validate() {
		log.Debug().Msg(w)
	}

	hook := newHook(cfg, nil, log)
	src, err := assetdb.Open(ctx, cfg.ResolvedAssetDB())
	if err != nil {
		// Same as a failed query: internal resources are skipped, the start scene is still mirrored
		log.Warn().Err(err).Str("driver", cfg.AssetDB.Driver).Msg("asset database unavailable")
	} else {
		defer src.Close()
		hook.Query = src
	}

	res, err := hook.PostBuild(ctx, opts, m)
	if err != nil {
		return fmt.Errorf("post-build: %w", err)
	}

	if res.QueryErr != nil {
		fmt.Printf("Warning: internal resources skipped: %v\n", res.QueryErr)
	} else {
		fmt.Printf("Internal resources: %d copied, %d already mirrored\n", res.Internal.Copied, res.Internal.Skipped)
	}
	if opts.StartScene != "" {
		fmt.Printf("Start scene:        %d copied, %d already mirrored\n", res.StartScene.Copied, res.StartScene.Skipped)
	}

	if !*skipLedger {
		l, err := ledger.Load(cfg.GetLedgerPath())
		if err != nil {
			return err
		}
		l.Platform = opts.Platform
		l.Record(res.Tasks, time.Now())
		if err := l.Save(cfg.GetLedgerPath()); err != nil {
			return err
		}
	}

	if cfg.Pack.AfterMirror {
		out := cfg.GetPackPath(opts.Dest)
		count, err := pack.Archive(hook.SecondaryRoot(opts.Dest), cfg.Build.SecondaryDir, out)
		if err != nil {
			return fmt.Errorf("pack: %w", err)
		}
		if count > 0 {
			fmt.Printf("Packed %d file(s) into %s\n", count, out)
		}
	}

	fmt.Println()
	fmt.Printf("Mirrored into %s\n", hook.SecondaryRoot(opts.Dest))

	return nil
}

// Copyright (c) 2025 Resmirror

package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"resmirror-cli/internal/assetdb"
	"resmirror-cli/internal/closure"
	"resmirror-cli/internal/config"
	"resmirror-cli/internal/manifest"
	"resmirror-cli/internal/mirror"
)

// Plan prints what a post-build would mirror without copying anything
func Plan(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	bf := addBuildFlags(fs, cfg)
	roots := fs.String("roots", "", "Comma separated uuids to plan instead of the configured root sets")
	fs.Parse(args)

	m, err := manifest.Load(bf.manifestPath(cfg))
	if err != nil {
		return err
	}
	for _, w := range m.Validate() {
		fmt.Printf("Warning: %s\n", w)
	}

	hook := newHook(cfg, nil, log)
	exec := mirror.NewExecutor(mirror.OSFS{}, hook.PrimaryRoot(*bf.dest), hook.SecondaryRoot(*bf.dest), log)

	type rootSet struct {
		name  string
		uuids []string
	}
	var sets []rootSet

	if *roots != "" {
		sets = append(sets, rootSet{"roots", splitList(*roots)})
	} else {
		src, err := assetdb.Open(ctx, cfg.ResolvedAssetDB())
		if err != nil {
			fmt.Printf("Warning: asset database unavailable: %v\n", err)
		} else {
			uuids, err := src.QueryAssets(ctx, cfg.Build.InternalPattern)
			src.Close()
			if err != nil {
				fmt.Printf("Warning: query %s: %v\n", cfg.Build.InternalPattern, err)
			} else {
				sets = append(sets, rootSet{cfg.Build.InternalPattern, uuids})
			}
		}
		if *bf.startScene != "" {
			sets = append(sets, rootSet{"start scene " + *bf.startScene, []string{*bf.startScene}})
		}
	}

	total := 0
	pending := 0
	for _, set := range sets {
		tasks := exec.Plan(m, closure.Resolve(m, set.uuids))
		fmt.Printf("=== %s (%d root(s), %d file(s)) ===\n", set.name, len(set.uuids), len(tasks))
		for _, task := range tasks {
			status := "pending"
			if (mirror.OSFS{}).Exists(task.Dst) {
				status = "mirrored"
			} else {
				pending++
			}
			fmt.Printf("  [%s] %s\n", status, task.Ref.RelPath())
		}
		fmt.Println()
		total += len(tasks)
	}

	fmt.Printf("Total: %d file(s), %d pending\n", total, pending)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

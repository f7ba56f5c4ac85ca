// Copyright (c) 2025 Resmirror
// Resmirror mirrors engine internal resources into a secondary build tree.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"resmirror-cli/internal/commands"
	"resmirror-cli/internal/config"
	"resmirror-cli/internal/logging"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	// Parse global flags
	configPath := ""
	var argsWithoutGlobal []string

	i := 1
	for i < len(os.Args) {
		arg := os.Args[i]

		if arg == "--config" || arg == "-c" {
			if i+1 < len(os.Args) {
				configPath = os.Args[i+1]
				i += 2
				continue
			}
			fmt.Println("Error: --config requires a value")
			os.Exit(1)
		}
		if strings.HasPrefix(arg, "--config=") {
			configPath = strings.TrimPrefix(arg, "--config=")
			i++
			continue
		}

		argsWithoutGlobal = append(argsWithoutGlobal, arg)
		i++
	}

	if len(argsWithoutGlobal) == 0 {
		printUsage()
		os.Exit(0)
	}

	cmd := argsWithoutGlobal[0]
	subArgs := argsWithoutGlobal[1:]

	// Handle help and version before loading config
	switch cmd {
	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)
	case "version", "-v", "--version":
		fmt.Printf("resmirror version %s\n", version)
		os.Exit(0)
	case "init":
		if configPath == "" {
			configPath = "./config.json"
		}
		if err := commands.Init(configPath, subArgs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'resmirror init' to create a workspace.\n")
		os.Exit(1)
	}

	log := logging.New(cfg.Log)
	log.Debug().Str("config", cfg.ConfigPath).Str("command", cmd).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	var cmdErr error
	switch cmd {
	case "prebuild":
		cmdErr = commands.PreBuild(ctx, cfg, log, subArgs)
	case "postbuild":
		cmdErr = commands.PostBuild(ctx, cfg, log, subArgs)
	case "plan":
		cmdErr = commands.Plan(ctx, cfg, log, subArgs)
	case "pack":
		cmdErr = commands.Pack(cfg, subArgs)
	case "status":
		cmdErr = commands.Status(cfg, subArgs)
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

// defaultConfigPath prefers config.json and falls back to config.toml
func defaultConfigPath() string {
	if _, err := os.Stat("config.json"); os.IsNotExist(err) {
		if _, err := os.Stat("config.toml"); err == nil {
			return "./config.toml"
		}
	}
	return "./config.json"
}

func printUsage() {
	fmt.Println(`Resmirror - build output resource mirror

Usage: resmirror [global-flags] <command> [command-flags]

Global Flags:
  --config <path>    Path to config.json or config.toml (default: ./config.json)

Commands:
  init               Initialize a new resmirror workspace
  init db            Load library/asset-index.json into the mysql or sqlite asset table
  prebuild           Clear res/ and res_internal/ before a release build
  postbuild          Mirror internal resources and the start scene after a build
  plan               Show what postbuild would mirror without copying
  pack               Package res_internal/ into an MPQ archive
  status             Show the mirror ledger and missing files
  version            Show version information
  help               Show this help message

Build Flags (prebuild, postbuild, plan):
  --platform <name>      Platform being built (default: build.target_platform)
  --debug                Build is a debug build
  --md5-cache            Build uses MD5 cache file names
  --dest <dir>           Build output directory (default: build.dest)
  --start-scene <uuid>   Start scene (default: build.start_scene)
  --manifest <file>      Build results (default: <dest>/build-results.json)

Examples:
  resmirror init                               # Create config.json in current directory
  resmirror init --toml                        # Create config.toml instead
  resmirror prebuild --platform wechatgame
  resmirror postbuild --platform wechatgame --md5-cache
  resmirror plan --roots 2d2f792f-a40c-49bb-a189-ed176a246e49
  resmirror pack --output dist/res_internal.mpq
  resmirror status -v

Environment Variables:
  START_SCENE_UUID       Start scene used by the default config
  MYSQL_HOST             MySQL host (default: 127.0.0.1)
  MYSQL_PORT             MySQL port (default: 3306)
  RESMIRROR_LOG_LEVEL    trace, debug, info, warn or error
  RESMIRROR_LOG_NOCOLOR  Disable colored console output
  RESMIRROR_LOG_JSON     Log JSON lines instead of console output`)
}

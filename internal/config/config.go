// Copyright (c) 2025 Resmirror

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"resmirror-cli/internal/logging"
)

// Asset database drivers
const (
	DriverIndex  = "index"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config is the main resmirror configuration
type Config struct {
	// Computed paths
	WorkspaceRoot string `json:"-" toml:"-"` // Directory containing the config file
	ConfigPath    string `json:"-" toml:"-"` // Path to this config file

	Build   BuildConfig    `json:"build" toml:"build"`
	AssetDB AssetDBConfig  `json:"asset_db" toml:"asset_db"`
	Pack    PackConfig     `json:"pack" toml:"pack"`
	Log     logging.Config `json:"log" toml:"log"`
}

// BuildConfig describes the editor build being hooked
type BuildConfig struct {
	TargetPlatform  string `json:"target_platform" toml:"target_platform"`
	Dest            string `json:"dest" toml:"dest"`                   // Build output directory
	PrimaryDir      string `json:"primary_dir" toml:"primary_dir"`     // Tree written by the build
	SecondaryDir    string `json:"secondary_dir" toml:"secondary_dir"` // Tree mirrored into
	Manifest        string `json:"manifest" toml:"manifest"`           // Build results written by the editor
	StartScene      string `json:"start_scene" toml:"start_scene"`
	InternalPattern string `json:"internal_pattern" toml:"internal_pattern"`
}

// AssetDBConfig selects where asset database queries are answered
type AssetDBConfig struct {
	Driver   string `json:"driver" toml:"driver"` // index, mysql or sqlite
	Host     string `json:"host" toml:"host"`
	Port     string `json:"port" toml:"port"`
	User     string `json:"user" toml:"user"`
	Password string `json:"password" toml:"password"`
	Name     string `json:"name" toml:"name"`
	Path     string `json:"path" toml:"path"` // index file or sqlite database
	Table    string `json:"table" toml:"table"`
}

// PackConfig holds archive output settings
type PackConfig struct {
	Output      string `json:"output" toml:"output"`
	AfterMirror bool   `json:"after_mirror" toml:"after_mirror"`
}

// Load loads and parses the config file, expanding environment variables.
// Files ending in .toml are decoded as TOML, everything else as JSON.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables before decoding
	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		meta, err := toml.Decode(expanded, &cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config: unknown keys %v", undecoded)
		}
	} else {
		if err := json.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Set computed paths
	cfg.ConfigPath = absPath
	cfg.WorkspaceRoot = filepath.Dir(absPath)

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnvVars expands ${VAR} and ${VAR:-default} patterns
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}

// applyDefaults sets default values for unset fields
func (c *Config) applyDefaults() {
	if c.Build.TargetPlatform == "" {
		c.Build.TargetPlatform = "wechatgame"
	}
	if c.Build.Dest == "" {
		c.Build.Dest = filepath.Join("build", c.Build.TargetPlatform)
	}
	if c.Build.PrimaryDir == "" {
		c.Build.PrimaryDir = "res"
	}
	if c.Build.SecondaryDir == "" {
		c.Build.SecondaryDir = "res_internal"
	}
	if c.Build.InternalPattern == "" {
		c.Build.InternalPattern = "db://internal/resources/**/*"
	}

	if c.AssetDB.Driver == "" {
		c.AssetDB.Driver = DriverIndex
	}
	switch c.AssetDB.Driver {
	case DriverMySQL:
		if c.AssetDB.Host == "" {
			c.AssetDB.Host = getEnvOrDefault("MYSQL_HOST", "127.0.0.1")
		}
		if c.AssetDB.Port == "" {
			c.AssetDB.Port = getEnvOrDefault("MYSQL_PORT", "3306")
		}
		if c.AssetDB.User == "" {
			c.AssetDB.User = "root"
		}
		if c.AssetDB.Name == "" {
			c.AssetDB.Name = "assetdb"
		}
	case DriverIndex:
		if c.AssetDB.Path == "" {
			c.AssetDB.Path = filepath.Join("library", "asset-index.json")
		}
	}
	if c.AssetDB.Table == "" {
		c.AssetDB.Table = "assets"
	}

	if c.Pack.Output == "" {
		c.Pack.Output = "res_internal.mpq"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks values that have no usable default
func (c *Config) Validate() error {
	switch c.AssetDB.Driver {
	case DriverIndex, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown asset_db.driver %q", c.AssetDB.Driver)
	}
	if c.AssetDB.Driver == DriverSQLite && c.AssetDB.Path == "" {
		return fmt.Errorf("config: asset_db.path is required for the sqlite driver")
	}
	if strings.TrimSpace(c.Build.PrimaryDir) == strings.TrimSpace(c.Build.SecondaryDir) {
		return fmt.Errorf("config: build.primary_dir and build.secondary_dir must differ")
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Path helpers - relative paths resolve against the workspace root

// Resolve makes p absolute relative to the workspace root
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkspaceRoot, p)
}

// GetDestPath returns the build output directory
func (c *Config) GetDestPath() string {
	return c.Resolve(c.Build.Dest)
}

// GetManifestPath returns the build results path, defaulting to build-results.json in dest
func (c *Config) GetManifestPath() string {
	if c.Build.Manifest != "" {
		return c.Resolve(c.Build.Manifest)
	}
	return DefaultManifestPath(c.GetDestPath())
}

// DefaultManifestPath returns where the editor writes build results inside dest
func DefaultManifestPath(dest string) string {
	return filepath.Join(dest, "build-results.json")
}

// GetSharedPath returns the path to shared directory
func (c *Config) GetSharedPath() string {
	return filepath.Join(c.WorkspaceRoot, "shared")
}

// GetLedgerPath returns the path of the mirror ledger
func (c *Config) GetLedgerPath() string {
	return filepath.Join(c.GetSharedPath(), "mirror_ledger.json")
}

// GetPackPath returns the archive output path for a dest directory
func (c *Config) GetPackPath(dest string) string {
	if filepath.IsAbs(c.Pack.Output) {
		return c.Pack.Output
	}
	return filepath.Join(dest, c.Pack.Output)
}

// ResolvedAssetDB returns the asset database config with file paths resolved
func (c *Config) ResolvedAssetDB() AssetDBConfig {
	db := c.AssetDB
	db.Path = c.Resolve(db.Path)
	return db
}

// DefaultConfig returns a config with sensible defaults for scaffolding
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			TargetPlatform:  "wechatgame",
			Dest:            "build/wechatgame",
			PrimaryDir:      "res",
			SecondaryDir:    "res_internal",
			StartScene:      "${START_SCENE_UUID}",
			InternalPattern: "db://internal/resources/**/*",
		},
		AssetDB: AssetDBConfig{
			Driver: DriverIndex,
			Path:   "library/asset-index.json",
			Table:  "assets",
		},
		Pack: PackConfig{
			Output: "res_internal.mpq",
		},
		Log: logging.Config{
			Level: "info",
		},
	}
}

// WriteConfig writes a config to a file
func WriteConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskbase/taskbase.toml or OS-specific config dir)
// 3. Project config file (taskbase.toml or .taskbase.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Sources maps every field name from Fields to the layer that last set it.
func LoadWithSources(fs *pflag.FlagSet, args []string) (*ConfigWithSources, error) {
	cfg := &Config{}
	setDefaults(cfg)

	sources := make(map[string]ConfigSource, len(Fields()))
	for _, field := range Fields() {
		sources[field] = SourceDefault
	}
	var files []string

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		files = append(files, path)
	}

	// The project file overrides the user file.
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		files = append(files, path)
	}

	loadFromEnv(cfg, sources)

	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// loadConfigFile decodes a TOML file over cfg. Only keys present in the file
// change cfg or its recorded sources; unknown keys are an error.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, field := range Fields() {
		if md.IsDefined(field) && sources != nil {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.VaultDir = expandPath(cfg.VaultDir)
	cfg.SelectionFile = expandPath(cfg.SelectionFile)

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if cfg.VaultDir == "" {
		cfg.VaultDir = DefaultVaultDir
	}
	if !filepath.IsAbs(cfg.VaultDir) {
		cfg.VaultDir = filepath.Join(cfg.ProjectRoot, cfg.VaultDir)
	}
	if cfg.SelectionFile != "" && !filepath.IsAbs(cfg.SelectionFile) {
		cfg.SelectionFile = filepath.Join(cfg.ProjectRoot, cfg.SelectionFile)
	}

	if cfg.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", cfg.DebounceMS)
	}
	if cfg.ScanWorkers < 0 {
		return fmt.Errorf("scan_workers must not be negative, got %d", cfg.ScanWorkers)
	}
	if _, err := language.Parse(cfg.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}
	return nil
}

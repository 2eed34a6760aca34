package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	stackederrors "stacked.dev/stacked/internal/errors"
)

// FileName is the configuration file name at the workspace root
const FileName = ".stacked.toml"

const (
	keyMainBranch = "mainBranch"
	keyDraft      = "draft"
	keyRemote     = "remote"
)

// Config is the repository configuration
type Config struct {
	MainBranch string `toml:"mainBranch"`
	Draft      bool   `toml:"draft"`
	Remote     string `toml:"remote"`
}

// Default returns the configuration written on first run
func Default() Config {
	return Config{
		MainBranch: "main",
		Draft:      true,
		Remote:     "origin",
	}
}

// Path returns the configuration path for a workspace root
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, FileName)
}

// Load reads the configuration for repoRoot. A missing file is created with
// defaults and reported as *errors.ConfigCreatedError.
func Load(repoRoot string) (*Config, error) {
	path := Path(repoRoot)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := Write(path, Default()); err != nil {
			return nil, err
		}
		return nil, &stackederrors.ConfigCreatedError{Path: path}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	defaults := Default()
	v.SetDefault(keyMainBranch, defaults.MainBranch)
	v.SetDefault(keyDraft, defaults.Draft)
	v.SetDefault(keyRemote, defaults.Remote)

	if err := v.ReadInConfig(); err != nil {
		return nil, &stackederrors.ConfigError{
			Path:   path,
			Issues: []string{fmt.Sprintf("failed to parse: %v", err)},
		}
	}

	cfg := &Config{
		MainBranch: strings.TrimSpace(v.GetString(keyMainBranch)),
		Draft:      v.GetBool(keyDraft),
		Remote:     strings.TrimSpace(v.GetString(keyRemote)),
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate(path string) error {
	var issues []string
	if c.MainBranch == "" {
		issues = append(issues, keyMainBranch+": must not be empty")
	}
	if c.Remote == "" {
		issues = append(issues, keyRemote+": must not be empty")
	}
	if strings.ContainsAny(c.MainBranch, " \t~^:?*[\\") {
		issues = append(issues, fmt.Sprintf("%s: %q is not a valid branch name", keyMainBranch, c.MainBranch))
	}
	if len(issues) > 0 {
		return &stackederrors.ConfigError{Path: path, Issues: issues}
	}
	return nil
}

// Write saves cfg as TOML at path
func Write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

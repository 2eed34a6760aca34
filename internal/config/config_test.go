package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/stacked/internal/config"
	stackederrors "stacked.dev/stacked/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o600))
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("missing file writes defaults and asks for a re-run", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := config.Load(dir)
		require.Nil(t, cfg)
		require.ErrorIs(t, err, stackederrors.ErrConfigCreated)

		data, err := os.ReadFile(filepath.Join(dir, config.FileName))
		require.NoError(t, err)
		require.Regexp(t, `mainBranch = ['"]main['"]`, string(data))
		require.Contains(t, string(data), "draft = true")

		cfg, err = config.Load(dir)
		require.NoError(t, err)
		require.Equal(t, config.Default(), *cfg)
	})

	t.Run("reads values", func(t *testing.T) {
		dir := writeConfig(t, "mainBranch = \"trunk\"\ndraft = false\nremote = \"upstream\"\n")
		cfg, err := config.Load(dir)
		require.NoError(t, err)
		require.Equal(t, config.Config{MainBranch: "trunk", Draft: false, Remote: "upstream"}, *cfg)
	})

	t.Run("missing keys fall back to defaults", func(t *testing.T) {
		dir := writeConfig(t, "mainBranch = \"develop\"\nunknown = 3\n")
		cfg, err := config.Load(dir)
		require.NoError(t, err)
		require.Equal(t, "develop", cfg.MainBranch)
		require.True(t, cfg.Draft)
		require.Equal(t, "origin", cfg.Remote)
	})

	t.Run("empty mainBranch is rejected", func(t *testing.T) {
		dir := writeConfig(t, "mainBranch = \"  \"\n")
		_, err := config.Load(dir)
		require.ErrorIs(t, err, stackederrors.ErrInvalidConfig)
		require.Contains(t, err.Error(), "mainBranch: must not be empty")
	})

	t.Run("malformed TOML is a config error", func(t *testing.T) {
		dir := writeConfig(t, "mainBranch = \n")
		_, err := config.Load(dir)
		require.ErrorIs(t, err, stackederrors.ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.Config
		issues []string
	}{
		{name: "defaults are valid", cfg: config.Default()},
		{
			name:   "every problem is listed",
			cfg:    config.Config{},
			issues: []string{"mainBranch: must not be empty", "remote: must not be empty"},
		},
		{
			name:   "branch names with spaces",
			cfg:    config.Config{MainBranch: "my main", Remote: "origin"},
			issues: []string{`mainBranch: "my main" is not a valid branch name`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate("cfg.toml")
			if len(tt.issues) == 0 {
				require.NoError(t, err)
				return
			}
			var cfgErr *stackederrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tt.issues, cfgErr.Issues)
		})
	}
}

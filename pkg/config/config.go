// Package config loads dotsync settings: embedded defaults overlaid
// with an optional .dotsync.toml at the dotfiles repository root.
package config

import (
	_ "embed"
	"errors"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	dserrors "github.com/arthur-debert/dotsync/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config holds the resolved settings for one run.
type Config struct {
	Backups BackupsConfig `koanf:"backups" toml:"backups"`
	Git     GitConfig     `koanf:"git" toml:"git"`
	Output  OutputConfig  `koanf:"output" toml:"output"`
}

// BackupsConfig controls the snapshot service.
type BackupsConfig struct {
	Retention int `koanf:"retention" toml:"retention"`
}

// GitConfig controls the version-control collaborator.
type GitConfig struct {
	Enabled bool `koanf:"enabled" toml:"enabled"`
}

// OutputConfig controls terminal rendering.
type OutputConfig struct {
	Color string `koanf:"color" toml:"color"`
}

// Load reads configuration for the repository at configPath (the
// .dotsync.toml file; it may be absent).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, dserrors.Wrap(err, dserrors.ErrConfigLoad, "failed to load default configuration")
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, dserrors.Wrapf(err, dserrors.ErrConfigParse, "failed to parse %s", configPath)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, dserrors.Wrap(err, dserrors.ErrConfigParse, "invalid configuration values")
	}
	if cfg.Backups.Retention < 1 {
		return nil, dserrors.Newf(dserrors.ErrConfigParse, "backups.retention must be at least 1, got %d", cfg.Backups.Retention)
	}
	switch cfg.Output.Color {
	case "auto", "always", "never":
	default:
		return nil, dserrors.Newf(dserrors.ErrConfigParse, "output.color must be auto, always or never, got %q", cfg.Output.Color)
	}
	return &cfg, nil
}

// DefaultContent returns the commented default configuration text.
func DefaultContent() []byte {
	return defaultConfig
}

// Render serializes a Config back to TOML, used by `manage init-config`
// to write a starter .dotsync.toml reflecting the effective settings.
func Render(cfg *Config) ([]byte, error) {
	data, err := gotoml.Marshal(cfg)
	if err != nil {
		return nil, dserrors.Wrap(err, dserrors.ErrInternal, "failed to serialize configuration")
	}
	return data, nil
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

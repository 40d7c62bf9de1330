// Package config loads icat defaults from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const relPath = "icat/config.toml"

// Config holds defaults that command-line flags override.
type Config struct {
	Legacy              bool   `koanf:"legacy"`
	Print               bool   `koanf:"print"`
	Width               string `koanf:"width"`
	Height              string `koanf:"height"`
	PreserveAspectRatio *bool  `koanf:"preserve_aspect_ratio"` // unset leaves the terminal default
	Type                string `koanf:"type"`

	Tmux             bool `koanf:"tmux"`              // force multiplexer passthrough
	AllowPassthrough bool `koanf:"allow_passthrough"` // run `tmux set -p allow-passthrough on`
	Stdout           bool `koanf:"stdout"`            // never write to the tty device
}

// DefaultPath returns $XDG_CONFIG_HOME/icat/config.toml, or the first
// existing match in $XDG_CONFIG_DIRS.
func DefaultPath() string {
	if path, err := xdg.SearchConfigFile(relPath); err == nil {
		return path
	}
	return filepath.Join(xdg.ConfigHome, relPath)
}

// Load reads path, or DefaultPath when path is empty. A missing default file
// yields the zero Config; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	path = expandPath(path)

	cfg := &Config{}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

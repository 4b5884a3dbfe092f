// Package config carries the tunable settings of the grading harness. The
// defaults match the grading containers; a YAML file at DefaultPath can
// override them per deployment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/refutils/go-refutils/referr"
)

// DefaultPath is consulted by Load when no explicit path is given.
const DefaultPath = "/etc/refutils.yml"

// Config holds harness-wide settings.
type Config struct {
	// DropUID / DropGID are the credentials workers downgrade to.
	DropUID int `yaml:"drop_uid"`
	DropGID int `yaml:"drop_gid"`

	// ResultPath is where group reports are persisted for the pipeline.
	ResultPath string `yaml:"result_path"`

	// SnapshotPath locates the captured user environment.
	SnapshotPath string `yaml:"snapshot_path"`

	// TimeoutSeconds bounds command execution when a check gives no
	// explicit timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Default returns the built-in settings used by the grading containers.
func Default() Config {
	return Config{
		DropUID:        9999,
		DropGID:        9999,
		ResultPath:     "/tmp/.test_results.json",
		SnapshotPath:   "/tmp/.user_environ",
		TimeoutSeconds: 10,
	}
}

// Timeout returns TimeoutSeconds as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) validate() error {
	if c.DropUID == 0 || c.DropGID == 0 {
		return referr.Configf("config: refusing to drop privileges to uid/gid 0")
	}
	if c.TimeoutSeconds <= 0 {
		return referr.Configf("config: timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// Load reads the YAML overrides at path, falling back to Default when the
// file does not exist.
func Load(fsys afero.Fs, path string) (Config, error) {
	cfg := Default()
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

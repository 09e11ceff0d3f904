package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. ALGOSIM_LOG_LEVEL
const EnvPrefix = "ALGOSIM"

// Setting keys
const (
	KeyCatalogDir    = "catalog_dir"
	KeyLogLevel      = "log_level"
	KeyNoColor       = "no_color"
	KeyAutoPlayDelay = "auto_play_delay"
	KeyTraceDir      = "trace_dir"
	KeyDefaultSim    = "default_simulator"
	KeyArchive       = "archive"
	KeyArchivePath   = "archive_path"
)

// Settings holds the CLI configuration
type Settings struct {
	CatalogDir       string        `yaml:"catalog_dir"`
	LogLevel         string        `yaml:"log_level"`
	NoColor          bool          `yaml:"no_color"`
	AutoPlayDelay    time.Duration `yaml:"auto_play_delay"`
	TraceDir         string        `yaml:"trace_dir,omitempty"`
	DefaultSimulator string        `yaml:"default_simulator,omitempty"`
	Archive          bool          `yaml:"archive"`
	ArchivePath      string        `yaml:"archive_path,omitempty"`
}

// Defaults returns the settings used when nothing is configured
func Defaults() Settings {
	return Settings{
		CatalogDir:    "simulators",
		LogLevel:      "info",
		AutoPlayDelay: 250 * time.Millisecond,
		Archive:       true,
	}
}

// Dir returns $HOME/.algosim
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".algosim"), nil
}

// DefaultPath returns the location of the config file
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolveArchivePath returns ArchivePath, or runs.db in Dir when unset
func (s Settings) ResolveArchivePath() (string, error) {
	if s.ArchivePath != "" {
		return s.ArchivePath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "runs.db"), nil
}

// NewViper builds a viper instance with defaults, ALGOSIM_* environment
// overrides and, when it exists, the config file at path.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault(KeyCatalogDir, d.CatalogDir)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyNoColor, d.NoColor)
	v.SetDefault(KeyAutoPlayDelay, d.AutoPlayDelay)
	v.SetDefault(KeyTraceDir, d.TraceDir)
	v.SetDefault(KeyDefaultSim, d.DefaultSimulator)
	v.SetDefault(KeyArchive, d.Archive)
	v.SetDefault(KeyArchivePath, d.ArchivePath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return v, nil
}

// FromViper extracts settings from v
func FromViper(v *viper.Viper) Settings {
	return Settings{
		CatalogDir:       v.GetString(KeyCatalogDir),
		LogLevel:         v.GetString(KeyLogLevel),
		NoColor:          v.GetBool(KeyNoColor),
		AutoPlayDelay:    v.GetDuration(KeyAutoPlayDelay),
		TraceDir:         v.GetString(KeyTraceDir),
		DefaultSimulator: v.GetString(KeyDefaultSim),
		Archive:          v.GetBool(KeyArchive),
		ArchivePath:      v.GetString(KeyArchivePath),
	}
}

// Save writes settings as YAML, creating the parent directory
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

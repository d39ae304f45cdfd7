// Package config handles loading erii.toml configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = "erii.toml"

const (
	UIMenu = "menu"
	UITUI  = "tui"
)

// Environment variables consulted after the config files.
const (
	EnvDataDir  = "ERII_DATA_DIR"
	EnvBackend  = "ERII_BACKEND"
	EnvLogLevel = "ERII_LOG_LEVEL"
	EnvUI       = "ERII_UI"
)

// ErrInvalid is returned when a loaded value is out of range.
var ErrInvalid = errors.New("invalid config")

var (
	backends   = []string{"sqlite", "text"}
	uiModes    = []string{UIMenu, UITUI}
	logLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	logFormats = []string{"text", "json", "logfmt"}
)

// Config represents the erii.toml configuration file.
type Config struct {
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
	UI      UI      `toml:"ui"`
}

// Storage selects where tasks are kept.
type Storage struct {
	// Backend is "sqlite" or "text".
	Backend string `toml:"backend"`
	// DataDir holds the database or task files. A leading "~/" is expanded.
	DataDir string `toml:"data-dir"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type UI struct {
	// Mode picks the interactive front end: "menu" or "tui".
	Mode string `toml:"mode"`
}

// Overrides carries values given on the command line. Empty fields are ignored.
type Overrides struct {
	DataDir  string
	Backend  string
	LogLevel string
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Storage: Storage{Backend: "sqlite", DataDir: dataDir},
		Log:     Log{Level: "warn", Format: "text"},
		UI:      UI{Mode: UIMenu},
	}, nil
}

// DefaultDataDir returns $XDG_DATA_HOME/erii, or ~/.local/share/erii.
func DefaultDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "erii"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "erii"), nil
}

// Load builds the configuration from the defaults, the global config file,
// the erii.toml in projectDir and the environment, in that order.
func Load(projectDir string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	for _, path := range []string{globalPath, filepath.Join(projectDir, ProjectFile)} {
		fileCfg, meta, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		mergeInto(cfg, fileCfg, meta)
	}

	if mode := strings.TrimSpace(os.Getenv(EnvUI)); mode != "" {
		cfg.UI.Mode = mode
	}
	err = cfg.Override(Overrides{
		DataDir:  os.Getenv(EnvDataDir),
		Backend:  os.Getenv(EnvBackend),
		LogLevel: os.Getenv(EnvLogLevel),
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Override applies command-line values on top of the loaded configuration
// and checks the result.
func (c *Config) Override(o Overrides) error {
	if v := strings.TrimSpace(o.DataDir); v != "" {
		c.Storage.DataDir = v
	}
	if v := strings.TrimSpace(o.Backend); v != "" {
		c.Storage.Backend = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		c.Log.Level = v
	}
	return c.finalize()
}

func (c *Config) finalize() error {
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.UI.Mode = strings.ToLower(c.UI.Mode)

	dataDir, err := expandHome(c.Storage.DataDir)
	if err != nil {
		return err
	}
	c.Storage.DataDir = dataDir

	if err := oneOf("storage.backend", c.Storage.Backend, backends); err != nil {
		return err
	}
	if err := oneOf("log.level", c.Log.Level, logLevels); err != nil {
		return err
	}
	if err := oneOf("log.format", c.Log.Format, logFormats); err != nil {
		return err
	}
	return oneOf("ui.mode", c.UI.Mode, uiModes)
}

func oneOf(key, value string, valid []string) error {
	if slices.Contains(valid, value) {
		return nil
	}
	return fmt.Errorf("%w: %s = %q (valid: %s)", ErrInvalid, key, value, strings.Join(valid, ", "))
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/")), nil
}

func globalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "erii", "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}

	return &cfg, meta, nil
}

// mergeInto copies every key defined in the file over dst.
func mergeInto(dst, src *Config, meta toml.MetaData) {
	mergeString(&dst.Storage.Backend, meta.IsDefined("storage", "backend"), src.Storage.Backend)
	mergeString(&dst.Storage.DataDir, meta.IsDefined("storage", "data-dir"), src.Storage.DataDir)
	mergeString(&dst.Log.Level, meta.IsDefined("log", "level"), src.Log.Level)
	mergeString(&dst.Log.Format, meta.IsDefined("log", "format"), src.Log.Format)
	mergeString(&dst.UI.Mode, meta.IsDefined("ui", "mode"), src.UI.Mode)
}

func mergeString(dst *string, defined bool, value string) {
	if defined {
		*dst = strings.TrimSpace(value)
	}
}

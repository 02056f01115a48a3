// Package config provides unified configuration loading for nback.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/sounds"
	"gopkg.in/yaml.v3"
)

// Config contains all nback configuration settings.
type Config struct {
	// Training contains the settings a block is played with.
	Training TrainingConfig `json:"training" yaml:"training"`

	// Generator contains settings for block generation.
	Generator GeneratorConfig `json:"generator" yaml:"generator"`

	// Backup contains settings for history backups.
	Backup BackupConfig `json:"backup" yaml:"backup"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// DataDir holds the history database, backups and the event log.
	// Empty means ~/.nback.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
}

// TrainingConfig holds the user's training settings.
type TrainingConfig struct {
	// Level is the span n the next block is played at, 1 to 10.
	Level int `json:"level" yaml:"level"`

	// Clues is the number of matches per modality in a block.
	Clues int `json:"clues" yaml:"clues"`

	// SoundSet names the spoken sound set.
	SoundSet string `json:"sound_set" yaml:"sound_set"`

	// Time is the step interval in milliseconds, 2000 to 3000.
	Time int `json:"time" yaml:"time"`

	// Feedback enables the correct/incorrect pulse after a confirmation.
	Feedback bool `json:"feedback" yaml:"feedback"`
}

// GeneratorConfig bounds block generation.
type GeneratorConfig struct {
	// MaxAttempts caps full generation attempts per block.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// BackupConfig configures history backups.
type BackupConfig struct {
	// MaxCount is how many backups are kept. 0 keeps all.
	MaxCount int `json:"max_count" yaml:"max_count"`

	// MaxAge removes backups older than this, e.g. "30d". Empty disables.
	MaxAge string `json:"max_age,omitempty" yaml:"max_age,omitempty"`

	// Compress writes gzip (v2) backups instead of plain JSON.
	Compress bool `json:"compress" yaml:"compress"`
}

// LoggingConfig configures nback's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to events.jsonl in the data directory.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Training: TrainingConfig{
			Level:    constants.DefaultLevel,
			Clues:    constants.DefaultClues,
			SoundSet: sounds.DefaultSet,
			Time:     constants.DefaultStepTime,
			Feedback: true,
		},
		Generator: GeneratorConfig{
			MaxAttempts: constants.DefaultMaxAttempts,
		},
		Backup: BackupConfig{
			MaxCount: constants.MaxBackupRotation,
			Compress: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDir returns ~/.nback.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".nback"), nil
}

// DefaultPath returns ~/.nback/config.yaml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.nback/config.yaml -> environment variables.
// The result is coerced into range before it is returned.
func Load() (*Config, error) {
	config := Default()

	configPath, err := DefaultPath()
	if err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)
	config.Coerce()

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.DataDir = expandEnvVars(config.DataDir)

	return config, nil
}

// SaveToFile writes the configuration as YAML. The file is written to a
// temporary sibling and renamed into place.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// ResolveDataDir returns DataDir, or ~/.nback when it is empty.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return DefaultDir()
}

// Coerce clamps training settings into range: level to [1,10], time to
// [2000,3000], non-positive clues to the default, unknown sound sets to the
// default set. It returns the names of the keys it changed.
func (c *Config) Coerce() []string {
	var changed []string
	t := &c.Training

	if t.Level < constants.MinLevel {
		t.Level = constants.MinLevel
		changed = append(changed, "training.level")
	} else if t.Level > constants.MaxLevel {
		t.Level = constants.MaxLevel
		changed = append(changed, "training.level")
	}

	if t.Time < constants.MinStepTime {
		t.Time = constants.MinStepTime
		changed = append(changed, "training.time")
	} else if t.Time > constants.MaxStepTime {
		t.Time = constants.MaxStepTime
		changed = append(changed, "training.time")
	}

	if t.Clues <= 0 {
		t.Clues = constants.DefaultClues
		changed = append(changed, "training.clues")
	}

	if !sounds.Known(t.SoundSet) {
		t.SoundSet = sounds.DefaultSet
		changed = append(changed, "training.sound_set")
	}

	if c.Generator.MaxAttempts <= 0 {
		c.Generator.MaxAttempts = constants.DefaultMaxAttempts
		changed = append(changed, "generator.max_attempts")
	}

	return changed
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	t := c.Training
	if t.Level < constants.MinLevel || t.Level > constants.MaxLevel {
		return fmt.Errorf("level must be between %d and %d, got %d", constants.MinLevel, constants.MaxLevel, t.Level)
	}

	if t.Clues <= 0 {
		return fmt.Errorf("clues must be positive, got %d", t.Clues)
	}

	if t.Time < constants.MinStepTime || t.Time > constants.MaxStepTime {
		return fmt.Errorf("time must be between %d and %d ms, got %d", constants.MinStepTime, constants.MaxStepTime, t.Time)
	}

	if !sounds.Known(t.SoundSet) {
		return fmt.Errorf("invalid sound set: %q (valid: %s)", t.SoundSet, strings.Join(sounds.Names(), ", "))
	}

	if c.Generator.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.Generator.MaxAttempts)
	}

	if c.Backup.MaxCount < 0 {
		return fmt.Errorf("backup max_count must be non-negative, got %d", c.Backup.MaxCount)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// Keys returns every settable key in dotted form, sorted.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key, e.g. "training.level".
func (c *Config) Get(key string) (any, error) {
	acc, ok := accessors[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return acc.get(c), nil
}

// Set parses value and assigns it to a dotted key. The result is not
// validated; callers run Validate before saving.
func (c *Config) Set(key, value string) error {
	acc, ok := accessors[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := acc.set(c, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

type accessor struct {
	get func(*Config) any
	set func(*Config, string) error
}

var accessors = map[string]accessor{
	"training.level": {
		get: func(c *Config) any { return c.Training.Level },
		set: intSetter(func(c *Config, n int) { c.Training.Level = n }),
	},
	"training.clues": {
		get: func(c *Config) any { return c.Training.Clues },
		set: intSetter(func(c *Config, n int) { c.Training.Clues = n }),
	},
	"training.time": {
		get: func(c *Config) any { return c.Training.Time },
		set: intSetter(func(c *Config, n int) { c.Training.Time = n }),
	},
	"training.sound_set": {
		get: func(c *Config) any { return c.Training.SoundSet },
		set: func(c *Config, v string) error { c.Training.SoundSet = v; return nil },
	},
	"training.feedback": {
		get: func(c *Config) any { return c.Training.Feedback },
		set: boolSetter(func(c *Config, b bool) { c.Training.Feedback = b }),
	},
	"generator.max_attempts": {
		get: func(c *Config) any { return c.Generator.MaxAttempts },
		set: intSetter(func(c *Config, n int) { c.Generator.MaxAttempts = n }),
	},
	"backup.max_count": {
		get: func(c *Config) any { return c.Backup.MaxCount },
		set: intSetter(func(c *Config, n int) { c.Backup.MaxCount = n }),
	},
	"backup.max_age": {
		get: func(c *Config) any { return c.Backup.MaxAge },
		set: func(c *Config, v string) error { c.Backup.MaxAge = v; return nil },
	},
	"backup.compress": {
		get: func(c *Config) any { return c.Backup.Compress },
		set: boolSetter(func(c *Config, b bool) { c.Backup.Compress = b }),
	},
	"logging.level": {
		get: func(c *Config) any { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = strings.ToLower(v); return nil },
	},
	"data_dir": {
		get: func(c *Config) any { return c.DataDir },
		set: func(c *Config, v string) error { c.DataDir = v; return nil },
	},
}

func intSetter(assign func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not an integer: %q", v)
		}
		assign(c, n)
		return nil
	}
}

func boolSetter(assign func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", v)
		}
		assign(c, b)
		return nil
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("NBACK_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Training.Level = n
		}
	}

	if v := os.Getenv("NBACK_CLUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Training.Clues = n
		}
	}

	if v := os.Getenv("NBACK_TIME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Training.Time = n
		}
	}

	if v := os.Getenv("NBACK_SOUND_SET"); v != "" {
		config.Training.SoundSet = v
	}

	if v := os.Getenv("NBACK_FEEDBACK"); v != "" {
		config.Training.Feedback = v == "true" || v == "1"
	}

	if v := os.Getenv("NBACK_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("NBACK_DATA_DIR"); v != "" {
		config.DataDir = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

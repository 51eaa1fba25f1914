package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig locates the log file. The terminal belongs to the UI, so all
// logging goes here.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// SyncConfig points the remote client at the backup and calendar APIs.
type SyncConfig struct {
	DriveBaseURL    string `mapstructure:"drive_base_url" yaml:"drive_base_url"`
	UploadBaseURL   string `mapstructure:"upload_base_url" yaml:"upload_base_url"`
	CalendarBaseURL string `mapstructure:"calendar_base_url" yaml:"calendar_base_url"`
	BackupFilename  string `mapstructure:"backup_filename" yaml:"backup_filename"`
	CalendarName    string `mapstructure:"calendar_name" yaml:"calendar_name"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// TimerConfig tunes the tick source.
type TimerConfig struct {
	TickMs int `mapstructure:"tick_ms" yaml:"tick_ms"`
}

// AppConfig is the top-level static configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Timer    TimerConfig    `mapstructure:"timer" yaml:"timer"`
}

// Timeout is the per-request deadline for remote calls.
func (c SyncConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// TickInterval is the period of the timer tick.
func (c TimerConfig) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

func appDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "timekeeper")
}

// DefaultConfigPath returns <config dir>/timekeeper/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(appDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(appDir(), "timekeeper.db"))
	v.SetDefault("log.file", filepath.Join(appDir(), "timekeeper.log"))
	v.SetDefault("sync.drive_base_url", "https://www.googleapis.com/drive/v3")
	v.SetDefault("sync.upload_base_url", "https://www.googleapis.com/upload/drive/v3")
	v.SetDefault("sync.calendar_base_url", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("sync.backup_filename", "timekeeper_app_data.json")
	v.SetDefault("sync.calendar_name", "timekeeper")
	v.SetDefault("sync.timeout_sec", 30)
	v.SetDefault("timer.tick_ms", 1000)
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	v := viper.New()
	setDefaults(v)
	cfg := &AppConfig{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads configuration from the YAML file at path. A missing file
// yields the defaults; unset keys fall back individually.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the timers and remote client cannot run with.
func (c *AppConfig) Validate() error {
	if c.Timer.TickMs <= 0 {
		return fmt.Errorf("timer.tick_ms must be positive, got %d", c.Timer.TickMs)
	}
	if c.Sync.TimeoutSec <= 0 {
		return fmt.Errorf("sync.timeout_sec must be positive, got %d", c.Sync.TimeoutSec)
	}
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	return nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("log", cfg.Log)
	v.Set("sync", cfg.Sync)
	v.Set("timer", cfg.Timer)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

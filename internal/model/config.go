package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServerConfig holds settings for the RPC server.
type ServerConfig struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string `mapstructure:"addr" yaml:"addr"`

	// JWTSecret is the HMAC key used to verify bearer tokens.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`

	// JWTIssuer is the required "iss" claim.
	JWTIssuer string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`

	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig selects the SQL dialect and connection string.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	ServerURL       string `mapstructure:"server_url" yaml:"server_url"`
	SnapshotPath    string `mapstructure:"snapshot_path" yaml:"snapshot_path"`
	ExportDir       string `mapstructure:"export_dir" yaml:"export_dir"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	// Level is a zerolog level name ("debug", "info", ...).
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `mapstructure:"format" yaml:"format"`

	// File, when set, receives log output instead of stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration shared by the
// server and the client binaries.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Client   ClientConfig   `mapstructure:"client" yaml:"client"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// EnvPrefix is the prefix for environment overrides, e.g.
// NOTES_DATABASE_DSN overrides database.dsn.
const EnvPrefix = "NOTES"

// DefaultConfigDir returns ~/.config/notekeeper.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notekeeper")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notekeeper/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := DefaultConfigDir()
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_issuer", "notekeeper")
	v.SetDefault("server.shutdown_timeout_sec", 10)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", filepath.Join(dir, "server.db"))
	v.SetDefault("client.server_url", "http://localhost:8080")
	v.SetDefault("client.snapshot_path", filepath.Join(dir, "snapshot.db"))
	v.SetDefault("client.export_dir", filepath.Join(dir, "export"))
	v.SetDefault("client.poll_interval_sec", 60)
	v.SetDefault("client.timeout_sec", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("display.theme", "default")
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies NOTES_* environment variables and the given flags, keyed by
// config key (e.g. "database.dsn"). Flags only override when set. A missing
// file yields the defaults.
func LoadConfig(path string, flags map[string]*pflag.Flag) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Client.PollIntervalSec < 0 {
		cfg.Client.PollIntervalSec = 0
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The JWT secret is never written.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	server := cfg.Server
	server.JWTSecret = ""
	v.Set("server", server)
	v.Set("database", cfg.Database)
	v.Set("client", cfg.Client)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

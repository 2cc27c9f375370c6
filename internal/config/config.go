package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/claude/freeplans/internal/docpipe"
	"github.com/claude/freeplans/internal/ingest/program"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Documents DocumentsConfig `yaml:"documents"`
	Parser    program.Options `yaml:"parser"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig enables the tsnet listener. Requests are then attributed
// to the Tailscale login of the caller.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type DocumentsConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Pipeline returns the document pipeline configuration.
func (d DocumentsConfig) Pipeline(log *slog.Logger) docpipe.Config {
	return docpipe.Config{MaxFileSize: d.MaxFileSize, Logger: log}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FREEPLANS_ and underscore-separated paths:
//
//	FREEPLANS_SERVER_HOST, FREEPLANS_SERVER_PORT,
//	FREEPLANS_DB_HOST, FREEPLANS_DB_PORT, FREEPLANS_DB_NAME,
//	FREEPLANS_DB_USER, FREEPLANS_DB_PASSWORD, FREEPLANS_DB_SSLMODE,
//	FREEPLANS_AUTH_API_KEY,
//	FREEPLANS_TAILSCALE_ENABLED, FREEPLANS_TAILSCALE_HOSTNAME,
//	FREEPLANS_DOCUMENTS_MAX_FILE_SIZE, FREEPLANS_PARSER_MIN_TEXT_LENGTH
//
// Parser thresholds left at zero take the built-in defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FREEPLANS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FREEPLANS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FREEPLANS_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FREEPLANS_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FREEPLANS_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FREEPLANS_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FREEPLANS_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FREEPLANS_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("FREEPLANS_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FREEPLANS_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("FREEPLANS_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("FREEPLANS_DOCUMENTS_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Documents.MaxFileSize = n
		}
	}
	if v := os.Getenv("FREEPLANS_PARSER_MIN_TEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parser.MinTextLength = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Documents.MaxFileSize <= 0 {
		c.Documents.MaxFileSize = docpipe.DefaultMaxFileSize
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "freeplans"
	}
	if c.Tailscale.Enabled && c.Tailscale.StateDir == "" {
		c.Tailscale.StateDir = "tsnet-state"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Parser.MinLineLength > 0 && c.Parser.MaxLineLength > 0 && c.Parser.MinLineLength >= c.Parser.MaxLineLength {
		return fmt.Errorf("parser.min_line_length must be below parser.max_line_length")
	}
	for name, w := range map[string]float64{
		"base":           c.Parser.Confidence.Base,
		"per_exercise":   c.Parser.Confidence.PerExercise,
		"exercise_cap":   c.Parser.Confidence.ExerciseCap,
		"table_bonus":    c.Parser.Confidence.TableBonus,
		"per_valid_name": c.Parser.Confidence.PerValidName,
		"valid_name_cap": c.Parser.Confidence.ValidNameCap,
		"fallback":       c.Parser.Confidence.Fallback,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("parser.confidence.%s must be within [0,1]", name)
		}
	}
	return nil
}

package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from config.toml.
const (
	EnvOrigin    = "TRIPX_ORIGIN"
	EnvDBPath    = "TRIPX_DB_PATH"
	EnvTimezone  = "TRIPX_TIMEZONE"
	EnvRateLimit = "TRIPX_RATE_LIMIT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Display  DisplayConfig  `toml:"display"`
}

// ServerConfig describes the trip-planning backend.
type ServerConfig struct {
	Origin    string   `toml:"origin"`
	Timeout   Duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit"` // requests per second, 0 disables limiting
	Burst     int      `toml:"burst"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DisplayConfig controls how dates are bucketed and printed.
type DisplayConfig struct {
	Timezone string `toml:"timezone"`
}

// Duration wraps [time.Duration] so it can be written as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Location resolves the display timezone, falling back to [time.Local].
func (d DisplayConfig) Location() *time.Location {
	if d.Timezone == "" || d.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to disk as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
//
// Variables already present in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from TRIPX_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvOrigin); v != "" {
		c.Server.Origin = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Display.Timezone = v
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvRateLimit, v)
		}
		c.Server.RateLimit = limit
	}
	return nil
}

// Validate checks the settings the client cannot run without.
func (c *Config) Validate() error {
	if c.Server.Origin == "" {
		return fmt.Errorf("%w: server.origin is required", ErrMissingConfig)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrMissingConfig)
	}
	return nil
}

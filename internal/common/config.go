package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Portal      PortalConfig   `toml:"portal"`
	Sessions    SessionsConfig `toml:"sessions"`
	Storage     StorageConfig  `toml:"storage"`
	Results     ResultsConfig  `toml:"results"`
	Callback    CallbackConfig `toml:"callback"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// PortalConfig contains everything needed to drive the job portal.
type PortalConfig struct {
	LoginURL  string `toml:"login_url"` // portal login page
	Username  string `toml:"username"`  // default credentials for unattended session recovery
	Password  string `toml:"password"`
	Secret    string `toml:"secret"` // shared secret for inbound request authorization (empty = auth disabled)
	UserAgent string `toml:"user_agent"`
	Headless  bool   `toml:"headless"`
	NoSandbox bool   `toml:"no_sandbox"`

	NavTimeout    time.Duration `toml:"nav_timeout"`    // bound on each navigation
	FormTimeout   time.Duration `toml:"form_timeout"`   // wait for login form to appear
	SubmitWait    time.Duration `toml:"submit_wait"`    // navigation race after submit
	TypeDelay     time.Duration `toml:"type_delay"`     // inter-keystroke delay
	LoginInterval time.Duration `toml:"login_interval"` // minimum spacing between login attempts
}

// SessionsConfig controls interactive browser session lifetimes.
type SessionsConfig struct {
	IdleTimeout   time.Duration `toml:"idle_timeout"`   // reclaim sessions idle longer than this
	SweepSchedule string        `toml:"sweep_schedule"` // cron expression for the idle sweep
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// ResultsConfig controls retention of stored job results.
type ResultsConfig struct {
	Retention     time.Duration `toml:"retention"`      // keep results this long
	PurgeSchedule string        `toml:"purge_schedule"` // cron expression for the retention purge
}

type CallbackConfig struct {
	Timeout time.Duration `toml:"timeout"` // outbound callback POST timeout
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// CookieTTL bounds how long cached session cookies are considered
// fresh. Fixed by design; a process restart always forces a fresh login
// on the first session-dependent request.
const CookieTTL = 20 * time.Hour

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in accipio.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Portal: PortalConfig{
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headless:      true,
			NoSandbox:     true,
			NavTimeout:    30 * time.Second,
			FormTimeout:   15 * time.Second,
			SubmitWait:    8 * time.Second,
			TypeDelay:     60 * time.Millisecond,
			LoginInterval: 5 * time.Second,
		},
		Sessions: SessionsConfig{
			IdleTimeout:   10 * time.Minute,
			SweepSchedule: "@every 1m",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Results: ResultsConfig{
			Retention:     7 * 24 * time.Hour,
			PurgeSchedule: "0 3 * * *",
		},
		Callback: CallbackConfig{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// An empty path skips file loading and applies env overrides to defaults.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ACCIPIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("ACCIPIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ACCIPIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if v := os.Getenv("ACCIPIO_PORTAL_LOGIN_URL"); v != "" {
		config.Portal.LoginURL = v
	}
	if v := os.Getenv("ACCIPIO_PORTAL_USERNAME"); v != "" {
		config.Portal.Username = v
	}
	if v := os.Getenv("ACCIPIO_PORTAL_PASSWORD"); v != "" {
		config.Portal.Password = v
	}
	if v := os.Getenv("ACCIPIO_SHARED_SECRET"); v != "" {
		config.Portal.Secret = v
	}
	if v := os.Getenv("ACCIPIO_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Portal.Headless = b
		}
	}

	if v := os.Getenv("ACCIPIO_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}

	if v := os.Getenv("ACCIPIO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// HasDefaultCredentials reports whether unattended session recovery is
// possible.
func (c *Config) HasDefaultCredentials() bool {
	return c.Portal.Username != "" && c.Portal.Password != ""
}

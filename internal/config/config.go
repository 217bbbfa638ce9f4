package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Backup     BackupConfig     `yaml:"backup"`
	Auth       AuthConfig       `yaml:"auth"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Notify     NotifyConfig     `yaml:"notify"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	CookieName    string `yaml:"cookie_name"`
	CookieSecure  bool   `yaml:"cookie_secure"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

type SMTPConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	AdminEmail string `yaml:"admin_email"`
	ReplyTo    string `yaml:"reply_to"`
	Brand      string `yaml:"brand"`
}

type NotifyConfig struct {
	QueueSize    int     `yaml:"queue_size"`
	MaxRetries   int     `yaml:"max_retries"`
	InitialDelay string  `yaml:"initial_delay"`
	MaxDelay     string  `yaml:"max_delay"`
	Backoff      float64 `yaml:"backoff"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type RateLimitConfig struct {
	Auth    Limit `yaml:"auth"`
	Booking Limit `yaml:"booking"`
}

type Limit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load reads the YAML config at configPath. A .env file, when present,
// is loaded first and ${VAR} references in the YAML are expanded, so
// secrets stay out of the config file.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expanded, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth jwt_secret is required")
	}
	if c.SMTP.Enabled {
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return errors.New("smtp enabled but host/from not set")
		}
		if c.SMTP.AdminEmail == "" {
			return errors.New("smtp enabled but admin_email not set")
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "mydienst"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5174
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 7 * 24
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "admtk"
	}
	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = "admin"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.Brand == "" {
		c.SMTP.Brand = "MyDienst"
	}
	if c.Notify.QueueSize == 0 {
		c.Notify.QueueSize = 128
	}
	if c.Notify.MaxRetries == 0 {
		c.Notify.MaxRetries = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.RateLimit.Auth.RPS == 0 {
		// the login endpoint allows 20 attempts per minute per client
		c.RateLimit.Auth.RPS = 20.0 / 60.0
		c.RateLimit.Auth.Burst = 20
	}
	if c.RateLimit.Booking.RPS == 0 {
		c.RateLimit.Booking.RPS = 100.0 / 60.0
		c.RateLimit.Booking.Burst = 100
	}
}

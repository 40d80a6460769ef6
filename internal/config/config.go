package config

import (
	"errors"
	"fmt"
	"os"

	"hotseat/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Business   BusinessConfig   `yaml:"business"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	CacheTTL int    `yaml:"cache_ttl"` // seconds
}

// BusinessConfig описывает календарь записи: рабочие часы (включительно),
// дневную квоту и закрытый список типов услуг.
type BusinessConfig struct {
	StartHour     int      `yaml:"start_hour"`
	LimitHour     int      `yaml:"limit_hour"`
	DailyCapacity int      `yaml:"daily_capacity"`
	Types         []string `yaml:"types"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
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

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен: берем только то, что есть
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
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

	if c.Business.StartHour < 0 || c.Business.StartHour > 23 {
		return fmt.Errorf("business start_hour %d out of range", c.Business.StartHour)
	}
	if c.Business.LimitHour < 0 || c.Business.LimitHour > 23 {
		return fmt.Errorf("business limit_hour %d out of range", c.Business.LimitHour)
	}
	if c.Business.StartHour > c.Business.LimitHour {
		return errors.New("business start_hour must not exceed limit_hour")
	}
	if c.Business.DailyCapacity <= 0 {
		return errors.New("business daily_capacity must be positive")
	}

	return ValidateTypes(c.Business.Types)
}

func ValidateTypes(types []string) error {
	if len(types) == 0 {
		return errors.New("at least one appointment type is required")
	}
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if t == "" {
			return errors.New("appointment type must not be empty")
		}
		if seen[t] {
			return fmt.Errorf("duplicate appointment type: %s", t)
		}
		seen[t] = true
	}
	return nil
}

// BusinessCalendar собирает календарь из конфига.
func (c *Config) BusinessCalendar() models.BusinessCalendar {
	return models.BusinessCalendar{
		StartHour:     c.Business.StartHour,
		LimitHour:     c.Business.LimitHour,
		DailyCapacity: c.Business.DailyCapacity,
		Types:         append([]string(nil), c.Business.Types...),
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "hotseat"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = models.DefaultCacheTTL
	}

	// Business defaults
	defaults := models.DefaultBusinessCalendar()
	if c.Business.StartHour == 0 && c.Business.LimitHour == 0 {
		c.Business.StartHour = defaults.StartHour
		c.Business.LimitHour = defaults.LimitHour
	}
	if c.Business.DailyCapacity == 0 {
		c.Business.DailyCapacity = defaults.DailyCapacity
	}
	if len(c.Business.Types) == 0 {
		c.Business.Types = defaults.Types
	}
}

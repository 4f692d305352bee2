package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		AnalyzeCron  string `yaml:"analyze_cron"`
		ForecastCron string `yaml:"forecast_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Forecast struct {
		Days         int `yaml:"days"`
		HistoryDays  int `yaml:"history_days"`
		VelocityDays int `yaml:"velocity_days"`
	} `yaml:"forecast"`
	Analysis struct {
		Workers int `yaml:"workers"`
	} `yaml:"analysis"`
	Proxy string `yaml:"proxy"`
}

// Path returns CONFIG_PATH or the default location.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_ANALYZE"); v != "" {
		cfg.Schedule.AnalyzeCron = v
	}
	if v := os.Getenv("CRON_FORECAST"); v != "" {
		cfg.Schedule.ForecastCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FORECAST_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("FORECAST_DAYS: %w", err)
		}
		cfg.Forecast.Days = days
	}

	// Defaults
	if cfg.Schedule.AnalyzeCron == "" {
		cfg.Schedule.AnalyzeCron = "0 0 8 * * *"
	}
	if cfg.Schedule.ForecastCron == "" {
		cfg.Schedule.ForecastCron = "0 0 6 * * 1"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_sentinel.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Forecast.Days == 0 {
		cfg.Forecast.Days = 30
	}
	if cfg.Forecast.HistoryDays == 0 {
		cfg.Forecast.HistoryDays = 180
	}
	if cfg.Forecast.VelocityDays == 0 {
		cfg.Forecast.VelocityDays = 30
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = 4
	}

	return cfg, nil
}

// TelegramEnabled reports whether both bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks value ranges and that the cron expressions parse.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Forecast.Days <= 0 {
		return fmt.Errorf("forecast.days must be positive")
	}
	if c.Forecast.HistoryDays < 60 {
		return fmt.Errorf("forecast.history_days must be at least 60")
	}
	if c.Forecast.VelocityDays <= 0 {
		return fmt.Errorf("forecast.velocity_days must be positive")
	}
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be positive")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, expr := range map[string]string{
		"schedule.analyze_cron":  c.Schedule.AnalyzeCron,
		"schedule.forecast_cron": c.Schedule.ForecastCron,
	} {
		if _, err := parser.Parse(expr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0 0 8 * * *", cfg.Schedule.AnalyzeCron)
	assert.Equal(t, "0 0 6 * * 1", cfg.Schedule.ForecastCron)
	assert.Equal(t, "data/stock_sentinel.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Forecast.Days)
	assert.Equal(t, 180, cfg.Forecast.HistoryDays)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  bot_token: file-token
  chat_id: "100"
forecast:
  days: 14
analysis:
  workers: 8
`), 0o644))

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("FORECAST_DAYS", "21")
	t.Setenv("SERVER_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "100", cfg.Telegram.ChatID)
	assert.Equal(t, 21, cfg.Forecast.Days)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("FORECAST_DAYS", "many")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"negative horizon", func(c *Config) { c.Forecast.Days = -1 }},
		{"short history", func(c *Config) { c.Forecast.HistoryDays = 30 }},
		{"no workers", func(c *Config) { c.Analysis.Workers = -2 }},
		{"bad cron", func(c *Config) { c.Schedule.AnalyzeCron = "every day" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

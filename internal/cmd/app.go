package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"StockSentinel/internal/config"
	"StockSentinel/internal/service"
	"StockSentinel/internal/store"
)

// app is the wiring shared by every command.
type app struct {
	cfg   *config.Config
	store store.Store
	svc   *service.Service
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// openStore opens the SQLite store, falling back to memory when requested.
func openStore(path string, fallback bool) (store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil && !fallback {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		if !fallback {
			return nil, err
		}
		log.Printf("[WARN] init sqlite store failed, using memory: %v", err)
		return store.NewMemoryStore(), nil
	}
	return st, nil
}

func newApp(fallback bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg.Database.SQLitePath, fallback)
	if err != nil {
		return nil, err
	}
	svc := service.New(service.Deps{
		Products:  st,
		Sales:     st,
		Forecasts: st,
		Alerts:    st,
	}, service.Options{
		ForecastDays: cfg.Forecast.Days,
		HistoryDays:  cfg.Forecast.HistoryDays,
		VelocityDays: cfg.Forecast.VelocityDays,
		Workers:      cfg.Analysis.Workers,
	})
	return &app{cfg: cfg, store: st, svc: svc}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Printf("[WARN] close store: %v", err)
	}
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/service"
	"StockSentinel/internal/store"
)

const sendRetries = 3

// Scheduler manages the cron jobs and answers chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Service      *service.Service
	Products     store.ProductStore
	Alerts       store.AlertStore
	Notifier     notifier.Notifier
	ForecastDays int
	Ctx          context.Context
	Now          func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *service.Service, products store.ProductStore, alerts store.AlertStore, n notifier.Notifier, forecastDays int) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Service:      svc,
		Products:     products,
		Alerts:       alerts,
		Notifier:     n,
		ForecastDays: forecastDays,
		Ctx:          ctx,
		Now:          time.Now,
	}
}

// RegisterAll registers the inventory analysis and forecast refresh jobs.
func (s *Scheduler) RegisterAll(analyzeCron, forecastCron string) error {
	if _, err := s.Cron.AddFunc(analyzeCron, s.analyzeTask); err != nil {
		return fmt.Errorf("register analyze task: %w", err)
	}
	if _, err := s.Cron.AddFunc(forecastCron, s.forecastTask); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunAnalyzeNow executes the analysis job immediately.
func (s *Scheduler) RunAnalyzeNow() {
	s.analyzeTask()
}

func (s *Scheduler) analyzeTask() {
	log.Println("[INFO] running inventory analysis")
	alerts, err := s.Service.AnalyzeInventory(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] inventory analysis: %v", err)
		s.trySend(notifier.FormatError("inventory analysis", err))
		return
	}
	if notifier.NeedsAttention(alerts) {
		s.trySend(notifier.FormatAlertDigest(alerts, s.Now()))
	}
}

func (s *Scheduler) forecastTask() {
	log.Println("[INFO] running forecast refresh")
	sum, err := s.Service.RefreshForecasts(s.Ctx, s.ForecastDays)
	if err != nil {
		log.Printf("[ERROR] forecast refresh: %v", err)
		s.trySend(notifier.FormatError("forecast refresh", err))
		return
	}
	if sum.Failed > 0 {
		s.trySend(fmt.Sprintf("⚠️ Forecast refresh: %d ok, %d skipped, %d failed", sum.Succeeded, sum.Skipped, sum.Failed))
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch fields[0] {
	case "/alerts":
		alerts, err := s.Alerts.ListUnresolvedAlerts(ctx)
		if err != nil {
			return notifier.FormatError("list alerts", err)
		}
		return notifier.FormatAlertDigest(alerts, s.Now())
	case "/analyze":
		alerts, err := s.Service.AnalyzeInventory(ctx)
		if err != nil {
			return notifier.FormatError("inventory analysis", err)
		}
		return notifier.FormatAlertDigest(alerts, s.Now())
	case "/forecast":
		if len(fields) < 2 {
			return "Usage: /forecast &lt;product id&gt;"
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Sprintf("Invalid product id %q", fields[1])
		}
		return s.forecastReply(ctx, id)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) forecastReply(ctx context.Context, id int64) string {
	res, err := s.Service.ForecastProduct(ctx, id, s.ForecastDays)
	if err != nil {
		return notifier.FormatError(fmt.Sprintf("forecast #%d (%s)", id, res.ErrorKind), err)
	}
	p, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		p = model.Product{ID: id, Name: res.ProductName}
	}
	return notifier.FormatForecast(p, res.Forecast, *res.Accuracy, res.Advisories)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockSentinel/internal/notifier"
	"StockSentinel/internal/scheduler"
	"StockSentinel/internal/server"
)

var runNow bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the HTTP API, scheduler and Telegram bot",
	RunE:  runServer,
}

func init() {
	runCmd.Flags().BoolVar(&runNow, "analyze-now", os.Getenv("RUN_ON_START") == "true", "run an inventory analysis on start")
	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	log.Println("[INFO] StockSentinel starting...")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if a.cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
		n = tn
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, a.svc, a.store, a.store, n, a.cfg.Forecast.Days)
	if err := sched.RegisterAll(a.cfg.Schedule.AnalyzeCron, a.cfg.Schedule.ForecastCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if runNow {
		log.Println("[INFO] running inventory analysis on start")
		go sched.RunAnalyzeNow()
	}

	srv := server.New(a.svc, a.store, a.store, a.store, a.store)
	log.Println("[INFO] StockSentinel is running. Press Ctrl+C to stop.")
	if err := srv.Listen(ctx, a.cfg.Server.Addr); err != nil {
		return err
	}
	log.Println("[INFO] StockSentinel stopped")
	return nil
}

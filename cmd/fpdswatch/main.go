package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/use-agent/fpdswatch/api"
	"github.com/use-agent/fpdswatch/config"
	"github.com/use-agent/fpdswatch/models"
	"github.com/use-agent/fpdswatch/monitor"
	"github.com/use-agent/fpdswatch/notify"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	slog.Info("fpdswatch starting",
		"agency", cfg.Monitor.AgencyName,
		"naics", cfg.Monitor.NAICSCode,
		"psc", cfg.Monitor.PSCCode,
		"daysBack", cfg.Monitor.DaysBack,
		"maxPages", cfg.Monitor.MaxPages,
		"stateFile", cfg.Monitor.StateFile,
		"schedule", cfg.Monitor.Schedule,
	)

	notifier := notify.New(cfg.Notify)
	mon := monitor.New(cfg, notifier)

	// No schedule: one run, exit. This is the scheduler-invokes-us
	// model (cron, CI job).
	if cfg.Monitor.Schedule == "" {
		outcome := mon.Run(context.Background())
		if outcome.Kind == models.OutcomeFailure {
			os.Exit(1)
		}
		return
	}

	runScheduled(cfg, mon)
}

// runScheduled runs the monitor on a cron schedule with the status
// HTTP server alongside, until a shutdown signal arrives.
func runScheduled(cfg *config.Config, mon *monitor.Monitor) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := c.AddFunc(cfg.Monitor.Schedule, func() {
		mon.Run(context.Background())
	}); err != nil {
		slog.Error("invalid schedule", "schedule", cfg.Monitor.Schedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	slog.Info("scheduler started", "schedule", cfg.Monitor.Schedule)

	startTime := time.Now()
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(mon, cfg, startTime),
	}
	go func() {
		slog.Info("status server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("status server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("status server forced shutdown", "error", err)
	}

	// Stop scheduling new runs and wait for an in-flight run to end.
	<-c.Stop().Done()
	slog.Info("fpdswatch stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

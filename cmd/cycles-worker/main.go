package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cycles/internal/config"
	"cycles/internal/game"
	"cycles/internal/ledger"
	"cycles/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		logger.Error("load tuning failed", "err", err)
		os.Exit(1)
	}
	store, err := ledger.Open(ctx, cfg.Ledger, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Error("ledger open failed", "ledger", cfg.Ledger, "err", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	if cfg.RunOnce {
		if err := balanceRun(ctx, cfg, tuning, store, logger); err != nil {
			logger.Error("balance run failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.Every)
	defer ticker.Stop()

	logger.Info("worker started", "every", cfg.Every.String(), "sim_seconds", cfg.SimSeconds)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := balanceRun(ctx, cfg, tuning, store, logger); err != nil {
				logger.Error("balance run failed", "err", err)
				continue
			}
		}
	}
}

// balanceRun plays one autopilot game on a fresh session and records its
// settlements and purchases under the session's run ID.
func balanceRun(ctx context.Context, cfg config.WorkerConfig, tuning game.Tuning, store ledger.Store, logger *slog.Logger) error {
	session, err := game.NewSession(tuning, logger)
	if err != nil {
		return err
	}
	var recorder *ledger.Recorder
	if store != nil {
		recorder = ledger.NewRecorder(store, session.RunID(), logger, 4096)
		session.Subscribe(recorder)
	}

	started := time.Now()
	rep, runErr := sim.Run(ctx, session, sim.Options{
		Seconds:   cfg.SimSeconds,
		Step:      cfg.SimStep,
		Autopilot: sim.NewAutopilot(logger),
	}, logger)

	var written, dropped int64
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return err
		}
		written, dropped = recorder.Written(), recorder.Dropped()
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("balance run complete",
		"run_id", rep.RunID,
		"sim_seconds", rep.Seconds,
		"amount", rep.Amount.String(),
		"total_cycles", rep.TotalCycles.String(),
		"rings", rep.Rings,
		"sockets", rep.Sockets,
		"purchases", len(rep.Purchases),
		"ledger_written", written,
		"ledger_dropped", dropped,
		"elapsed", time.Since(started).String(),
	)
	return nil
}

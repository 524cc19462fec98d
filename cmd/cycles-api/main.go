package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cycles/internal/api"
	"cycles/internal/config"
	"cycles/internal/game"
	"cycles/internal/ledger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
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

	hub := api.NewHub(logger)
	session, err := game.NewSession(tuning, logger, hub)
	if err != nil {
		logger.Error("session init failed", "err", err)
		os.Exit(1)
	}

	var recorder *ledger.Recorder
	if store != nil {
		recorder = ledger.NewRecorder(store, session.RunID(), logger, 1024)
		session.Subscribe(recorder)
	}

	go hub.Run(ctx)
	go func() {
		if err := session.Run(ctx, cfg.TickEvery); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session stopped", "err", err)
		}
	}()

	server := api.New(cfg, logger, session, store, hub)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("cycles api listening", "addr", cfg.Addr, "run_id", session.RunID(), "ledger", cfg.Ledger)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			logger.Error("ledger recorder close failed", "err", err)
		}
		logger.Info("ledger flushed", "written", recorder.Written(), "dropped", recorder.Dropped())
	}
	if store != nil {
		_ = store.Close()
	}
}

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cycles/internal/game"
)

func TestLoadAPIFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CYCLES_API_ADDR", "")
	t.Setenv("CYCLES_LEDGER", "")
	t.Setenv("CYCLES_TICK_EVERY", "")
	t.Setenv("CYCLES_LOG_LEVEL", "")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.TickEvery != 16*time.Millisecond || cfg.Ledger != LedgerNone {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("got level=%v want info", cfg.LogLevel)
	}
}

func TestLoadAPIFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CYCLES_TICK_EVERY", "bogus")
	t.Setenv("CYCLES_LEDGER", "SQLite")
	t.Setenv("CYCLES_LOG_LEVEL", "debug")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Ledger != LedgerSQLite || cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.TickEvery != 16*time.Millisecond {
		t.Fatalf("bad duration should fall back, got %s", cfg.TickEvery)
	}
}

func TestLoadAPIFromEnvRequiresDatabaseForPostgres(t *testing.T) {
	t.Setenv("CYCLES_LEDGER", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadAPIFromEnv(); err == nil {
		t.Fatalf("expected missing DATABASE_URL to fail")
	}
}

func TestLoadWorkerFromEnv(t *testing.T) {
	t.Setenv("CYCLES_LEDGER", "")
	t.Setenv("CYCLES_WORKER_RUN_ONCE", "true")
	t.Setenv("CYCLES_SIM_SECONDS", "120")
	t.Setenv("CYCLES_SIM_STEP", "")

	cfg, err := LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.RunOnce || cfg.SimSeconds != 120 || cfg.SimStep != 1.0/30 || cfg.Every != 10*time.Minute {
		t.Fatalf("got %+v", cfg)
	}

	t.Setenv("CYCLES_SIM_STEP", "-1")
	if _, err := LoadWorkerFromEnv(); err == nil {
		t.Fatalf("expected negative step to fail")
	}
}

func TestLoadTuning(t *testing.T) {
	got, err := LoadTuning("")
	if err != nil || got != game.DefaultTuning() {
		t.Fatalf("got=%+v err=%v want defaults", got, err)
	}

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("cycle_seconds: 2.5\ncascade_limit: 64\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = LoadTuning(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := game.DefaultTuning()
	want.CycleSeconds = 2.5
	want.CascadeLimit = 64
	if got != want {
		t.Fatalf("got=%+v want=%+v", got, want)
	}

	if err := os.WriteFile(path, []byte("starting_sockets: 0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTuning(path); !errors.Is(err, game.ErrInvalidTuning) {
		t.Fatalf("got=%v want ErrInvalidTuning", err)
	}
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	LedgerNone     = "none"
	LedgerPostgres = "postgres"
	LedgerSQLite   = "sqlite"
)

type APIConfig struct {
	Addr        string
	TickEvery   time.Duration
	Ledger      string
	DatabaseURL string
	SQLitePath  string
	TuningFile  string
	LogLevel    slog.Level
}

type WorkerConfig struct {
	Ledger      string
	DatabaseURL string
	SQLitePath  string
	TuningFile  string
	LogLevel    slog.Level
	Every       time.Duration
	RunOnce     bool
	SimSeconds  float64
	SimStep     float64
}

type CLIConfig struct {
	APIBaseURL string
	TuningFile string
	LogLevel   slog.Level
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("CYCLES_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:        addr,
		TickEvery:   envDurationDefault("CYCLES_TICK_EVERY", 16*time.Millisecond),
		Ledger:      envLedgerDefault(),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  envDefault("CYCLES_SQLITE_PATH", "./data/cycles.db"),
		TuningFile:  strings.TrimSpace(os.Getenv("CYCLES_TUNING_FILE")),
		LogLevel:    envLevelDefault("CYCLES_LOG_LEVEL", slog.LevelInfo),
	}
	if cfg.TickEvery <= 0 {
		return cfg, fmt.Errorf("CYCLES_TICK_EVERY must be > 0")
	}
	if cfg.Ledger == LedgerPostgres && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required for the postgres ledger")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		Ledger:      envLedgerDefault(),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  envDefault("CYCLES_SQLITE_PATH", "./data/cycles.db"),
		TuningFile:  strings.TrimSpace(os.Getenv("CYCLES_TUNING_FILE")),
		LogLevel:    envLevelDefault("CYCLES_LOG_LEVEL", slog.LevelInfo),
		Every:       envDurationDefault("CYCLES_WORKER_EVERY", 10*time.Minute),
		RunOnce:     envBoolDefault("CYCLES_WORKER_RUN_ONCE", false),
		SimSeconds:  envFloatDefault("CYCLES_SIM_SECONDS", 3600),
		SimStep:     envFloatDefault("CYCLES_SIM_STEP", 1.0/30),
	}
	if cfg.Ledger == LedgerPostgres && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required for the postgres ledger")
	}
	if cfg.SimSeconds <= 0 || cfg.SimStep <= 0 {
		return cfg, fmt.Errorf("CYCLES_SIM_SECONDS and CYCLES_SIM_STEP must be > 0")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("CYCLES_API_BASE_URL", "http://localhost:8080"), "/"),
		TuningFile: strings.TrimSpace(os.Getenv("CYCLES_TUNING_FILE")),
		LogLevel:   envLevelDefault("CYCLES_LOG_LEVEL", slog.LevelWarn),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envLevelDefault(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return level
}

func envLedgerDefault() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("CYCLES_LEDGER")))
	switch v {
	case LedgerPostgres, LedgerSQLite:
		return v
	default:
		return LedgerNone
	}
}

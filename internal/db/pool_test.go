package db

import (
	"testing"
	"time"
)

func TestLedgerPoolConfig(t *testing.T) {
	cfg, err := ledgerPoolConfig("postgres://cycles@localhost:5432/cycles")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != ApplicationName {
		t.Fatalf("got application_name=%q", got)
	}
	if cfg.MaxConns != 2 || cfg.MinConns != 0 {
		t.Fatalf("got max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.ConnConfig.ConnectTimeout != connectTimeout {
		t.Fatalf("got connect timeout=%v", cfg.ConnConfig.ConnectTimeout)
	}

	cfg, err = ledgerPoolConfig("postgres://cycles@localhost:5432/cycles?application_name=ops&connect_timeout=2")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != "ops" {
		t.Fatalf("url application_name overridden: %q", got)
	}
	if cfg.ConnConfig.ConnectTimeout != 2*time.Second {
		t.Fatalf("url connect_timeout overridden: %v", cfg.ConnConfig.ConnectTimeout)
	}
}

func TestLedgerPoolConfigRejectsBadURL(t *testing.T) {
	if _, err := ledgerPoolConfig("postgres://cycles@localhost:notaport/cycles"); err == nil {
		t.Fatalf("expected parse error")
	}
}

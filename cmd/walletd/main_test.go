package main

import (
	"log/slog"
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("RUSK_ADDR", " https://nodes.dusk.network ")
	t.Setenv("WALLET_DIR", "/var/lib/walletd")
	t.Setenv("CONNECT_TIMEOUT", "3s")
	cfg, err := configFromEnv()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.ruskAddr != "https://nodes.dusk.network" || cfg.walletDir != "/var/lib/walletd" || cfg.connectTimeout != 3*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.walletName != "wallet" || cfg.httpAddr != ":8080" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	t.Setenv("CONNECT_TIMEOUT", "soon")
	if _, err := configFromEnv(); err == nil {
		t.Fatalf("bad timeout accepted")
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"err":     slog.LevelError,
		"":        slog.LevelInfo,
	} {
		if got := parseLogLevel(in).Level(); got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
}

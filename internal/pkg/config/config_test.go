package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":          "secret",
		"UPSTREAM_AUTH_URL":   "http://auth.local",
		"UPSTREAM_USERS_URL":  "http://users.local",
		"UPSTREAM_CHATS_URL":  "http://chats.local",
		"UPSTREAM_UPLOAD_URL": "http://upload.local",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(baseEnv()))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Fatalf("expected 10s upstream timeout, got %s", cfg.Upstream.Timeout)
	}
	if cfg.SessionsDriver != DriverRedis || cfg.LedgerDriver != DriverMongo {
		t.Fatalf("unexpected drivers: %s/%s", cfg.SessionsDriver, cfg.LedgerDriver)
	}
	if !cfg.NeedsMongo() || !cfg.NeedsRedis() || !cfg.IsDevelopment() {
		t.Fatal("unexpected derived flags")
	}
	if cfg.SessionTTL != 720*time.Hour || cfg.DispatchWorkers != 8 {
		t.Fatalf("unexpected ttl/workers: %s/%d", cfg.SessionTTL, cfg.DispatchWorkers)
	}
}

func TestLoadFrom_MemoryDrivers(t *testing.T) {
	env := baseEnv()
	env["SESSIONS_DRIVER"] = "memory"
	env["LEDGER_DRIVER"] = "memory"
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.NeedsMongo() || cfg.NeedsRedis() {
		t.Fatal("memory drivers need no external store")
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	missing := baseEnv()
	delete(missing, "JWT_SECRET")
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(missing)); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}

	bad := baseEnv()
	bad["LEDGER_DRIVER"] = "redis"
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(bad))
	if err == nil || !strings.Contains(err.Error(), "LEDGER_DRIVER") {
		t.Fatalf("expected LEDGER_DRIVER error, got %v", err)
	}
}

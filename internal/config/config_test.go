package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	return path
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameMode != "vsai" || cfg.TickInterval() != 50*time.Millisecond {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RemoteEngineTimeout() != 10*time.Second || cfg.RemoteRetryDelay() != time.Second {
		t.Fatalf("remote defaults %+v", cfg)
	}
	if cfg.AutoRestart() != 0 {
		t.Fatalf("auto restart should default off")
	}
	if cfg.WSPingInterval() != 30*time.Second || cfg.RemoteEngineMaxConns != 4 || len(cfg.HTTPAllowedOrigins) != 0 {
		t.Fatalf("server defaults %+v", cfg)
	}
}

func TestLoadServerSettings(t *testing.T) {
	writeConfig(t, `
http_allowed_origins: ["viewer.example"]
ws_ping_interval_ms: 5000
`)
	t.Setenv("HTTP_ALLOWED_ORIGINS", " localhost:3000, ,*.example.test ")
	t.Setenv("REMOTE_ENGINE_MAX_CONNS", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.HTTPAllowedOrigins) != 2 || cfg.HTTPAllowedOrigins[0] != "localhost:3000" || cfg.HTTPAllowedOrigins[1] != "*.example.test" {
		t.Fatalf("origins = %q", cfg.HTTPAllowedOrigins)
	}
	if cfg.WSPingInterval() != 5*time.Second || cfg.RemoteEngineMaxConns != 2 {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
game_mode: sim
tick_interval_ms: 20
remote_engine_depth: 8
redis_url: redis://localhost:6379/1
`)
	t.Setenv("GAME_MODE", "hotseat")
	t.Setenv("BLACK_PLAYER", "remote")
	t.Setenv("RANDOM_SEED", "1234")
	t.Setenv("START_IN_MENU", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("source = %q", cfg.Source)
	}
	if cfg.GameMode != "hotseat" || cfg.BlackPlayer != "remote" {
		t.Fatalf("env should win over file: %+v", cfg)
	}
	if cfg.TickIntervalMS != 20 || cfg.RemoteEngineDepth != 8 || cfg.RedisURL != "redis://localhost:6379/1" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.RandomSeed != 1234 || !cfg.StartInMenu {
		t.Fatalf("env values lost: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"TICK_INTERVAL_MS":         "fast",
		"REMOTE_ENGINE_DEPTH":      "99",
		"REMOTE_RETRY_DELAY_MS":    "-1",
		"REMOTE_ENGINE_TIMEOUT_MS": "0",
		"WS_PING_INTERVAL_MS":      "0",
		"REMOTE_ENGINE_MAX_CONNS":  "0",
		"START_IN_MENU":            "maybe",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			writeConfig(t, "")
			t.Setenv(key, val)
			_, err := Load()
			if !IsInvalid(err) {
				t.Fatalf("want InvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("explicit missing file should fail")
	}
}

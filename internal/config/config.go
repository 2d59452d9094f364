package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	yaml "gopkg.in/yaml.v3"
)

const cfgFile = "shake-chess/config.yaml"

// InvalidConfig reports a setting that could not be used.
type InvalidConfig struct {
	Key string
	Err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Key, e.Err)
}

type AppConfig struct {
	GameMode    string `yaml:"game_mode"`
	WhitePlayer string `yaml:"white_player"`
	BlackPlayer string `yaml:"black_player"`
	StartFEN    string `yaml:"start_fen"`
	StartInMenu bool   `yaml:"start_in_menu"`

	TickIntervalMS     int   `yaml:"tick_interval_ms"`
	RandomSeed         int64 `yaml:"random_seed"`
	AutoRestartSeconds int   `yaml:"auto_restart_seconds"`

	HTTPAddr           string   `yaml:"http_addr"`
	HTTPAllowedOrigins []string `yaml:"http_allowed_origins"`
	WSPingIntervalMS   int      `yaml:"ws_ping_interval_ms"`

	RemoteEngineURL       string `yaml:"remote_engine_url"`
	RemoteEngineDepth     int    `yaml:"remote_engine_depth"`
	RemoteEngineTimeoutMS int    `yaml:"remote_engine_timeout_ms"`
	RemoteRetryDelayMS    int    `yaml:"remote_retry_delay_ms"`
	RemoteEngineAPIKey    string `yaml:"remote_engine_api_key"`
	RemoteEngineMaxConns  int    `yaml:"remote_engine_max_conns"`

	RedisURL            string `yaml:"redis_url"`
	MoveCacheTTLSeconds int    `yaml:"move_cache_ttl_seconds"`

	MessagesDir string `yaml:"messages_dir"`

	// Source is the config file that was read, if any.
	Source string `yaml:"-"`
}

func Defaults() AppConfig {
	return AppConfig{
		GameMode:              "vsai",
		TickIntervalMS:        50,
		HTTPAddr:              ":8080",
		WSPingIntervalMS:      30000,
		RemoteEngineURL:       "https://stockfish.online/api/s/v2.php",
		RemoteEngineDepth:     12,
		RemoteEngineTimeoutMS: 10000,
		RemoteRetryDelayMS:    1000,
		RemoteEngineMaxConns:  4,
		MoveCacheTTLSeconds:   86400,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (or found under the XDG config dirs), then environment
// variables.
func Load() (*AppConfig, error) {
	cfg := Defaults()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		if found, err := xdg.SearchConfigFile(cfgFile); err == nil {
			path = found
		}
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string, cfg *AppConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	setString("GAME_MODE", &cfg.GameMode)
	setString("WHITE_PLAYER", &cfg.WhitePlayer)
	setString("BLACK_PLAYER", &cfg.BlackPlayer)
	setString("START_FEN", &cfg.StartFEN)
	setString("HTTP_ADDR", &cfg.HTTPAddr)
	setString("REMOTE_ENGINE_URL", &cfg.RemoteEngineURL)
	setString("REMOTE_ENGINE_API_KEY", &cfg.RemoteEngineAPIKey)
	setString("REDIS_URL", &cfg.RedisURL)
	setString("MESSAGES_DIR", &cfg.MessagesDir)

	if v := strings.TrimSpace(os.Getenv("HTTP_ALLOWED_ORIGINS")); v != "" {
		cfg.HTTPAllowedOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("START_IN_MENU")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &InvalidConfig{Key: "START_IN_MENU", Err: err.Error()}
		}
		cfg.StartInMenu = b
	}
	if v := strings.TrimSpace(os.Getenv("RANDOM_SEED")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &InvalidConfig{Key: "RANDOM_SEED", Err: err.Error()}
		}
		cfg.RandomSeed = n
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"TICK_INTERVAL_MS", &cfg.TickIntervalMS},
		{"AUTO_RESTART_SECONDS", &cfg.AutoRestartSeconds},
		{"REMOTE_ENGINE_DEPTH", &cfg.RemoteEngineDepth},
		{"REMOTE_ENGINE_TIMEOUT_MS", &cfg.RemoteEngineTimeoutMS},
		{"REMOTE_RETRY_DELAY_MS", &cfg.RemoteRetryDelayMS},
		{"MOVE_CACHE_TTL_SECONDS", &cfg.MoveCacheTTLSeconds},
		{"REMOTE_ENGINE_MAX_CONNS", &cfg.RemoteEngineMaxConns},
		{"WS_PING_INTERVAL_MS", &cfg.WSPingIntervalMS},
	}
	for _, it := range ints {
		v := strings.TrimSpace(os.Getenv(it.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &InvalidConfig{Key: it.key, Err: err.Error()}
		}
		*it.dst = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.GameMode) == "" {
		return &InvalidConfig{Key: "GAME_MODE", Err: "is required"}
	}
	if c.TickIntervalMS <= 0 {
		return &InvalidConfig{Key: "TICK_INTERVAL_MS", Err: "must be positive"}
	}
	for key, v := range map[string]int{
		"REMOTE_ENGINE_TIMEOUT_MS": c.RemoteEngineTimeoutMS,
		"REMOTE_ENGINE_MAX_CONNS":  c.RemoteEngineMaxConns,
		"WS_PING_INTERVAL_MS":      c.WSPingIntervalMS,
	} {
		if v <= 0 {
			return &InvalidConfig{Key: key, Err: "must be positive"}
		}
	}
	if c.RemoteEngineDepth < 0 || c.RemoteEngineDepth > 30 {
		return &InvalidConfig{Key: "REMOTE_ENGINE_DEPTH", Err: "must be between 0 and 30"}
	}
	for key, v := range map[string]int{
		"AUTO_RESTART_SECONDS":   c.AutoRestartSeconds,
		"REMOTE_RETRY_DELAY_MS":  c.RemoteRetryDelayMS,
		"MOVE_CACHE_TTL_SECONDS": c.MoveCacheTTLSeconds,
	} {
		if v < 0 {
			return &InvalidConfig{Key: key, Err: "must not be negative"}
		}
	}
	if strings.TrimSpace(c.RemoteEngineURL) == "" {
		return &InvalidConfig{Key: "REMOTE_ENGINE_URL", Err: "is required"}
	}
	return nil
}

func (c *AppConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func (c *AppConfig) AutoRestart() time.Duration {
	return time.Duration(c.AutoRestartSeconds) * time.Second
}

func (c *AppConfig) RemoteEngineTimeout() time.Duration {
	return time.Duration(c.RemoteEngineTimeoutMS) * time.Millisecond
}

func (c *AppConfig) WSPingInterval() time.Duration {
	return time.Duration(c.WSPingIntervalMS) * time.Millisecond
}

func (c *AppConfig) RemoteRetryDelay() time.Duration {
	return time.Duration(c.RemoteRetryDelayMS) * time.Millisecond
}

func (c *AppConfig) MoveCacheTTL() time.Duration {
	return time.Duration(c.MoveCacheTTLSeconds) * time.Second
}

// IsInvalid reports whether err is a configuration error.
func IsInvalid(err error) bool {
	var ic *InvalidConfig
	return errors.As(err, &ic)
}

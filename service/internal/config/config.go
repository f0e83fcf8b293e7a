// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings read from the environment.
type Config struct {
	Addr           string        // HTTP listen address.
	DatabaseURL    string        // postgres://, sqlite:// or file: URL; empty disables result storage.
	RedisURL       string        // Empty keeps preferences and action records in memory.
	JWTSecret      string        // HMAC key for guest tokens; empty means a per-process random key.
	TokenTTL       time.Duration // Lifetime of a guest token.
	LogLevel       string
	LogFormat      string        // "text" or "json".
	DrawCount      uint8         // Default draw count for guests without a saved preference.
	HistoryLimit   int           // Maximum undo depth per game, 0 = unlimited.
	TickInterval   time.Duration // Clock push interval for live sessions.
	AllowedOrigins []string      // Extra browser origins allowed to open the websocket.
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Addr:         ":8080",
		TokenTTL:     90 * 24 * time.Hour,
		LogLevel:     "info",
		LogFormat:    "text",
		DrawCount:    1,
		TickInterval: time.Second,
	}
}

// Load reads an optional .env file from the working directory, then builds
// the Config from the process environment. Variables already set in the
// environment take precedence over the .env file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("KLONDIKE_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := get("KLONDIKE_DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := get("KLONDIKE_REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := get("KLONDIKE_JWT_SECRET"); ok {
		cfg.JWTSecret = v
	}
	if v, ok := get("KLONDIKE_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("KLONDIKE_LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := get("KLONDIKE_DRAW_COUNT"); ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil || (n != 1 && n != 3) {
			return Config{}, fmt.Errorf("KLONDIKE_DRAW_COUNT: want 1 or 3, got %q", v)
		}
		cfg.DrawCount = uint8(n)
	}
	if v, ok := get("KLONDIKE_HISTORY_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("KLONDIKE_HISTORY_LIMIT: want a non-negative integer, got %q", v)
		}
		cfg.HistoryLimit = n
	}
	if v, ok := get("KLONDIKE_TICK_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("KLONDIKE_TICK_INTERVAL: want a positive duration, got %q", v)
		}
		cfg.TickInterval = d
	}
	if v, ok := get("KLONDIKE_ALLOWED_ORIGINS"); ok {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	if v, ok := get("KLONDIKE_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("KLONDIKE_TOKEN_TTL: want a positive duration, got %q", v)
		}
		cfg.TokenTTL = d
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("KLONDIKE_LOG_FORMAT: want text or json, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

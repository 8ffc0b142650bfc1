package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// config holds everything read from the environment at startup.
type config struct {
	DBURL        string
	Port         string
	GinMode      string
	CORSOrigins  []string
	AuthRequired bool

	// Text-generation endpoint used by the weekly insight.
	GenerateURL     string
	GenerateModel   string
	GenerateTimeout time.Duration

	LogLevel string
	LogFile  string // optional; rotated by lumberjack when set
}

const (
	defaultPort            = "3000"
	defaultCORSOrigin      = "http://localhost:5173"
	defaultGenerateURL     = "http://localhost:11434/api/generate"
	defaultGenerateModel   = "mistral"
	defaultGenerateTimeout = 30 * time.Second
)

// loadConfig reads .env (if present) and then the process environment.
// Variables already set in the environment win over the file.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := config{
		DBURL:         os.Getenv("DB_URL"),
		Port:          envOr("PORT", defaultPort),
		GinMode:       os.Getenv("GIN_MODE"),
		CORSOrigins:   splitList(envOr("CORS_ORIGINS", defaultCORSOrigin)),
		GenerateURL:   envOr("OLLAMA_API_URL", defaultGenerateURL),
		GenerateModel: envOr("OLLAMA_MODEL", defaultGenerateModel),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}
	if cfg.DBURL == "" {
		return config{}, errors.New("DB_URL is required")
	}
	if len(cfg.CORSOrigins) == 0 {
		return config{}, errors.New("CORS_ORIGINS must list at least one origin")
	}

	var err error
	if cfg.GenerateTimeout, err = envDuration("INSIGHT_TIMEOUT", defaultGenerateTimeout); err != nil {
		return config{}, err
	}
	if cfg.AuthRequired, err = envBool("AUTH_REQUIRED", false); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 30s, got %q", key, v)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false, got %q", key, v)
	}
	return b, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

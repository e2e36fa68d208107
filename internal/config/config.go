package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogFile     string // empty logs to stdout

	RedisURL   string
	DataDir    string // seed scripts live in DataDir/scripts
	SpritesDir string

	RevealDelay time.Duration
	ScriptTTL   time.Duration // zero keeps published scripts forever
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	RedisURL    string `yaml:"redis_url"`
	DataDir     string `yaml:"data_dir"`
	SpritesDir  string `yaml:"sprites_dir"`
	RevealDelay string `yaml:"reveal_delay"`
	ScriptTTL   string `yaml:"script_ttl"`
}

// Load builds the configuration from defaults, then the CONFIG_FILE overlay
// if one is named, then environment variables.
func Load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		f, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		file = *f
	}

	cfg := &Config{
		Port:        getEnv("PORT", or(file.Port, "8080")),
		Environment: getEnv("ENVIRONMENT", or(file.Environment, "development")),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", or(file.LogLevel, "info"))),
		LogFile:     getEnv("LOG_FILE", file.LogFile),
		RedisURL:    getEnv("REDIS_URL", or(file.RedisURL, "localhost:6379")),
		DataDir:     getEnv("DATA_DIR", or(file.DataDir, "data")),
		SpritesDir:  getEnv("SPRITES_DIR", or(file.SpritesDir, "data/sprites")),
	}

	var err error
	cfg.RevealDelay, err = parseDuration("REVEAL_DELAY", getEnv("REVEAL_DELAY", or(file.RevealDelay, "200ms")))
	if err != nil {
		return nil, err
	}
	cfg.ScriptTTL, err = parseDuration("SCRIPT_TTL", getEnv("SCRIPT_TTL", or(file.ScriptTTL, "0")))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

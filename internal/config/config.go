package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	GenAI    GenAIConfig
	Dispatch DispatchConfig
	Mirror   MirrorConfig
}

type ServerConfig struct {
	Address string
}

type DatabaseConfig struct {
	// PostgresURL empty means no backing store is configured and the
	// roster lives in memory only.
	PostgresURL string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type GenAIConfig struct {
	APIKey string
	Model  string
}

type DispatchConfig struct {
	// SendDelay paces a single send before the link opens.
	SendDelay time.Duration
	// Throttle separates successive items of a bulk batch; longer than
	// SendDelay so the operator can react to each opened tab.
	Throttle time.Duration
}

type MirrorConfig struct {
	Interval time.Duration
}

func LoadAll() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("missing required env var: GEMINI_API_KEY")
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			PostgresURL: os.Getenv("POSTGRES_URL"),
		},
		GenAI: GenAIConfig{
			APIKey: apiKey,
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Dispatch: DispatchConfig{
			SendDelay: time.Duration(getEnvInt("DISPATCH_SEND_DELAY_MS", 500)) * time.Millisecond,
			Throttle:  time.Duration(getEnvInt("DISPATCH_THROTTLE_MS", 4000)) * time.Millisecond,
		},
		Mirror: MirrorConfig{
			Interval: time.Duration(getEnvInt("MIRROR_INTERVAL_SECONDS", 120)) * time.Second,
		},
		Redis: loadRedisConfig(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvInt("REDIS_DB", 0),
		TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 86400)) * time.Second,
	}
}

func validate(cfg *Config) error {
	if cfg.Dispatch.SendDelay <= 0 {
		return errors.New("DISPATCH_SEND_DELAY_MS must be > 0")
	}
	if cfg.Dispatch.Throttle <= 0 {
		return errors.New("DISPATCH_THROTTLE_MS must be > 0")
	}
	if cfg.Dispatch.Throttle < cfg.Dispatch.SendDelay {
		return errors.New("DISPATCH_THROTTLE_MS must be >= DISPATCH_SEND_DELAY_MS")
	}
	if cfg.Mirror.Interval <= 0 {
		return errors.New("MIRROR_INTERVAL_SECONDS must be > 0")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("invalid int for env %s: %s", key, v))
	}
	return i
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config controls a benchmark run. Values come from defaults, then the YAML
// file named by CONFIG_FILE, then environment variables.
type Config struct {
	// Messages is the number of messages per phase.
	Messages int `yaml:"messages"`
	// Actors is the number of counter actors calls are spread across.
	Actors int `yaml:"actors"`
	// Subscribers is the number of broker subscribers in the fan-out phase.
	Subscribers int `yaml:"subscribers"`
	// Mailbox bounds actor mailboxes; 0 means unbounded.
	Mailbox int `yaml:"mailbox"`
	// Restarts is the number of crashes in the supervisor phase.
	Restarts int `yaml:"restarts"`
	// MetricsAddr serves Prometheus metrics when set, e.g. ":2121".
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Messages:    100_000,
		Actors:      8,
		Subscribers: 16,
		Mailbox:     0,
		Restarts:    100,
		LogLevel:    "info",
	}
}

type lookupEnv func(key string) (string, bool)

func loadConfig() (Config, error) {
	return buildConfig(os.LookupEnv, os.ReadFile)
}

func buildConfig(env lookupEnv, readFile func(string) ([]byte, error)) (Config, error) {
	cfg := defaultConfig()

	if path := getEnv(env, "CONFIG_FILE", ""); path != "" {
		data, err := readFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Messages = getEnvInt(env, "N", cfg.Messages)
	cfg.Actors = getEnvInt(env, "ACTORS", cfg.Actors)
	cfg.Subscribers = getEnvInt(env, "SUBSCRIBERS", cfg.Subscribers)
	cfg.Mailbox = getEnvInt(env, "MAILBOX", cfg.Mailbox)
	cfg.Restarts = getEnvInt(env, "RESTARTS", cfg.Restarts)
	cfg.MetricsAddr = getEnv(env, "METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = getEnv(env, "LOG_LEVEL", cfg.LogLevel)

	if cfg.Messages <= 0 || cfg.Actors <= 0 {
		return cfg, fmt.Errorf("messages and actors must be positive, got %d and %d", cfg.Messages, cfg.Actors)
	}
	return cfg, nil
}

func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func getEnv(env lookupEnv, key, fallback string) string {
	v, ok := env(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(env lookupEnv, key string, fallback int) int {
	v, err := strconv.Atoi(strings.ReplaceAll(getEnv(env, key, strconv.Itoa(fallback)), "_", ""))
	if err != nil {
		return fallback
	}
	return v
}

package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	Neo4jURI      string `env:"NEO4J_URI"`
	Neo4jUsername string `env:"NEO4J_USERNAME"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`
	Neo4jDatabase string `env:"NEO4J_DATABASE" default:"neo4j"`

	HFAPIURL string `env:"HF_API_URL" default:"https://router.huggingface.co/hf-inference"`
	HFToken  string `env:"HF_TOKEN"`
	HFModel  string `env:"HF_MODEL" default:"google/embeddinggemma-300m"`

	// RedisURL is optional; without it vote debouncing is disabled.
	RedisURL         string        `env:"REDIS_URL"`
	VoteDebounceTime time.Duration `env:"VOTE_DEBOUNCE_TIME" default:"1s"`

	RecomputeInterval time.Duration `env:"CREDIT_RECOMPUTE_INTERVAL" default:"1h"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"NEO4J_URI":      cfg.Neo4jURI,
		"NEO4J_USERNAME": cfg.Neo4jUsername,
		"NEO4J_PASSWORD": cfg.Neo4jPassword,
		"HF_TOKEN":       cfg.HFToken,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.VoteDebounceTime < 0 {
		return fmt.Errorf("VOTE_DEBOUNCE_TIME must not be negative")
	}
	if cfg.RecomputeInterval <= 0 {
		return fmt.Errorf("CREDIT_RECOMPUTE_INTERVAL must be positive")
	}

	return nil
}

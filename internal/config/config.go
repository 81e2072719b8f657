package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const DefaultUpstreamURL = "https://fintechchatbot.onrender.com/api/v1/chat"

type Config struct {
	// Server
	Port string `env:"PORT" env-default:"8080"`
	Env  string `env:"ENV" env-default:"development"`

	// Upstream chat service
	UpstreamURL     string        `env:"UPSTREAM_URL" env-default:"https://fintechchatbot.onrender.com/api/v1/chat"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" env-default:"60s"`

	// Redis (optional, enables cross-instance widget updates)
	RedisURL string `env:"REDIS_URL"`

	// Sessions
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" env-default:"30m"`

	// Frontend
	FrontendURL string `env:"FRONTEND_URL" env-default:"*"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("UPSTREAM_URL must not be empty")
	}
	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive, got %s", cfg.SessionIdleTimeout)
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

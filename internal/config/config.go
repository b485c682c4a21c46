package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the gateway needs to reach the upstream
// services and serve the browser client.
type Config struct {
	Env        string `envconfig:"APP_ENV" default:"development"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Upstream service base URLs.
	OCRBaseURL      string `envconfig:"OCR_BASE_URL" default:"http://localhost:8000"`
	NLUBaseURL      string `envconfig:"NLU_BASE_URL" default:"http://localhost:8001"`
	ImageGenBaseURL string `envconfig:"IMAGE_GEN_BASE_URL"` // empty = placeholder-only mode

	// Zero means no timeout: a hung upstream call keeps the run in
	// its loading phase until the server shuts down.
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"0"`

	// Concurrent image-generation calls per run.
	ImageGenWorkers int `envconfig:"IMAGE_GEN_WORKERS" default:"2"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// Load reads .env (outside production) and then the environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

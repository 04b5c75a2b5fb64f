package openai

import (
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds the resolved adapter settings. It is built once per client
// from explicit overrides layered over environment defaults and never
// changes afterwards. An empty APIKey means the adapter is unconfigured and
// must fail on first use, not at construction.
type Config struct {
	APIKey          string        `env:"OPENAI_API_KEY"`
	Model           string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL         string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Timeout         time.Duration `env:"OPENAI_TIMEOUT" envDefault:"30s"`
	MaxRetries      int           `env:"OPENAI_MAX_RETRIES" envDefault:"2"`
	Temperature     float64       `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`
	MaxOutputTokens int           `env:"OPENAI_MAX_OUTPUT_TOKENS" envDefault:"700"`
	IncludeRaw      bool          `env:"OPENAI_INCLUDE_RAW" envDefault:"false"`
}

// ResolveConfig parses environment defaults and applies string overrides on
// top. Numeric overrides that fail to parse fall back to the environment
// value instead of erroring.
func ResolveConfig(overrides map[string]string) (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	for key, value := range overrides {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "api_key":
			cfg.APIKey = value
		case "model":
			cfg.Model = value
		case "base_url":
			cfg.BaseURL = value
		case "timeout_ms":
			if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
				cfg.Timeout = time.Duration(ms) * time.Millisecond
			}
		case "max_retries":
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				cfg.MaxRetries = n
			}
		case "temperature":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.Temperature = f
			}
		case "max_output_tokens":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				cfg.MaxOutputTokens = n
			}
		case "include_raw":
			if b, err := strconv.ParseBool(value); err == nil {
				cfg.IncludeRaw = b
			}
		}
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Temperature = clampFloat(cfg.Temperature, 0, 2)

	return cfg, nil
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

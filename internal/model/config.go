package model

import "time"

// ================ Config ================
type ServerConfig struct {
	Port      string `envconfig:"PORT" default:"3000"`
	StaticDir string `envconfig:"STATIC_DIR" default:"public"`
}

type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH"`
}

type RetellConfig struct {
	APIKey  string        `envconfig:"RETELL_API_KEY"`
	BaseURL string        `envconfig:"RETELL_BASE_URL" default:"https://api.retellai.com"`
	Timeout time.Duration `envconfig:"RETELL_TIMEOUT" default:"10s"`
}

type RateLimitConfig struct {
	PerIdentityHourly int64 `envconfig:"RATE_LIMIT_PER_IDENTITY_HOURLY" default:"5"`
	DailyCalls        int64 `envconfig:"RATE_LIMIT_DAILY_CALLS" default:"100"`
}

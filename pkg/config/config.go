// Package config holds the application configuration, loaded from the
// environment with optional .env support.
package config

import "time"

// DB configures the on-device ledger database.
type DB struct {
	Path string `envconfig:"PATH" default:"pocketledger.db"`
}

// Server configures the local device API.
type Server struct {
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// Remote configures the remote ledger service client.
type Remote struct {
	BaseURL    string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	Token      string        `envconfig:"TOKEN"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"15s"`
	HealthPath string        `envconfig:"HEALTH_PATH" default:"/healthz"`
}

// Connectivity configures the reachability prober.
type Connectivity struct {
	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL" default:"30s"`
	ProbeTimeout  time.Duration `envconfig:"PROBE_TIMEOUT" default:"5s"`
}

// ExchangeRate configures the rate source and cache.
type ExchangeRate struct {
	ApiUrl       string        `envconfig:"API_URL" default:"https://api.exchangerate-api.com/v4/latest"`
	ApiKey       string        `envconfig:"API_KEY"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"15m"`
	BaseCurrency string        `envconfig:"BASE_CURRENCY" default:"USD"`
}

// Log configures the logger.
type Log struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[pocketledger]"`
}

// App is the root configuration.
type App struct {
	Env          string       `envconfig:"APP_ENV" default:"development"`
	OwnerID      string       `envconfig:"OWNER_ID"`
	DB           DB           `envconfig:"DB"`
	Server       Server       `envconfig:"SERVER"`
	Remote       Remote       `envconfig:"REMOTE"`
	Connectivity Connectivity `envconfig:"CONNECTIVITY"`
	Exchange     ExchangeRate `envconfig:"EXCHANGE_RATE"`
	Log          Log          `envconfig:"LOG"`
}

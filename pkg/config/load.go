package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the configuration from the environment, preferring variables
// from a .env file when one exists.
func Load(logger *slog.Logger) (*App, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using system environment variables")
	} else {
		logger.Info("environment variables loaded from .env file")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger.Info("app config loaded",
		"env", cfg.Env,
		"db_path", cfg.DB.Path,
		"remote_base_url", cfg.Remote.BaseURL,
		"remote_timeout", cfg.Remote.Timeout,
		"exchange_base", cfg.Exchange.BaseCurrency,
		"exchange_cache_ttl", cfg.Exchange.CacheTTL,
	)
	return &cfg, nil
}

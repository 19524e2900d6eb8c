package server

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/elskow/transcendence/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// ConfigPath is where LoadConfig looks for config.toml.
var ConfigPath = "./config/server"

func LoadConfig() (*config.AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(ConfigPath)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific configurations
	if envSettings := v.GetStringMap(fmt.Sprintf("http.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("http.%s", env), &cfg.HTTP); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides lets deployments inject secrets without touching the TOML file.
func applyEnvOverrides(cfg *config.AppConfig) error {
	if err := env.Parse(&cfg.Database); err != nil {
		return fmt.Errorf("error parsing database env: %w", err)
	}
	if err := env.Parse(&cfg.Auth); err != nil {
		return fmt.Errorf("error parsing auth env: %w", err)
	}
	if err := env.Parse(&cfg.OAuth); err != nil {
		return fmt.Errorf("error parsing oauth env: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "3000")
	v.SetDefault("http.read_header_timeout", "5s")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.handler_timeout", "30s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("auth.token_expiration", "24h")
	v.SetDefault("auth.cookie_name", "Authentication")
	v.SetDefault("twofactor.app_name", "transcendence")
	v.SetDefault("twofactor.qr_size", 256)
	v.SetDefault("oauth.auth_url", "https://api.intra.42.fr/oauth/authorize")
	v.SetDefault("oauth.token_url", "https://api.intra.42.fr/oauth/token")
	v.SetDefault("oauth.profile_url", "https://api.intra.42.fr/v2/me")
	v.SetDefault("oauth.scopes", []string{"public"})
	v.SetDefault("oauth.max_retries", 5)
	v.SetDefault("oauth.retry_base", "500ms")
	v.SetDefault("oauth.state_ttl", "10m")
	v.SetDefault("oauth.success_redirect", "/")
}

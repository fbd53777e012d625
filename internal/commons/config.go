package commons

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/config"
)

func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills the values a YAML file usually leaves out.
func applyDefaults(cfg *config.Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.State.Driver == "" {
		cfg.State.Driver = "sqlite"
	}
	if cfg.Cart.StaleTime == 0 {
		cfg.Cart.StaleTime = 30 * time.Second
	}
	if cfg.Cart.RetryAttempts == 0 {
		cfg.Cart.RetryAttempts = 2
	}
	if cfg.Cart.RetryBackoff == 0 {
		cfg.Cart.RetryBackoff = 300 * time.Millisecond
	}
	if cfg.Cart.SchemaVersion == 0 {
		cfg.Cart.SchemaVersion = 1
	}
	if cfg.Realtime.CartSubject == "" {
		cfg.Realtime.CartSubject = "cart.updated"
	}
	if cfg.Realtime.AreasSubject == "" {
		cfg.Realtime.AreasSubject = "areas.updated"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	State    StateConfig
	Database DatabaseConfig
	Cart     CartConfig
	Realtime RealtimeConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StateConfig selects where the durable client state slots live.
// Driver is "sqlite" (DSN is a file path) or "mysql" (Database is used).
type StateConfig struct {
	Driver string
	DSN    string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type CartConfig struct {
	StaleTime     time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	SchemaVersion int
}

type RealtimeConfig struct {
	NATSURL      string
	CartSubject  string
	AreasSubject string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("API_BASE_URL", "http://localhost:5000/api")
	viper.SetDefault("API_TIMEOUT", "15s")
	viper.SetDefault("STATE_DRIVER", "sqlite")
	viper.SetDefault("STATE_DSN", "storefront-state.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "storefront")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "storefront")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 5)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 2)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("CART_STALE_TIME", "30s")
	viper.SetDefault("CART_RETRY_ATTEMPTS", 2)
	viper.SetDefault("CART_RETRY_BACKOFF", "300ms")
	viper.SetDefault("CART_SCHEMA_VERSION", 1)
	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("NATS_CART_SUBJECT", "cart.updated")
	viper.SetDefault("NATS_AREAS_SUBJECT", "areas.updated")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	apiTimeout, err := time.ParseDuration(viper.GetString("API_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	staleTime, err := time.ParseDuration(viper.GetString("CART_STALE_TIME"))
	if err != nil {
		return nil, err
	}

	retryBackoff, err := time.ParseDuration(viper.GetString("CART_RETRY_BACKOFF"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		API: APIConfig{
			BaseURL: viper.GetString("API_BASE_URL"),
			Timeout: apiTimeout,
		},
		State: StateConfig{
			Driver: viper.GetString("STATE_DRIVER"),
			DSN:    viper.GetString("STATE_DSN"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Cart: CartConfig{
			StaleTime:     staleTime,
			RetryAttempts: viper.GetInt("CART_RETRY_ATTEMPTS"),
			RetryBackoff:  retryBackoff,
			SchemaVersion: viper.GetInt("CART_SCHEMA_VERSION"),
		},
		Realtime: RealtimeConfig{
			NATSURL:      viper.GetString("NATS_URL"),
			CartSubject:  viper.GetString("NATS_CART_SUBJECT"),
			AreasSubject: viper.GetString("NATS_AREAS_SUBJECT"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}

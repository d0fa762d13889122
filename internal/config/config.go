package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Ingestion  IngestionConfig
	Classifier ClassifierConfig
	Routing    RoutingConfig
	Weather    WeatherConfig
	Redis      RedisConfig
	DB         DatabaseConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type IngestionConfig struct {
	Enabled      bool
	SourceURL    string
	PollInterval time.Duration
}

type ClassifierConfig struct {
	URL     string
	Timeout time.Duration
}

type RoutingConfig struct {
	DirectionsURL string
	APIKey        string
	Timeout       time.Duration
	CacheTTL      time.Duration
}

type WeatherConfig struct {
	ObservationURL string
	AddressURL     string
	ServiceKey     string
	APIKey         string
	Timeout        time.Duration
}

type RedisConfig struct {
	Addr string // empty disables the route cache
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Ingestion: IngestionConfig{
			Enabled:      getEnvBool("INGESTION_ENABLED", true),
			SourceURL:    getEnv("ALERT_SOURCE_URL", "http://localhost:9090/disaster-messages/latest"),
			PollInterval: getEnvDuration("ALERT_POLL_INTERVAL", time.Minute),
		},
		Classifier: ClassifierConfig{
			URL:     getEnv("CLASSIFIER_URL", "http://localhost:8000/predict"),
			Timeout: getEnvDuration("CLASSIFIER_TIMEOUT", 10*time.Second),
		},
		Routing: RoutingConfig{
			DirectionsURL: getEnv("DIRECTIONS_URL", "https://apis-navi.kakaomobility.com/v1/directions"),
			APIKey:        getEnv("KAKAO_REST_KEY", ""),
			Timeout:       getEnvDuration("DIRECTIONS_TIMEOUT", 10*time.Second),
			CacheTTL:      getEnvDuration("ROUTE_CACHE_TTL", 5*time.Minute),
		},
		Weather: WeatherConfig{
			ObservationURL: getEnv("KMA_URL", "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0/getUltraSrtNcst"),
			AddressURL:     getEnv("ADDRESS_URL", "https://dapi.kakao.com/v2/local/geo/coord2address.json"),
			ServiceKey:     getEnv("KMA_SERVICE_KEY", ""),
			APIKey:         getEnv("KAKAO_REST_KEY", ""),
			Timeout:        getEnvDuration("WEATHER_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/safetynevi.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Ingestion.PollInterval < time.Second {
		return fmt.Errorf("alert poll interval must be at least 1 second")
	}
	if c.Ingestion.Enabled && c.Ingestion.SourceURL == "" {
		return fmt.Errorf("ALERT_SOURCE_URL is required when ingestion is enabled")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the analytics API.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	CanvasBaseURL   string
	CanvasToken     string
	CanvasTimeout   time.Duration
	RedisURL        string
	CoursesCacheTTL time.Duration
	JWTSecret       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GLIDE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Glide Analytics API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("canvas.timeout", "15s")
	v.SetDefault("courses.cache_ttl", "5m")

	timeout, err := time.ParseDuration(v.GetString("canvas.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid canvas timeout: %w", err)
	}

	ttl, err := time.ParseDuration(v.GetString("courses.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid courses cache ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		CanvasBaseURL:   v.GetString("canvas.base_url"),
		CanvasToken:     v.GetString("canvas.token"),
		CanvasTimeout:   timeout,
		RedisURL:        v.GetString("redis.url"),
		CoursesCacheTTL: ttl,
		JWTSecret:       v.GetString("jwt.secret"),
	}

	if cfg.CanvasBaseURL == "" {
		return Config{}, fmt.Errorf("canvas base url must be provided")
	}

	if cfg.CanvasToken == "" {
		return Config{}, fmt.Errorf("canvas token must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

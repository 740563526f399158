package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port          string
	MongoDBURI    string
	SessionSecret string
	Environment   string
	LogLevel      string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnvWithDefault("PORT", "8080"),
		MongoDBURI:    os.Getenv("MONGODB_URI"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		Environment:   getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:      getEnvWithDefault("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

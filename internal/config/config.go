package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	DTR      DTRConfig
	Storage  StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// JWTConfig holds the secret shared with the HRIS auth service
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// DTRConfig holds biometric reconciliation settings
type DTRConfig struct {
	Timezone          string
	Workers           int
	BreakOutDefault   string
	BreakInDefault    string
	ReconcileInterval time.Duration
	ImportMaxRows     int
}

type StorageConfig struct {
	BasePath string
}

// Load reads configuration from the environment, after loading .env when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: dbMaxConns,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// DTR configuration
	workers, err := strconv.Atoi(getEnv("DTR_WORKERS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid DTR_WORKERS: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("DTR_RECONCILE_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DTR_RECONCILE_INTERVAL: %w", err)
	}
	maxRows, err := strconv.Atoi(getEnv("DTR_IMPORT_MAX_ROWS", "50000"))
	if err != nil {
		return nil, fmt.Errorf("invalid DTR_IMPORT_MAX_ROWS: %w", err)
	}

	config.DTR = DTRConfig{
		Timezone:          getEnv("DTR_TIMEZONE", "Asia/Manila"),
		Workers:           workers,
		BreakOutDefault:   getEnv("DTR_BREAK_OUT_DEFAULT", "12:00"),
		BreakInDefault:    getEnv("DTR_BREAK_IN_DEFAULT", "13:00"),
		ReconcileInterval: interval,
		ImportMaxRows:     maxRows,
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.DTR.Timezone); err != nil {
		return fmt.Errorf("DTR_TIMEZONE is invalid: %w", err)
	}
	if c.DTR.Workers < 0 {
		return fmt.Errorf("DTR_WORKERS must not be negative")
	}
	if c.DTR.ReconcileInterval < 0 {
		return fmt.Errorf("DTR_RECONCILE_INTERVAL must not be negative")
	}
	if c.DTR.ImportMaxRows < 0 {
		return fmt.Errorf("DTR_IMPORT_MAX_ROWS must not be negative")
	}
	return nil
}

// Location returns the organization timezone used to interpret punches.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DTR.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

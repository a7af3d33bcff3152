package config

import (
	"fmt"
	"strings"
	"time"

	"invoicing_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// ReimportMode controls what a bulk import does to the stock of an existing serial number.
type ReimportMode string

const (
	// ReimportOverwrite resets current_quantity to the sheet's opening_quantity.
	ReimportOverwrite ReimportMode = "overwrite"
	// ReimportAdjust shifts current_quantity by the change in opening_quantity.
	ReimportAdjust ReimportMode = "adjust"
)

// DBConfig holds database configuration
type DBConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	DSN          string // sqlite file path or full postgres URL; overrides the fields above
	MaxOpenConns int
	SchemaPath   string
}

// DataSourceName returns the driver-specific connection string.
func (c DBConfig) DataSourceName() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == "sqlite" {
		return "invoicing.db"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

type ImportConfig struct {
	ReimportMode ReimportMode
	LockTTL      time.Duration
}

// Config holds all configuration
type Config struct {
	Server             ServerConfig
	DB                 DBConfig
	Auth               AuthConfig
	Import             ImportConfig
	LogLevel           string
	RedisAddress       string
	DefaultPhoneRegion string
	LowStockThreshold  int
}

// IsDevelopment reports whether APP_ENV selects the development profile.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           utils.Getenv("PORT", "8080"),
			Env:            utils.Getenv("APP_ENV", "development"),
			AllowedOrigins: splitList(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		},
		DB: DBConfig{
			Driver:       strings.ToLower(utils.Getenv("DB_DRIVER", "postgres")),
			Host:         utils.Getenv("DB_HOST", "localhost"),
			Port:         utils.Getenv("DB_PORT", "5432"),
			User:         utils.Getenv("DB_USER", "invoicing_user"),
			Password:     utils.Getenv("DB_PASSWORD", "invoicing_password"),
			Name:         utils.Getenv("DB_NAME", "invoicing_db"),
			SSLMode:      utils.Getenv("DB_SSLMODE", "disable"),
			DSN:          utils.Getenv("DB_DSN", ""),
			MaxOpenConns: utils.GetenvInt("DB_MAX_OPEN_CONNS", 25),
			SchemaPath:   utils.Getenv("DB_SCHEMA_PATH", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     utils.Getenv("JWT_SECRET", ""),
			TokenTTL:      utils.GetenvDuration("JWT_TTL", 72*time.Hour),
			AdminUsername: utils.Getenv("ADMIN_USERNAME", "admin"),
			AdminPassword: utils.Getenv("ADMIN_PASSWORD", ""),
		},
		Import: ImportConfig{
			ReimportMode: ReimportMode(strings.ToLower(utils.Getenv("IMPORT_REIMPORT_MODE", string(ReimportOverwrite)))),
			LockTTL:      utils.GetenvDuration("IMPORT_LOCK_TTL", 2*time.Minute),
		},
		LogLevel:           utils.Getenv("LOG_LEVEL", "info"),
		RedisAddress:       utils.Getenv("REDIS_ADDRESS", ""),
		DefaultPhoneRegion: utils.Getenv("DEFAULT_PHONE_REGION", "US"),
		LowStockThreshold:  utils.GetenvInt("LOW_STOCK_THRESHOLD", 10),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DB.Driver)
	}
	switch c.Import.ReimportMode {
	case ReimportOverwrite, ReimportAdjust:
	default:
		return fmt.Errorf("unsupported IMPORT_REIMPORT_MODE %q (want overwrite or adjust)", c.Import.ReimportMode)
	}
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET must be set outside development")
		}
		c.Auth.JWTSecret = "development-only-jwt-secret"
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// StoreConfig holds the per-tenant record store settings shared by every
// opened store handle.
type StoreConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// TenantConfig holds the tenant directory settings
type TenantConfig struct {
	// DirectoryFile is the JSON mapping of access codes to store locations.
	DirectoryFile string
	// StoreDir is where newly provisioned sqlite store files are placed.
	StoreDir string
	// AdminSecret gates the tenant management endpoints (a shared secret,
	// not a per-tenant user credential).
	AdminSecret string
	// Default administrator account seeded into every new tenant store.
	DefaultAdminUser     string
	DefaultAdminPassword string
}

// Config holds all configuration
type Config struct {
	Server  ServerConfig
	JWT     JWTConfig
	Log     LogConfig
	Metrics MetricsConfig
	Store   StoreConfig
	Tenant  TenantConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "inventoryservicesecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "inventory"),
		},
		Store: StoreConfig{
			MaxIdleConns:    getEnvAsInt("STORE_MAX_IDLE_CONNS", 5),
			MaxOpenConns:    getEnvAsInt("STORE_MAX_OPEN_CONNS", 20),
			ConnMaxLifetime: getEnvAsDuration("STORE_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("STORE_LOG_LEVEL", logger.Warn),
		},
		Tenant: TenantConfig{
			DirectoryFile:        getEnv("TENANTS_FILE", "tenants.json"),
			StoreDir:             getEnv("TENANTS_STORE_DIR", "tenants"),
			AdminSecret:          getEnv("TENANT_ADMIN_SECRET", ""),
			DefaultAdminUser:     getEnv("TENANT_DEFAULT_ADMIN_USER", "admin"),
			DefaultAdminPassword: getEnv("TENANT_DEFAULT_ADMIN_PASSWORD", "password"),
		},
	}

	if config.Tenant.AdminSecret == "" && config.Server.Env == "production" {
		return nil, fmt.Errorf("TENANT_ADMIN_SECRET must be set in production")
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("tenants_file", c.Tenant.DirectoryFile),
		zap.String("store_dir", c.Tenant.StoreDir),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Sandbox  SandboxConfig
	Firebase FirebaseConfig
	App      AppConfig
}

type ServerConfig struct {
	Port         string
	RateLimitRPS int
}

type DatabaseConfig struct {
	// DSN is the Postgres connection string. Empty means the in-memory
	// store is used instead (development and tests).
	DSN string
}

type RedisConfig struct {
	// Addr is the Redis host:port for route invocation stats. Empty
	// disables stats collection.
	Addr     string
	Password string
	DB       int
}

type SandboxConfig struct {
	// Timeout is the wall-clock budget for a single handler invocation.
	Timeout time.Duration
	// PythonBin is the interpreter binary used for Python endpoints.
	PythonBin string
}

type FirebaseConfig struct {
	CredentialsPath string
}

type AppConfig struct {
	Environment      string
	Version          string
	SessionSecret    string
	AdminUserID      string
	CascadeOnDelete  bool
	GeneratorBaseURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			RateLimitRPS: getEnvAsInt("RATE_LIMIT_RPS", 50),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Sandbox: SandboxConfig{
			Timeout:   time.Duration(getEnvAsInt("SANDBOX_TIMEOUT_MS", 10000)) * time.Millisecond,
			PythonBin: getEnv("PYTHON_BIN", "python3"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Environment:      getEnv("APP_ENV", "development"),
			Version:          getEnv("APP_VERSION", "1.0.0"),
			SessionSecret:    getEnv("SESSION_SECRET", ""),
			AdminUserID:      getEnv("ADMIN_USER_ID", ""),
			CascadeOnDelete:  getEnvAsBool("PROJECT_DELETE_CASCADE", true),
			GeneratorBaseURL: getEnv("GENERATOR_BASE_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Sandbox.Timeout <= 0 {
		return fmt.Errorf("SANDBOX_TIMEOUT_MS must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

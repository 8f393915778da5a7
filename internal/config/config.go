package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Audit    AuditConfig
	Roles    RoleConfig
	Notify   NotifyConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	KVTable           string
}

type ServerConfig struct {
	Port               string
	Env                string
	LogLevel           string
	AllowedOrigins     []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMinute int
	WriteRateLimit     int
	TrustedProxies     []string
	PageSize           int
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

type StorageConfig struct {
	Backend       string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type AuditConfig struct {
	Cap   int
	Scope string
}

// RoleConfig controls how role changes are confirmed.
type RoleConfig struct {
	SaveSimulation  bool
	SaveDelay       time.Duration
	SaveFailureRate float64
	UndoWindow      time.Duration
}

type NotifyConfig struct {
	Provider  string
	AWSRegion string
	EmailFrom string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "warden"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			KVTable:           getEnv("DB_KV_TABLE", "kv_store"),
		},
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			Env:                env,
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			AllowedOrigins:     parseAllowedOrigins(env),
			ReadTimeout:        getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:        getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			WriteRateLimit:     getEnvAsInt("WRITE_RATE_LIMIT_PER_MINUTE", 30),
			TrustedProxies:     parseList(getEnv("TRUSTED_PROXIES", "")),
			PageSize:           getEnvAsInt("PAGE_SIZE", 10),
		},
		Auth: AuthConfig{
			JWTSecret:   jwtSecret,
			TokenExpiry: getEnvAsDuration("TOKEN_EXPIRY", 1*time.Hour),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", "memory")),
			DataDir:       getEnv("DATA_DIR", "./data"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_KEY_PREFIX", "warden:"),
		},
		Audit: AuditConfig{
			Cap:   getEnvAsInt("AUDIT_CAP", 10),
			Scope: strings.ToLower(getEnv("AUDIT_CAP_SCOPE", "global")),
		},
		Roles: RoleConfig{
			SaveSimulation:  getEnvAsBool("SAVE_SIMULATION", true),
			SaveDelay:       getEnvAsDuration("SAVE_DELAY", 1*time.Second),
			SaveFailureRate: getEnvAsFloat("SAVE_FAILURE_RATE", 0.2),
			UndoWindow:      getEnvAsDuration("UNDO_WINDOW", 5*time.Second),
		},
		Notify: NotifyConfig{
			Provider:  strings.ToLower(getEnv("NOTIFY_PROVIDER", "none")),
			AWSRegion: getEnv("AWS_REGION", "us-east-1"),
			EmailFrom: getEnv("EMAIL_FROM", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Validate JWT secret strength
	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "redis":
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of memory, file, redis, postgres (got %q)", c.Storage.Backend)
	}

	if c.Audit.Scope != "global" && c.Audit.Scope != "per_user" {
		return fmt.Errorf("AUDIT_CAP_SCOPE must be global or per_user (got %q)", c.Audit.Scope)
	}
	if c.Audit.Cap < 1 {
		return fmt.Errorf("AUDIT_CAP must be positive")
	}
	if c.Server.RateLimitPerMinute < 1 || c.Server.WriteRateLimit < 1 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.Server.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	if c.Roles.SaveFailureRate < 0 || c.Roles.SaveFailureRate > 1 {
		return fmt.Errorf("SAVE_FAILURE_RATE must be between 0 and 1")
	}

	switch c.Notify.Provider {
	case "none":
	case "ses":
		if c.Notify.EmailFrom == "" {
			return fmt.Errorf("EMAIL_FROM is required when NOTIFY_PROVIDER=ses")
		}
	default:
		return fmt.Errorf("NOTIFY_PROVIDER must be none or ses (got %q)", c.Notify.Provider)
	}

	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		return parseList(originsStr)
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}

// parseList splits a comma-separated value, dropping blanks.
func parseList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

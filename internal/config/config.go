package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	JWT        JWTConfig
	Governance GovernanceConfig
	Dispatch   DispatchConfig
	CORS       CORSConfig
	LogLevel   string
	LogFormat  string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// Addr returns host:port for the HTTP listener
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StorageConfig selects and configures the document store
type StorageConfig struct {
	Driver   string
	Oracle   OracleConfig
	Postgres PostgresConfig
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string
}

// GovernanceConfig holds document lifecycle settings
type GovernanceConfig struct {
	NearExpiryDays      int
	ExpirySweepInterval time.Duration
	CacheSize           int
	CacheTTL            time.Duration
}

// DispatchConfig sizes the post-commit side-effect dispatcher
type DispatchConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

// CORSConfig holds the allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables, reading a .env file
// first when one exists. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:  getIntOrDefault("SERVER_MAX_HEADER_BYTES", 1<<20), // 1MB default
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", DriverMemory)),
			Oracle: OracleConfig{
				Host:         getEnvOrDefault("ORACLE_HOST", "localhost"),
				Port:         getEnvOrDefault("ORACLE_PORT", "1521"),
				Service:      getEnvOrDefault("ORACLE_SERVICE", "ORCL"),
				User:         os.Getenv("ORACLE_USER"),
				Password:     os.Getenv("ORACLE_PASSWORD"),
				MaxOpenConns: getIntOrDefault("ORACLE_MAX_OPEN_CONNS", 25),
				MaxIdleConns: getIntOrDefault("ORACLE_MAX_IDLE_CONNS", 5),
				WalletPath:   os.Getenv("ORACLE_WALLET_PATH"),
				TNSAlias:     os.Getenv("ORACLE_TNS_ALIAS"),
			},
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getIntOrDefault("POSTGRES_PORT", 5432),
				Database: getEnvOrDefault("POSTGRES_DB", "docgov"),
				User:     getEnvOrDefault("POSTGRES_USER", "docgov"),
				Password: os.Getenv("POSTGRES_PASSWORD"),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: int32(getIntOrDefault("POSTGRES_MAX_CONNS", 10)),
			},
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Governance: GovernanceConfig{
			NearExpiryDays:      getIntOrDefault("NEAR_EXPIRY_DAYS", 30),
			ExpirySweepInterval: getDurationOrDefault("EXPIRY_SWEEP_INTERVAL", time.Hour),
			CacheSize:           getIntOrDefault("DOCUMENT_CACHE_SIZE", 1024),
			CacheTTL:            getDurationOrDefault("DOCUMENT_CACHE_TTL", 5*time.Minute),
		},
		Dispatch: DispatchConfig{
			Workers:     getIntOrDefault("DISPATCH_WORKERS", 2),
			QueueSize:   getIntOrDefault("DISPATCH_QUEUE_SIZE", 256),
			MaxAttempts: getIntOrDefault("DISPATCH_MAX_ATTEMPTS", 3),
			RetryDelay:  getDurationOrDefault("DISPATCH_RETRY_DELAY", 500*time.Millisecond),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("required environment variable JWT_SECRET is not set")
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverPostgres:
	case DriverOracle:
		if c.Storage.Oracle.User == "" {
			return errors.New("ORACLE_USER is required for the oracle storage driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, oracle, postgres; got %q", c.Storage.Driver)
	}
	if c.Governance.NearExpiryDays <= 0 {
		return fmt.Errorf("NEAR_EXPIRY_DAYS must be positive, got %d", c.Governance.NearExpiryDays)
	}
	if c.Governance.ExpirySweepInterval <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_INTERVAL must be positive, got %s", c.Governance.ExpirySweepInterval)
	}
	return nil
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

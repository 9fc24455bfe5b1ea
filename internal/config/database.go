package config

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/godror/godror"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// OracleConfig holds Oracle database configuration
type OracleConfig struct {
	Host         string
	Port         string
	Service      string
	User         string
	Password     string
	MaxOpenConns int
	MaxIdleConns int
	// Wallet configuration for Oracle Cloud (ADB)
	WalletPath string
	TNSAlias   string
}

// escapeDSNValue escapes special characters in DSN values to prevent injection
func escapeDSNValue(s string) string {
	// Escape backslashes first, then double quotes
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

// DSN returns the Oracle connection string
func (c OracleConfig) DSN() string {
	user := escapeDSNValue(c.User)
	password := escapeDSNValue(c.Password)

	// If wallet is configured, use wallet-based connection
	if c.WalletPath != "" && c.TNSAlias != "" {
		tnsAlias := escapeDSNValue(c.TNSAlias)
		walletPath := escapeDSNValue(c.WalletPath)
		return fmt.Sprintf(`user="%s" password="%s" connectString="%s" configDir="%s" walletLocation="%s"`,
			user, password, tnsAlias, walletPath, walletPath)
	}
	return fmt.Sprintf(`user="%s" password="%s" connectString="%s:%s/%s"`,
		user, password, c.Host, c.Port, c.Service)
}

// NewOracleDB creates a new Oracle database connection pool
func NewOracleDB(ctx context.Context, cfg OracleConfig) (*sql.DB, error) {
	db, err := sql.Open("godror", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

// URL returns the connection URL with the given scheme ("postgres" for pgx,
// "pgx5" for golang-migrate)
func (c PostgresConfig) URL(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// NewPostgresDB opens a pgx pool and exposes it as *sql.DB. The returned
// close func releases both.
func NewPostgresDB(ctx context.Context, cfg PostgresConfig) (*sql.DB, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL("postgres"))
	if err != nil {
		return nil, nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		db.Close()
		pool.Close()
	}, nil
}

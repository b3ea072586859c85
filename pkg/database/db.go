package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
)

type Config struct {
	// URL, when set, is used verbatim and the parts below are ignored.
	URL      string        `envconfig:"DATABASE_URL"`
	Host     string        `envconfig:"HOST" default:"localhost"`
	User     string        `envconfig:"USER" default:"postgres"`
	Password string        `envconfig:"PASSWORD"`
	Name     string        `envconfig:"DATABASE_NAME" default:"soap_db"`
	Port     int           `envconfig:"PORT" default:"5432"`
	SSLMode  string        `envconfig:"DATABASE_SSLMODE" default:"disable"`
	MaxConns int           `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	Timeout  time.Duration `envconfig:"DATABASE_TIMEOUT" default:"5s"`
	TimeZone string        `envconfig:"DATABASE_TIMEZONE"`
	Migrate  bool          `envconfig:"DATABASE_MIGRATE" default:"true"`
}

// ConfigFromEnv reads DB config from environment variables. Unset variables
// take their defaults; only malformed values are an error.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("database config: %w", err)
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	return cfg, nil
}

// DSN builds the lib/pq connection URL.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	// lib/pq forwards unknown keys as run-time parameters, so every pooled
	// connection starts in this time zone.
	if c.TimeZone != "" {
		q.Set("timezone", c.TimeZone)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Redacted is the DSN with the password masked, for logs.
func (c Config) Redacted() string {
	u, err := url.Parse(c.DSN())
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}

// Connect opens a *sql.DB and verifies connectivity with a ping. The pool is
// bounded by MaxConns; callers beyond the bound wait for a free connection
// until their context expires.
func Connect(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

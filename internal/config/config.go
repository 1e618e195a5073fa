package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	SessionCookie = "cookie"
	SessionRedis  = "redis"

	minSessionSecretLen = 32
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port           string
	StoreDriver    string
	DatabaseURL    string
	SessionBackend string
	SessionSecret  string
	SessionTTL     time.Duration
	RedisURL       string
	CookieSecure   bool
	BcryptCost     int
	LogLevel       string
	LogDev         bool
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:           fallback(os.Getenv("PORT"), "8080"),
		StoreDriver:    strings.ToLower(fallback(os.Getenv("STORE_DRIVER"), StorePostgres)),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SessionBackend: strings.ToLower(fallback(os.Getenv("SESSION_BACKEND"), SessionCookie)),
		SessionSecret:  strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		RedisURL:       fallback(os.Getenv("REDIS_URL"), "redis://localhost:6379/0"),
		CookieSecure:   parseBool(os.Getenv("COOKIE_SECURE")),
		BcryptCost:     bcrypt.DefaultCost,
		LogLevel:       strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
		LogDev:         os.Getenv("LOG_DEV") == "1",
	}

	hours := fallback(os.Getenv("SESSION_TTL_HOURS"), "720")
	if ttlHours, err := strconv.Atoi(hours); err == nil && ttlHours >= 0 {
		cfg.SessionTTL = time.Duration(ttlHours) * time.Hour
	} else {
		cfg.SessionTTL = 720 * time.Hour
	}

	if cost, err := strconv.Atoi(strings.TrimSpace(os.Getenv("BCRYPT_COST"))); err == nil {
		cfg.BcryptCost = cost
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = databaseURLFromParts()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings required by the selected backends.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL (or DB_HOST and DB_NAME) is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.SessionBackend {
	case SessionCookie:
		if len(c.SessionSecret) < minSessionSecretLen {
			return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
		}
	case SessionRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// databaseURLFromParts builds a DSN from DB_HOST, DB_PORT, DB_USERNAME,
// DB_PASSWORD and DB_NAME. It returns "" unless host and name are set.
func databaseURLFromParts() string {
	host := strings.TrimSpace(os.Getenv("DB_HOST"))
	name := strings.TrimSpace(os.Getenv("DB_NAME"))
	if host == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, fallback(os.Getenv("DB_PORT"), "5432")),
		Path:   "/" + name,
	}
	if user := strings.TrimSpace(os.Getenv("DB_USERNAME")); user != "" {
		if password := os.Getenv("DB_PASSWORD"); password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

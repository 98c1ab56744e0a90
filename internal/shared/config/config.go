package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Document store backends
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins string

	// Document database
	DocumentStore string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	// Identity provider + sessions
	GoogleClientID string
	JWTSecret      string
	SessionTTL     time.Duration
	CookieSecure   bool

	// External RigBot backend
	BackendBaseURL string

	// Log viewer
	LogsAccessPassword string
	LogsTimezone       string

	// Redis (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool

	// Email (optional)
	EmailProvider string
	BrevoAPIKey   string
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function so tests can avoid the process env.
func FromEnv(getenv func(string) string) *Config {
	cfg := &Config{
		Port:               getenv("PORT"),
		Env:                getenv("ENV"),
		LogLevel:           getenv("LOG_LEVEL"),
		CORSOrigins:        strings.TrimSpace(getenv("CORS_ALLOWED_ORIGINS")),
		DocumentStore:      strings.ToLower(strings.TrimSpace(getenv("DOCUMENT_STORE"))),
		DatabaseURL:        getenv("DATABASE_URL"),
		MongoURI:           getenv("MONGO_URI"),
		MongoDatabase:      getenv("MONGO_DATABASE"),
		GoogleClientID:     getenv("GOOGLE_CLIENT_ID"),
		JWTSecret:          getenv("JWT_SECRET"),
		CookieSecure:       parseBool(getenv("COOKIE_SECURE")),
		BackendBaseURL:     strings.TrimRight(getenv("RIGBOT_PRODUCT_URL"), "/"),
		LogsAccessPassword: getenv("LOGS_ACCESS_PASSWORD"),
		LogsTimezone:       getenv("LOGS_TIMEZONE"),
		RedisAddr:          getenv("REDIS_ADDR"),
		RedisPassword:      getenv("REDIS_PASSWORD"),
		RedisTLS:           parseBool(getenv("REDIS_TLS")),
		EmailProvider:      getenv("EMAIL_PROVIDER"),
		BrevoAPIKey:        getenv("BREVO_API_KEY"),
		ResendAPIKey:       getenv("RESEND_API_KEY"),
		EmailFrom:          getenv("EMAIL_FROM"),
		EmailFromName:      getenv("EMAIL_FROM_NAME"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DocumentStore == "" {
		switch {
		case cfg.DatabaseURL != "":
			cfg.DocumentStore = StorePostgres
		case cfg.MongoURI != "":
			cfg.DocumentStore = StoreMongo
		default:
			cfg.DocumentStore = StorePostgres
		}
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "rigbot"
	}
	if cfg.LogsTimezone == "" {
		cfg.LogsTimezone = "America/Santiago"
	}
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = "RigBot"
	}

	cfg.SessionTTL = 24 * time.Hour
	if raw := getenv("SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	if raw := getenv("REDIS_DB"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.RedisDB = n
		}
	}

	return cfg
}

// MissingIdentity lists the variables the sign-in feature needs but lacks.
func (c *Config) MissingIdentity() []string {
	return missing(map[string]string{
		"GOOGLE_CLIENT_ID": c.GoogleClientID,
		"JWT_SECRET":       c.JWTSecret,
	})
}

// MissingDatabase lists the variables the selected document store needs but lacks.
func (c *Config) MissingDatabase() []string {
	switch c.DocumentStore {
	case StoreMemory:
		return nil
	case StoreMongo:
		return missing(map[string]string{"MONGO_URI": c.MongoURI})
	case StorePostgres:
		return missing(map[string]string{"DATABASE_URL": c.DatabaseURL})
	default:
		return []string{"DOCUMENT_STORE"}
	}
}

// MissingBackend lists the variables the calendar/widget features need but lack.
func (c *Config) MissingBackend() []string {
	return missing(map[string]string{"RIGBOT_PRODUCT_URL": c.BackendBaseURL})
}

// MissingLogsGate lists the variables the log viewer needs but lacks.
func (c *Config) MissingLogsGate() []string {
	return missing(map[string]string{
		"LOGS_ACCESS_PASSWORD": c.LogsAccessPassword,
		"JWT_SECRET":           c.JWTSecret,
	})
}

// AllowedOrigins is the CORS origin list, "*" when unset
func (c *Config) AllowedOrigins() string {
	if c.CORSOrigins == "" {
		return "*"
	}
	return c.CORSOrigins
}

// IsDevelopment reports whether the service runs in the development env.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Error describes a feature that is disabled because of missing configuration.
type Error struct {
	Feature string
	Missing []string
	// Cause is set when the feature is configured but its service could not
	// be reached at startup
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s is unavailable: %v", e.Feature, e.Cause)
	}
	return fmt.Sprintf("%s is not configured: missing %s", e.Feature, strings.Join(e.Missing, ", "))
}

func (e *Error) Unwrap() error { return e.Cause }

// UserMessage is the text rendered to the user when the feature is unavailable.
func (e *Error) UserMessage() string {
	if e.Cause != nil {
		return fmt.Sprintf("Error de conexión: %s no está disponible en este momento. Intenta nuevamente más tarde.", e.Feature)
	}
	return fmt.Sprintf("Error de configuración: %s no está disponible. Verifica las variables de entorno (%s).",
		e.Feature, strings.Join(e.Missing, ", "))
}

func missing(vars map[string]string) []string {
	var out []string
	for name, value := range vars {
		if strings.TrimSpace(value) == "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

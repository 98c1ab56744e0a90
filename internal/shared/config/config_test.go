package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(envOf(nil))

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DocumentStore != StorePostgres {
		t.Fatalf("store = %q", cfg.DocumentStore)
	}
	if cfg.LogsTimezone != "America/Santiago" {
		t.Fatalf("timezone = %q", cfg.LogsTimezone)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("ttl = %v", cfg.SessionTTL)
	}
	if cfg.AllowedOrigins() != "*" {
		t.Fatalf("origins = %q", cfg.AllowedOrigins())
	}
}

func TestFromEnvPicksMongoWhenOnlyMongoIsSet(t *testing.T) {
	cfg := FromEnv(envOf(map[string]string{"MONGO_URI": "mongodb://localhost"}))
	if cfg.DocumentStore != StoreMongo {
		t.Fatalf("store = %q", cfg.DocumentStore)
	}
	if len(cfg.MissingDatabase()) != 0 {
		t.Fatalf("missing = %v", cfg.MissingDatabase())
	}
}

func TestMissingVariables(t *testing.T) {
	cfg := FromEnv(envOf(map[string]string{
		"GOOGLE_CLIENT_ID":   "id",
		"RIGBOT_PRODUCT_URL": "https://rigbot.example.com/",
	}))

	if got := cfg.MissingIdentity(); !reflect.DeepEqual(got, []string{"JWT_SECRET"}) {
		t.Fatalf("identity missing = %v", got)
	}
	if got := cfg.MissingDatabase(); !reflect.DeepEqual(got, []string{"DATABASE_URL"}) {
		t.Fatalf("database missing = %v", got)
	}
	if got := cfg.MissingBackend(); len(got) != 0 {
		t.Fatalf("backend missing = %v", got)
	}
	if cfg.BackendBaseURL != "https://rigbot.example.com" {
		t.Fatalf("backend url = %q", cfg.BackendBaseURL)
	}

	mem := FromEnv(envOf(map[string]string{"DOCUMENT_STORE": "Memory"}))
	if len(mem.MissingDatabase()) != 0 {
		t.Fatalf("memory store needs nothing, got %v", mem.MissingDatabase())
	}
	bad := FromEnv(envOf(map[string]string{"DOCUMENT_STORE": "sqlite"}))
	if got := bad.MissingDatabase(); !reflect.DeepEqual(got, []string{"DOCUMENT_STORE"}) {
		t.Fatalf("unknown store missing = %v", got)
	}
}

func TestLogsGateNeedsSigningSecret(t *testing.T) {
	cfg := FromEnv(envOf(map[string]string{"LOGS_ACCESS_PASSWORD": "pw"}))
	if got := cfg.MissingLogsGate(); !reflect.DeepEqual(got, []string{"JWT_SECRET"}) {
		t.Fatalf("logs gate missing = %v", got)
	}

	cfg = FromEnv(envOf(map[string]string{"LOGS_ACCESS_PASSWORD": "pw", "JWT_SECRET": "s"}))
	if got := cfg.MissingLogsGate(); len(got) != 0 {
		t.Fatalf("logs gate missing = %v", got)
	}
}

func TestErrorUserMessageNamesVariables(t *testing.T) {
	err := &Error{Feature: "Base de datos", Missing: []string{"DATABASE_URL"}}
	msg := err.UserMessage()
	if !strings.Contains(msg, "Base de datos") || !strings.Contains(msg, "DATABASE_URL") {
		t.Fatalf("message = %q", msg)
	}
}

func TestErrorWithCauseReportsOutage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &Error{Feature: "Base de datos", Cause: cause}
	if !errors.Is(err, cause) {
		t.Fatal("cause not unwrapped")
	}
	msg := err.UserMessage()
	if !strings.Contains(msg, "Base de datos") || !strings.Contains(msg, "conexión") {
		t.Fatalf("message = %q", msg)
	}
	if strings.Contains(msg, "connection refused") {
		t.Fatalf("message leaks driver error: %q", msg)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIRESTORE_PROJECT_ID": "salon-dev",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 20*time.Second {
		t.Errorf("unexpected shutdown timeout: %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Firestore.ProjectID != "salon-dev" {
		t.Errorf("unexpected firestore project: %s", cfg.Firestore.ProjectID)
	}
	if cfg.Notify.ProjectID != "salon-dev" {
		t.Errorf("expected notify project to default to firestore project, got %s", cfg.Notify.ProjectID)
	}
	if cfg.Notify.OrderTopic != defaultOrderTopic {
		t.Errorf("expected default order topic %s, got %s", defaultOrderTopic, cfg.Notify.OrderTopic)
	}
	if !cfg.Notify.Enabled {
		t.Error("expected notifications enabled by default")
	}
	if cfg.Checkout.OrderNumberPrefix != defaultOrderNumberPrefix {
		t.Errorf("expected default order number prefix %s, got %s", defaultOrderNumberPrefix, cfg.Checkout.OrderNumberPrefix)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"API_SERVER_PORT":                  "9090",
		"API_SERVER_READ_TIMEOUT":          "20s",
		"API_SERVER_WRITE_TIMEOUT":         "25s",
		"API_SERVER_IDLE_TIMEOUT":          "2m",
		"API_SERVER_SHUTDOWN_TIMEOUT":      "45s",
		"API_FIRESTORE_PROJECT_ID":         "salon-prod",
		"API_FIRESTORE_EMULATOR_HOST":      "localhost:8900",
		"API_NOTIFY_PROJECT_ID":            "salon-events",
		"API_NOTIFY_ORDER_TOPIC":           "orders-prod",
		"API_NOTIFY_ENABLED":               "false",
		"API_CHECKOUT_ORDER_NUMBER_PREFIX": "LUX",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 25*time.Second {
		t.Errorf("unexpected write timeout: %s", cfg.Server.WriteTimeout)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("unexpected idle timeout: %s", cfg.Server.IdleTimeout)
	}
	if cfg.Server.ShutdownTimeout != 45*time.Second {
		t.Errorf("unexpected shutdown timeout: %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Firestore.EmulatorHost != "localhost:8900" {
		t.Errorf("unexpected emulator host: %s", cfg.Firestore.EmulatorHost)
	}
	if cfg.Notify.ProjectID != "salon-events" {
		t.Errorf("unexpected notify project: %s", cfg.Notify.ProjectID)
	}
	if cfg.Notify.OrderTopic != "orders-prod" {
		t.Errorf("unexpected order topic: %s", cfg.Notify.OrderTopic)
	}
	if cfg.Notify.Enabled {
		t.Error("expected notifications disabled")
	}
	if cfg.Checkout.OrderNumberPrefix != "LUX" {
		t.Errorf("unexpected order number prefix: %s", cfg.Checkout.OrderNumberPrefix)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	fields := validationErr.Fields()
	found := false
	for _, field := range fields {
		if field == "Firestore.ProjectID" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Firestore.ProjectID in missing fields, got %v", fields)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	contents := "# local overrides\nexport API_FIRESTORE_PROJECT_ID=salon-local\nAPI_SERVER_PORT=\"7070\"\n"
	if err := os.WriteFile(envFile, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Firestore.ProjectID != "salon-local" {
		t.Errorf("unexpected firestore project: %s", cfg.Firestore.ProjectID)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
}

func TestLoadEnvMapOverridesDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("API_SERVER_PORT=7070\nAPI_FIRESTORE_PROJECT_ID=salon-file\n"), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	cfg, err := Load(
		WithEnvMap(map[string]string{"API_SERVER_PORT": "6060"}),
		WithoutSystemEnv(),
		WithEnvFile(envFile),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "6060" {
		t.Errorf("expected env map to win, got %s", cfg.Server.Port)
	}
	if cfg.Firestore.ProjectID != "salon-file" {
		t.Errorf("unexpected firestore project: %s", cfg.Firestore.ProjectID)
	}
}

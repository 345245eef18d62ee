package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := Default()
	want.DBPath = "/tmp/tasks.db"
	want.WebEnabled = true
	want.Notifications.DeviceTokens = []string{"abc"}

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("TASKMANAGERX_LOCALE=en\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// restored on cleanup; unset so the .env value applies
	t.Setenv("TASKMANAGERX_LOCALE", "")
	_ = os.Unsetenv("TASKMANAGERX_LOCALE")
	t.Setenv("TASKMANAGERX_DB", "/data/x.db")
	t.Setenv("TASKMANAGERX_WEB_PORT", "9090")
	t.Setenv("TASKMANAGERX_DEVICE_TOKENS", "a, b,,c")
	t.Setenv("TASKMANAGERX_FIREBASE_CREDENTIALS", "/secrets/fcm.json")

	cfg, err := ApplyEnv(Default(), envFile)
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.DBPath != "/data/x.db" || cfg.WebPort != 9090 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.Locale != "en" {
		t.Fatalf("expected locale from .env file, got %q", cfg.Locale)
	}
	if !reflect.DeepEqual(cfg.Notifications.DeviceTokens, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected tokens %v", cfg.Notifications.DeviceTokens)
	}
	if !cfg.Notifications.PushEnabled() {
		t.Fatalf("expected push to be enabled")
	}
}

func TestApplyEnvRejectsBadPort(t *testing.T) {
	t.Setenv("TASKMANAGERX_WEB_PORT", "eighty")
	if _, err := ApplyEnv(Default(), filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
}

func TestNotificationsInterval(t *testing.T) {
	if got := (Notifications{PollInterval: "5s"}).Interval(); got != 5*time.Second {
		t.Fatalf("expected 5s, got %v", got)
	}
	if got := (Notifications{PollInterval: "soon"}).Interval(); got != 30*time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
}

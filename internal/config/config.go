package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const appDir = "taskmanagerx"

type Notifications struct {
	Enabled             bool     `json:"enabled"`
	PollInterval        string   `json:"poll_interval"`
	FirebaseCredentials string   `json:"firebase_credentials,omitempty"`
	DeviceTokens        []string `json:"device_tokens,omitempty"`
}

type Config struct {
	DBPath        string        `json:"db_path"`
	WebEnabled    bool          `json:"web_enabled"`
	WebPort       int           `json:"web_port"`
	Locale        string        `json:"locale"`
	LogLevel      string        `json:"log_level"`
	LogPath       string        `json:"log_path,omitempty"`
	Notifications Notifications `json:"notifications"`
}

func Default() Config {
	return Config{
		WebPort:  8080,
		Locale:   "pt-BR",
		LogLevel: "info",
		Notifications: Notifications{
			Enabled:      true,
			PollInterval: "30s",
		},
	}
}

// Interval parses PollInterval, falling back to 30 seconds.
func (n Notifications) Interval() time.Duration {
	d, err := time.ParseDuration(n.PollInterval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// PushEnabled reports whether FCM delivery has enough configuration to run.
func (n Notifications) PushEnabled() bool {
	return n.FirebaseCredentials != "" && len(n.DeviceTokens) > 0
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appDir, "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv loads the given .env files (or ./.env) when present and lets
// TASKMANAGERX_* variables override cfg.
func ApplyEnv(cfg Config, envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	if v := os.Getenv("TASKMANAGERX_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKMANAGERX_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("TASKMANAGERX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKMANAGERX_WEB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("TASKMANAGERX_WEB_PORT: %w", err)
		}
		cfg.WebPort = port
	}
	if v := os.Getenv("TASKMANAGERX_FIREBASE_CREDENTIALS"); v != "" {
		cfg.Notifications.FirebaseCredentials = v
	}
	if v := os.Getenv("TASKMANAGERX_DEVICE_TOKENS"); v != "" {
		var tokens []string
		for _, token := range strings.Split(v, ",") {
			if token = strings.TrimSpace(token); token != "" {
				tokens = append(tokens, token)
			}
		}
		cfg.Notifications.DeviceTokens = tokens
	}
	return cfg, nil
}

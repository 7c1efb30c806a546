package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"9000\"\n"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("api key fallback = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Timeout != 60*time.Second {
		t.Errorf("timeout = %s", cfg.Gemini.Timeout)
	}
	if cfg.Media.VideoFrames != 5 {
		t.Errorf("video frames = %d", cfg.Media.VideoFrames)
	}
	if cfg.Database.Type != "sqlite" || cfg.Session.Store != "memory" {
		t.Errorf("stores = %s/%s", cfg.Database.Type, cfg.Session.Store)
	}
	if cfg.MaxUploadBytes() != 25<<20 {
		t.Errorf("max upload = %d", cfg.MaxUploadBytes())
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "from-env")
	t.Setenv("TEST_JWT", "secret")

	cfg, err := LoadConfig(writeConfig(t, `
gemini:
  api_key: "${TEST_GEMINI_KEY}"
  timeout: 15s
auth:
  jwt_secret: "${TEST_JWT}"
history:
  retention_days: 7
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gemini.APIKey != "from-env" || cfg.Auth.JWTSecret != "secret" {
		t.Errorf("expansion failed: %q %q", cfg.Gemini.APIKey, cfg.Auth.JWTSecret)
	}
	if cfg.Gemini.Timeout != 15*time.Second {
		t.Errorf("timeout = %s", cfg.Gemini.Timeout)
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("retention = %d", cfg.History.RetentionDays)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"postgres without url", "database:\n  type: postgres\n", "database.url"},
		{"unknown database", "database:\n  type: mongo\n", "unknown database type"},
		{"redis without url", "session:\n  store: redis\n", "redis_url"},
		{"odd retention", "history:\n  retention_days: 3\n", "retention_days"},
		{"bad yaml", "server: [", "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("missing file should fail")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.MaxBodySize != 1<<20 {
		t.Errorf("Server.MaxBodySize = %d, want %d", cfg.Server.MaxBodySize, 1<<20)
	}
	if cfg.AI.Timeout != 120*time.Second {
		t.Errorf("AI.Timeout = %v, want 120s", cfg.AI.Timeout)
	}
	if cfg.Storage.Type != "memory" || cfg.Storage.MaxSize != 1000 {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Auth.Type != "none" {
		t.Errorf("Auth.Type = %q, want %q", cfg.Auth.Type, "none")
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v", cfg.Observability.Metrics)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTORA_BACKEND_URL", "https://api.openai.com/v1")
	t.Setenv("LISTORA_API_KEY", "sk-env-key")
	t.Setenv("LISTORA_MODEL", "gpt-4o")
	t.Setenv("LISTORA_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AI.BackendURL != "https://api.openai.com/v1" {
		t.Errorf("BackendURL = %q", cfg.AI.BackendURL)
	}
	if cfg.AI.APIKey != "sk-env-key" {
		t.Errorf("APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.Engine.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.Engine.Model)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 7070
ai:
  backend_url: https://llm.internal/v1
engine:
  model: custom-model
  vision_model: custom-vision
  merge_mode: llm
storage:
  type: memory
  max_size: 50
auth:
  type: apikey
  api_keys:
    - key: sk-file-key
      subject: alice
      tenant_id: org-1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.AI.BackendURL != "https://llm.internal/v1" {
		t.Errorf("BackendURL = %q", cfg.AI.BackendURL)
	}
	if cfg.Engine.VisionModel != "custom-vision" || cfg.Engine.MergeMode != "llm" {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Storage.MaxSize != 50 {
		t.Errorf("MaxSize = %d, want 50", cfg.Storage.MaxSize)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0].Subject != "alice" {
		t.Errorf("APIKeys = %+v", cfg.Auth.APIKeys)
	}
	// Defaults survive partial files.
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default 30s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 7070
ai:
  backend_url: https://from-file/v1
`)

	t.Setenv("LISTORA_BACKEND_URL", "https://from-env/v1")
	t.Setenv("LISTORA_STORAGE_SIZE", "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AI.BackendURL != "https://from-env/v1" {
		t.Errorf("BackendURL = %q, env should win over file", cfg.AI.BackendURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, file value should survive", cfg.Server.Port)
	}
	if cfg.Storage.MaxSize != 25 {
		t.Errorf("MaxSize = %d, want 25", cfg.Storage.MaxSize)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_ConfigEnvDiscovery(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	path := writeFile(t, dir, "listora.yaml", `
ai:
  backend_url: https://discovered/v1
`)
	t.Setenv("LISTORA_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.BackendURL != "https://discovered/v1" {
		t.Errorf("BackendURL = %q", cfg.AI.BackendURL)
	}
}

func TestLoad_WorkingDirDiscovery(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "config.yaml", `
ai:
  backend_url: https://cwd/v1
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.BackendURL != "https://cwd/v1" {
		t.Errorf("BackendURL = %q", cfg.AI.BackendURL)
	}
}

func TestLoad_FileReferences(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeFile(t, dir, "api-key", "sk-secret-from-file\n")
	dsnPath := writeFile(t, dir, "dsn", "postgres://u:p@localhost/listora\n")
	authKeyPath := writeFile(t, dir, "auth-key", "sk-auth-from-file")

	path := writeFile(t, dir, "config.yaml", `
ai:
  backend_url: https://llm/v1
  api_key_file: `+keyPath+`
storage:
  type: postgres
  postgres:
    dsn_file: `+dsnPath+`
auth:
  type: apikey
  api_keys:
    - key_file: `+authKeyPath+`
      subject: alice
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AI.APIKey != "sk-secret-from-file" {
		t.Errorf("APIKey = %q, trailing whitespace should be trimmed", cfg.AI.APIKey)
	}
	if cfg.Storage.Postgres.DSN != "postgres://u:p@localhost/listora" {
		t.Errorf("DSN = %q", cfg.Storage.Postgres.DSN)
	}
	if cfg.Auth.APIKeys[0].Key != "sk-auth-from-file" {
		t.Errorf("auth key = %q", cfg.Auth.APIKeys[0].Key)
	}
}

func TestLoad_InlineValueWinsOverFileRef(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeFile(t, dir, "api-key", "sk-from-file")

	path := writeFile(t, dir, "config.yaml", `
ai:
  backend_url: https://llm/v1
  api_key: sk-inline
  api_key_file: `+keyPath+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "sk-inline" {
		t.Errorf("APIKey = %q, inline value should win", cfg.AI.APIKey)
	}
}

func TestLoad_APIKeysFromEnvJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTORA_BACKEND_URL", "https://llm/v1")
	t.Setenv("LISTORA_AUTH_TYPE", "apikey")
	t.Setenv("LISTORA_API_KEYS", `[{"key":"sk-1","subject":"alice","tenant_id":"org-1","service_tier":"premium"}]`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Auth.APIKeys) != 1 {
		t.Fatalf("APIKeys = %+v", cfg.Auth.APIKeys)
	}
	entry := cfg.Auth.APIKeys[0]
	if entry.Key != "sk-1" || entry.Subject != "alice" || entry.TenantID != "org-1" || entry.ServiceTier != "premium" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestLoad_BadEnvValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"non-numeric port", "LISTORA_PORT", "eighty"},
		{"non-numeric storage size", "LISTORA_STORAGE_SIZE", "lots"},
		{"malformed api keys json", "LISTORA_API_KEYS", "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("LISTORA_BACKEND_URL", "https://llm/v1")
			t.Setenv(tt.env, tt.value)

			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%q", tt.env, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Defaults()
		cfg.AI.BackendURL = "https://llm/v1"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"missing backend url", func(c *Config) { c.AI.BackendURL = "" }, "ai.backend_url"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative body size", func(c *Config) { c.Server.MaxBodySize = -1 }, "server.max_body_size"},
		{"temperature out of range", func(c *Config) { c.Engine.Temperature = 3.5 }, "engine.temperature"},
		{"bad merge mode", func(c *Config) { c.Engine.MergeMode = "magic" }, "engine.merge_mode"},
		{"bad storage type", func(c *Config) { c.Storage.Type = "redis" }, "storage.type"},
		{"memory size zero", func(c *Config) { c.Storage.MaxSize = 0 }, "storage.max_size"},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = "postgres" }, "storage.postgres.dsn"},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Type = "postgres"
			c.Storage.Postgres.DSN = "postgres://localhost/listora"
		}, ""},
		{"apikey without keys", func(c *Config) { c.Auth.Type = "apikey" }, "auth.api_keys"},
		{"apikey entry without subject", func(c *Config) {
			c.Auth.Type = "apikey"
			c.Auth.APIKeys = []APIKeyConfig{{Key: "sk-1"}}
		}, "subject required"},
		{"jwt without jwks url", func(c *Config) { c.Auth.Type = "jwt" }, "auth.jwt.jwks_url"},
		{"jwt with jwks url", func(c *Config) {
			c.Auth.Type = "jwt"
			c.Auth.JWT.JWKSURL = "https://auth/.well-known/jwks.json"
		}, ""},
		{"bad auth type", func(c *Config) { c.Auth.Type = "oauth" }, "auth.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 0
	cfg.Storage.Type = "redis"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"server.port", "ai.backend_url", "storage.type"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

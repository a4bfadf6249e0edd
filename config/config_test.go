package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Oracle.Endpoints, 1)
	assert.Equal(t, "ollama", cfg.Oracle.Endpoints[0].Provider)
	assert.Equal(t, 0.2, cfg.Oracle.Temperature)
	assert.Equal(t, 3*time.Minute, cfg.Oracle.Timeout)
	assert.Equal(t, ":8086", cfg.HTTP.Addr)
	assert.Equal(t, "compliance.spec-updates", cfg.Queue.Subject)
	assert.Empty(t, cfg.Events.BaseURL)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "no endpoints",
			mutate:  func(c *Config) { c.Oracle.Endpoints = nil },
			wantErr: "oracle.endpoints is required",
		},
		{
			name:    "endpoint missing provider",
			mutate:  func(c *Config) { c.Oracle.Endpoints[0].Provider = "" },
			wantErr: "provider is required",
		},
		{
			name:    "endpoint missing model",
			mutate:  func(c *Config) { c.Oracle.Endpoints[0].Model = "" },
			wantErr: "model is required",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Oracle.Temperature = 1.5 },
			wantErr: "temperature must be between 0 and 1",
		},
		{
			name:    "missing listen address",
			mutate:  func(c *Config) { c.HTTP.Addr = "" },
			wantErr: "http.addr is required",
		},
		{
			name: "events without credentials",
			mutate: func(c *Config) {
				c.Events.BaseURL = "https://events.example.com"
			},
			wantErr: "events.client_id and events.client_secret are required",
		},
		{
			name: "events with credentials",
			mutate: func(c *Config) {
				c.Events.BaseURL = "https://events.example.com"
				c.Events.ClientID = "id"
				c.Events.ClientSecret = "secret"
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "complianced.yaml")

	content := `
oracle:
  endpoints:
    - name: primary
      provider: openai
      model: gpt-4o-mini
    - name: fallback
      provider: ollama
      url: http://localhost:11434/v1
      model: qwen2.5:32b
  temperature: 0.1
http:
  addr: ":9090"
queue:
  nats_url: nats://localhost:4222
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Len(t, cfg.Oracle.Endpoints, 2)
	assert.Equal(t, "openai", cfg.Oracle.Endpoints[0].Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Oracle.Endpoints[0].Model)
	assert.Equal(t, 0.1, cfg.Oracle.Temperature)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "nats://localhost:4222", cfg.Queue.NATSURL)
	// Field not in the file keeps its default.
	assert.Equal(t, "compliance.spec-updates", cfg.Queue.Subject)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.HTTP.Addr = ":7070"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", loaded.HTTP.Addr)
	assert.Equal(t, cfg.Oracle.Endpoints, loaded.Oracle.Endpoints)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Events.ClientID = "base-id"

	override := &Config{}
	override.HTTP.Addr = ":9999"
	override.Events.ClientSecret = "override-secret"
	override.Oracle.Endpoints = []EndpointConfig{
		{Name: "custom", Provider: "anthropic", Model: "claude-sonnet"},
	}

	base.Merge(override)

	assert.Equal(t, ":9999", base.HTTP.Addr)
	require.Len(t, base.Oracle.Endpoints, 1)
	assert.Equal(t, "anthropic", base.Oracle.Endpoints[0].Provider)
	// Zero values in the override leave base values alone.
	assert.Equal(t, "base-id", base.Events.ClientID)
	assert.Equal(t, "override-secret", base.Events.ClientSecret)
	assert.Equal(t, "compliance.spec-updates", base.Queue.Subject)
}

func TestMerge_Nil(t *testing.T) {
	base := DefaultConfig()
	base.Merge(nil)
	assert.NoError(t, base.Validate())
}

func TestLoader_EnvironmentSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(`
http:
  addr: ":8087"
`), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("EVENT_API_BASE_URL", "https://events.example.com")
	t.Setenv("EVENT_API_CLIENT_ID", "env-id")
	t.Setenv("EVENT_API_CLIENT_SECRET", "env-secret")

	cfg, err := NewLoader(nil).Load()
	require.NoError(t, err)

	assert.Equal(t, ":8087", cfg.HTTP.Addr)
	assert.Equal(t, "https://events.example.com", cfg.Events.BaseURL)
	assert.Equal(t, "env-id", cfg.Events.ClientID)
	assert.Equal(t, "env-secret", cfg.Events.ClientSecret)
}

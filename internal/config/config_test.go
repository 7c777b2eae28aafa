package config

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/mcpgw/internal/domain"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Server.Name != "mcpgw" {
		t.Errorf("expected default server name mcpgw, got %q", cfg.Server.Name)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected default provider openai, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != domain.DefaultVectorDimensions {
		t.Errorf("expected default dimensions %d, got %d", domain.DefaultVectorDimensions, cfg.Embedding.Dimensions)
	}
	if cfg.Search.Driver != "http" {
		t.Errorf("expected default search driver http, got %q", cfg.Search.Driver)
	}
	if cfg.Search.Index != "mcpgw:idx" {
		t.Errorf("expected default index mcpgw:idx, got %q", cfg.Search.Index)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("expected default cache TTL 3600, got %d", cfg.Cache.TTLSec)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9090},
		Embedding: EmbeddingConfig{Provider: "http", Dimensions: 1536},
		Search:    SearchConfig{Driver: "redis", Index: "custom:idx"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port overridden: %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.Provider != "http" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("embedding settings overridden: %+v", cfg.Embedding)
	}
	if cfg.Search.Driver != "redis" || cfg.Search.Index != "custom:idx" {
		t.Errorf("search settings overridden: %+v", cfg.Search)
	}
}

func validConfig() Config {
	var cfg Config
	cfg.Embedding.BaseURL = "http://embed:8000"
	cfg.Embedding.Provider = "http"
	cfg.Search.BaseURL = "http://vectors:8100"
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid http stack",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: "http.port",
		},
		{
			name:    "unknown embedding provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "cohere" },
			wantErr: "embedding.provider",
		},
		{
			name:    "http provider requires base url",
			mutate:  func(c *Config) { c.Embedding.BaseURL = "" },
			wantErr: "embedding.base_url",
		},
		{
			name: "openai provider allows empty base url",
			mutate: func(c *Config) {
				c.Embedding.Provider = "openai"
				c.Embedding.BaseURL = ""
			},
		},
		{
			name:    "unknown search driver",
			mutate:  func(c *Config) { c.Search.Driver = "pgvector" },
			wantErr: "search.driver",
		},
		{
			name:    "http driver requires base url",
			mutate:  func(c *Config) { c.Search.BaseURL = "" },
			wantErr: "search.base_url",
		},
		{
			name: "redis driver requires addrs",
			mutate: func(c *Config) {
				c.Search.Driver = "redis"
				c.Search.Addrs = nil
			},
			wantErr: "search.addrs",
		},
		{
			name: "redis driver with addrs",
			mutate: func(c *Config) {
				c.Search.Driver = "redis"
				c.Search.Addrs = []string{"localhost:6379"}
			},
		},
		{
			name:    "cache enabled without addrs on http driver",
			mutate:  func(c *Config) { c.Cache.Enabled = true },
			wantErr: "cache.addrs",
		},
		{
			name: "cache enabled reuses redis driver store",
			mutate: func(c *Config) {
				c.Search.Driver = "redis"
				c.Search.Addrs = []string{"localhost:6379"}
				c.Cache.Enabled = true
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MCPGW_TEST_KEY", "secret")

	out := expandEnvVars([]byte("api_key: ${MCPGW_TEST_KEY}"))
	if string(out) != "api_key: secret" {
		t.Errorf("unexpected expansion: %q", out)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	t.Setenv("MCPGW_TEST_UNSET", "")

	out := expandEnvVars([]byte("port: ${MCPGW_TEST_UNSET:-8080}"))
	if string(out) != "port: 8080" {
		t.Errorf("unexpected expansion: %q", out)
	}

	t.Setenv("MCPGW_TEST_UNSET", "9000")
	out = expandEnvVars([]byte("port: ${MCPGW_TEST_UNSET:-8080}"))
	if string(out) != "port: 9000" {
		t.Errorf("unexpected expansion: %q", out)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local default, got %q", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}

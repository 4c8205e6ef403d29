package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		App:    AppConfig{Name: "test-service"},
		HTTP:   HTTPConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Search: SearchConfig{MaxNodesAStar: 100, MaxNodesBeam: 100, BeamWidths: []int{8}},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"missing app name", func(c *Config) { c.App.Name = "" }, "app.name"},
		{"invalid port - zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"invalid port - too high", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, "log.level"},
		{"valid debug level", func(c *Config) { c.Log.Level = "debug" }, ""},
		{"empty log level defaults", func(c *Config) { c.Log.Level = "" }, ""},
		{"zero astar limit", func(c *Config) { c.Search.MaxNodesAStar = 0 }, "max_nodes_astar"},
		{"negative beam limit", func(c *Config) { c.Search.MaxNodesBeam = -1 }, "max_nodes_beam"},
		{"negative beam width", func(c *Config) { c.Search.BeamWidths = []int{8, -1} }, "beam_widths"},
		{"zero beam width", func(c *Config) { c.Search.BeamWidths = []int{0} }, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"sqlite driver", func(c *Config) { c.Database.Driver = "sqlite" }, ""},
		{"unknown report format", func(c *Config) { c.Report.Formats = []string{"csv", "docx"} }, "report.formats"},
		{"all report formats", func(c *Config) { c.Report.Formats = []string{"csv", "text", "json", "excel", "pdf"} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateDefaultsLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level to default to info, got %s", cfg.Log.Level)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name: "postgres",
			cfg: DatabaseConfig{
				Driver: "postgres", Host: "localhost", Port: 5432,
				Username: "user", Password: "pass", Database: "gridbench", SSLMode: "disable",
			},
			expected: "host=localhost port=5432 user=user password=pass dbname=gridbench sslmode=disable",
		},
		{
			name:     "sqlite",
			cfg:      DatabaseConfig{Driver: "sqlite", Database: "/tmp/runs.db"},
			expected: "/tmp/runs.db",
		},
		{
			name:     "memory",
			cfg:      DatabaseConfig{Driver: "memory"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.expected {
				t.Errorf("DSN() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCacheConfig_Address(t *testing.T) {
	cfg := CacheConfig{Host: "redis.local", Port: 6380}
	if got := cfg.Address(); got != "redis.local:6380" {
		t.Errorf("Address() = %v, want redis.local:6380", got)
	}
}

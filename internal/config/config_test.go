package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "hotseat-test"
database:
  path: "test.db"
business:
  start_hour: 9
  limit_hour: 18
  daily_capacity: 12
  types: ["haircut", "shave"]
redis:
  address: "localhost:6379"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}
	if cfg.Business.StartHour != 9 || cfg.Business.LimitHour != 18 {
		t.Errorf("expected business hours 9..18, got %d..%d", cfg.Business.StartHour, cfg.Business.LimitHour)
	}
	if len(cfg.Business.Types) != 2 {
		t.Errorf("expected 2 appointment types, got %d", len(cfg.Business.Types))
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.API.HTTP.Port)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
database:
  path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	cal := cfg.BusinessCalendar()
	if cal.StartHour != 8 || cal.LimitHour != 17 {
		t.Errorf("expected default business hours 8..17, got %d..%d", cal.StartHour, cal.LimitHour)
	}
	if cal.DailyCapacity != 10 {
		t.Errorf("expected default daily capacity 10, got %d", cal.DailyCapacity)
	}
	if len(cal.Types) == 0 {
		t.Error("expected default appointment types")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Business: BusinessConfig{StartHour: 8, LimitHour: 17, DailyCapacity: 10, Types: []string{"haircut"}},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				Business: BusinessConfig{StartHour: 8, LimitHour: 17, DailyCapacity: 10, Types: []string{"haircut"}},
			},
			wantErr: true,
		},
		{
			name: "inverted business hours",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Business: BusinessConfig{StartHour: 18, LimitHour: 8, DailyCapacity: 10, Types: []string{"haircut"}},
			},
			wantErr: true,
		},
		{
			name: "duplicate type",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Business: BusinessConfig{StartHour: 8, LimitHour: 17, DailyCapacity: 10, Types: []string{"haircut", "haircut"}},
			},
			wantErr: true,
		},
		{
			name: "zero capacity",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Business: BusinessConfig{StartHour: 8, LimitHour: 17, Types: []string{"haircut"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("HOTSEAT_DB_PATH", "/tmp/expanded.db")

	yamlContent := `
database:
  path: "${HOTSEAT_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "/tmp/expanded.db" {
		t.Errorf("expected expanded path, got %s", cfg.Database.Path)
	}
}

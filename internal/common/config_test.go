package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("Storage.Backend default = %q, want %q", cfg.Storage.Backend, "local")
	}
	if got := cfg.Refresh.GetInterval(); got != 5*time.Minute {
		t.Errorf("Refresh.GetInterval() = %v, want 5m", got)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FOLIO_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_RefreshIntervalEnvOverride_Duration(t *testing.T) {
	t.Setenv("FOLIO_REFRESH_INTERVAL", "90s")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if got := cfg.Refresh.GetInterval(); got != 90*time.Second {
		t.Errorf("Refresh.GetInterval() = %v, want 90s", got)
	}
}

func TestConfig_RefreshIntervalEnvOverride_Minutes(t *testing.T) {
	// Bare number is interpreted as minutes, like the original dashboard knob.
	t.Setenv("FOLIO_REFRESH_INTERVAL", "10")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if got := cfg.Refresh.GetInterval(); got != 10*time.Minute {
		t.Errorf("Refresh.GetInterval() = %v, want 10m", got)
	}
}

func TestConfig_SheetURLEnvOverride(t *testing.T) {
	t.Setenv("FOLIO_SHEET_URL", "https://script.example.com/exec")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Sheet.ScriptURL != "https://script.example.com/exec" {
		t.Errorf("Sheet.ScriptURL = %q, want env value", cfg.Clients.Sheet.ScriptURL)
	}
}

func TestLoadConfig_FileMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	data := []byte("environment = \"production\"\n\n[server]\nport = 9000\n\n[refresh]\ninterval = \"2m\"\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if got := cfg.Refresh.GetInterval(); got != 2*time.Minute {
		t.Errorf("Refresh.GetInterval() = %v, want 2m", got)
	}
	// Unset fields keep defaults.
	if cfg.Clients.CoinGecko.BaseURL == "" {
		t.Error("CoinGecko.BaseURL default lost after file merge")
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestQuoteSourceConfig_TimeoutFallback(t *testing.T) {
	c := QuoteSourceConfig{Timeout: "not-a-duration"}
	if got := c.GetTimeout(); got != 10*time.Second {
		t.Errorf("GetTimeout() = %v, want fallback 10s", got)
	}
}

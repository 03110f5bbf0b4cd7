package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9100 || cfg.MaxConcurrent != 5 || cfg.MaxQueueDepth != 20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ClaudeBinary != "claude" || cfg.PermissionMode != "default" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("AGENTGATE_PORT", "9200")
	t.Setenv("AGENTGATE_MAX_CONCURRENT", "10")
	t.Setenv("AGENTGATE_PROXY_API_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9200 || cfg.MaxConcurrent != 10 || cfg.ProxyAPIKey != "secret" {
		t.Fatalf("expected env vars to override defaults, got %+v", cfg)
	}
}

func TestLoad_YAMLOverlayAppliesWhenEnvUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9300\nmax_concurrent: 8\nclaude_binary: /opt/claude\n"), 0o600); err != nil {
		t.Fatalf("write overlay failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9300 || cfg.MaxConcurrent != 8 || cfg.ClaudeBinary != "/opt/claude" {
		t.Fatalf("expected overlay values, got %+v", cfg)
	}
}

func TestLoad_EnvWinsOverYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9300\n"), 0o600); err != nil {
		t.Fatalf("write overlay failed: %v", err)
	}
	t.Setenv("AGENTGATE_PORT", "9400")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9400 {
		t.Fatalf("expected env to win over overlay, got port=%d", cfg.Port)
	}
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	t.Setenv("AGENTGATE_PORT", "70000")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an out-of-range port to fail validation")
	}
}

func TestLoad_RejectsZeroMaxConcurrent(t *testing.T) {
	t.Setenv("AGENTGATE_MAX_CONCURRENT", "0")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected maxConcurrent=0 to fail validation")
	}
}

func TestConfig_CoreMapsFields(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	coreCfg := cfg.Core()
	if coreCfg.MaxConcurrent != cfg.MaxConcurrent || coreCfg.ClaudeBinary != cfg.ClaudeBinary {
		t.Fatalf("expected Core() to carry over scheduler-relevant fields, got %+v", coreCfg)
	}
}

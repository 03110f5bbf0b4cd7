// Package config resolves the gateway's startup configuration from the
// environment, optionally overlaid by an on-disk YAML file for operators
// who prefer a checked-in file over exported env vars. Environment
// variables always win over the file on conflict; nothing is re-read
// once the daemon has started.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kovacsdev/agentgate/internal/core"
)

// Config is the fully-resolved, immutable startup configuration.
type Config struct {
	Port             int
	MaxConcurrent    int
	MaxQueueDepth    int
	QueueTimeoutMs   int
	DefaultMaxTurns  int
	DefaultTimeoutMs int
	ProxyAPIKey      string
	PermissionMode   string
	ClaudeBinary     string
}

// fileOverlay is the shape of the optional YAML config file.
type fileOverlay struct {
	Port             *int    `yaml:"port"`
	MaxConcurrent    *int    `yaml:"max_concurrent"`
	MaxQueueDepth    *int    `yaml:"max_queue_depth"`
	QueueTimeoutMs   *int    `yaml:"queue_timeout_ms"`
	DefaultMaxTurns  *int    `yaml:"default_max_turns"`
	DefaultTimeoutMs *int    `yaml:"default_timeout_ms"`
	ProxyAPIKey      *string `yaml:"proxy_api_key"`
	PermissionMode   *string `yaml:"permission_mode"`
	ClaudeBinary     *string `yaml:"claude_binary"`
}

// DefaultOverlayPath returns the default location consulted for the
// optional YAML overlay, mirroring the teacher's convention of a dotfile
// under the operator's home directory.
func DefaultOverlayPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory failed: %w", err)
	}
	return filepath.Join(homeDir, ".agentgate", "config.yaml"), nil
}

// Load resolves the final Config: defaults, overlaid by the YAML file at
// overlayPath (if it exists), overlaid by AGENTGATE_* environment
// variables. overlayPath may be empty, in which case DefaultOverlayPath
// is consulted; a missing file is not an error.
func Load(overlayPath string) (Config, error) {
	path := strings.TrimSpace(overlayPath)
	if path == "" {
		resolved, err := DefaultOverlayPath()
		if err != nil {
			return Config{}, err
		}
		path = resolved
	}

	overlay, err := loadOverlay(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:             resolveInt("AGENTGATE_PORT", overlay.Port, 9100),
		MaxConcurrent:    resolveInt("AGENTGATE_MAX_CONCURRENT", overlay.MaxConcurrent, 5),
		MaxQueueDepth:    resolveInt("AGENTGATE_MAX_QUEUE_DEPTH", overlay.MaxQueueDepth, 20),
		QueueTimeoutMs:   resolveInt("AGENTGATE_QUEUE_TIMEOUT_MS", overlay.QueueTimeoutMs, 60000),
		DefaultMaxTurns:  resolveInt("AGENTGATE_DEFAULT_MAX_TURNS", overlay.DefaultMaxTurns, 2),
		DefaultTimeoutMs: resolveInt("AGENTGATE_DEFAULT_TIMEOUT_MS", overlay.DefaultTimeoutMs, 180000),
		ProxyAPIKey:      resolveString("AGENTGATE_PROXY_API_KEY", overlay.ProxyAPIKey, ""),
		PermissionMode:   resolveString("AGENTGATE_PERMISSION_MODE", overlay.PermissionMode, "default"),
		ClaudeBinary:     resolveString("AGENTGATE_CLAUDE_BINARY", overlay.ClaudeBinary, "claude"),
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadOverlay(path string) (fileOverlay, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileOverlay{}, nil
		}
		return fileOverlay{}, fmt.Errorf("read config overlay failed: %w", err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fileOverlay{}, fmt.Errorf("invalid config overlay %s: %w", path, err)
	}
	return overlay, nil
}

// resolveString returns the env var's value if set, else the overlay
// value if present, else def.
func resolveString(envKey string, overlayVal *string, def string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if overlayVal != nil && strings.TrimSpace(*overlayVal) != "" {
		return *overlayVal
	}
	return def
}

func resolveInt(envKey string, overlayVal *int, def int) int {
	if raw := strings.TrimSpace(os.Getenv(envKey)); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	if overlayVal != nil {
		return *overlayVal
	}
	return def
}

func validate(cfg Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", cfg.Port)
	}
	if cfg.MaxConcurrent < 1 {
		return fmt.Errorf("maxConcurrent must be >=1, got %d", cfg.MaxConcurrent)
	}
	if cfg.MaxQueueDepth < 0 {
		return fmt.Errorf("maxQueueDepth must be >=0, got %d", cfg.MaxQueueDepth)
	}
	if cfg.QueueTimeoutMs <= 0 {
		return fmt.Errorf("queueTimeoutMs must be >0, got %d", cfg.QueueTimeoutMs)
	}
	if cfg.DefaultMaxTurns < 1 {
		return fmt.Errorf("defaultMaxTurns must be >=1, got %d", cfg.DefaultMaxTurns)
	}
	if cfg.DefaultTimeoutMs <= 0 {
		return fmt.Errorf("defaultTimeoutMs must be >0, got %d", cfg.DefaultTimeoutMs)
	}
	return nil
}

// Core maps Config onto the core package's narrower Config shape.
func (c Config) Core() core.Config {
	return core.Config{
		MaxConcurrent:    c.MaxConcurrent,
		MaxQueueDepth:    c.MaxQueueDepth,
		QueueTimeoutMs:   c.QueueTimeoutMs,
		DefaultMaxTurns:  c.DefaultMaxTurns,
		DefaultTimeoutMs: c.DefaultTimeoutMs,
		PermissionMode:   c.PermissionMode,
		ClaudeBinary:     c.ClaudeBinary,
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the control-plane settings.
type Config struct {
	DataDir        string
	GRPCAddr       string
	LogLevel       string
	LogDevelopment bool
	// CompactOnStart rewrites the store WAL before serving.
	CompactOnStart bool
}

type fileConfig struct {
	DataDir        string `toml:"data_dir"`
	GRPCAddr       string `toml:"grpc_addr"`
	LogLevel       string `toml:"log_level"`
	LogDevelopment bool   `toml:"log_development"`
	CompactOnStart bool   `toml:"compact_on_start"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DataDir:  filepath.Join(".", "data", "control-plane-store"),
		GRPCAddr: ":50051",
		LogLevel: "info",
	}
}

// Load starts from Default, applies the TOML file at path (skipped when path
// is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load control-plane config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load control-plane config: unknown keys %v", undecoded)
	}

	if meta.IsDefined("data_dir") {
		cfg.DataDir = strings.TrimSpace(raw.DataDir)
	}
	if meta.IsDefined("grpc_addr") {
		cfg.GRPCAddr = strings.TrimSpace(raw.GRPCAddr)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_development") {
		cfg.LogDevelopment = raw.LogDevelopment
	}
	if meta.IsDefined("compact_on_start") {
		cfg.CompactOnStart = raw.CompactOnStart
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if env := getenv("STORE_DATA_DIR"); env != "" {
		cfg.DataDir = env
	}
	if env := getenv("CONTROL_PLANE_GRPC_ADDR"); env != "" {
		cfg.GRPCAddr = env
	}
	if env := getenv("LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
}

// Validate rejects settings the control plane cannot start with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.GRPCAddr == "" {
		return fmt.Errorf("grpc_addr cannot be empty")
	}
	return nil
}

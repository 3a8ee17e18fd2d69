package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads YAML config from path and applies basic validation.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDerived()
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("DX_RPC_USER"); v != "" {
		cfg.Gateway.User = v
	}
	if v := os.Getenv("DX_RPC_PASSWORD"); v != "" {
		cfg.Gateway.Password = v
	}
	return cfg, Validate(cfg)
}

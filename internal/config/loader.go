package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. PMINVADERS_BOARD_WIDTH.
const EnvPrefix = "PMINVADERS_"

// Source names where a configuration came from.
const (
	SourceEmbedded = "embedded"
	SourceBuiltin  = "builtin"
)

// LoadInvaders loads the game configuration and returns it with its source.
// Search order: customPath -> ~/.pminvaders/configs/invaders.yaml ->
// ./configs/invaders.yaml -> embedded default. Fields missing from a file keep
// their default values. Environment overrides are applied last and the result
// is validated.
func LoadInvaders(customPath string) (InvadersConfig, string, error) {
	cfg, source, err := loadInvadersYAML(customPath)
	if err != nil {
		return cfg, source, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, source, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, source, fmt.Errorf("invalid config from %s: %w", source, err)
	}
	return cfg, source, nil
}

func loadInvadersYAML(customPath string) (InvadersConfig, string, error) {
	cfg := DefaultInvadersConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, customPath, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, customPath, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, customPath, nil
	}

	// Try user config directory, then local configs directory
	candidates := []string{userConfigPath("invaders.yaml"), filepath.Join("configs", "invaders.yaml")}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		fileCfg := DefaultInvadersConfig()
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			return fileCfg, path, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultInvadersYAML, &cfg); err != nil {
		return DefaultInvadersConfig(), SourceBuiltin, nil // Fallback to hardcoded if embed fails
	}
	return cfg, SourceEmbedded, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pminvaders", "configs", filename)
}

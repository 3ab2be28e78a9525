package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the gauntlet configuration.
type Config struct {
	Provider            string        `json:"provider"`
	Model               string        `json:"model"`
	Format              string        `json:"format"`
	Namespace           string        `json:"namespace"`
	StorePath           string        `json:"storePath,omitempty"`
	Reviewers           []string      `json:"reviewers"`
	PersonasFile        string        `json:"personasFile,omitempty"`
	MaxTokens           int           `json:"maxTokens"`
	StageTimeoutSeconds int           `json:"stageTimeoutSeconds"`
	Privacy             PrivacyConfig `json:"privacy"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:            "anthropic",
		Model:               "claude-sonnet-4-20250514",
		Format:              "text",
		Namespace:           "default",
		Reviewers:           []string{"security", "integration", "data", "scalability"},
		MaxTokens:           2048,
		StageTimeoutSeconds: 120,
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for gauntlet.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gauntlet"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "gauntlet"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gauntlet"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "gauntlet"), nil
	default:
		return filepath.Join(home, ".config", "gauntlet"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EffectiveStorePath returns the store path to use: the configured one, or
// the default database file under the config directory.
func (c Config) EffectiveStorePath() (string, error) {
	if c.StorePath != "" {
		return c.StorePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gauntlet.db"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Namespace != "" {
		dst.Namespace = src.Namespace
	}
	if src.StorePath != "" {
		dst.StorePath = src.StorePath
	}
	if len(src.Reviewers) > 0 {
		dst.Reviewers = src.Reviewers
	}
	if src.PersonasFile != "" {
		dst.PersonasFile = src.PersonasFile
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.StageTimeoutSeconds > 0 {
		dst.StageTimeoutSeconds = src.StageTimeoutSeconds
	}
	// Bool fields from file: JSON zero value for bool is false, so a simple
	// merge cannot distinguish unset from false. Keep redaction on unless
	// both agree it is off.
	dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets || dst.Privacy.RedactSecrets
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GAUNTLET_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("GAUNTLET_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GAUNTLET_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("GAUNTLET_NAMESPACE"); v != "" {
		cfg.Namespace = v
	}
	if v := os.Getenv("GAUNTLET_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("GAUNTLET_REVIEWERS"); v != "" {
		cfg.Reviewers = splitList(v)
	}
	if v := os.Getenv("GAUNTLET_PERSONAS_FILE"); v != "" {
		cfg.PersonasFile = v
	}
	if v := os.Getenv("GAUNTLET_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("GAUNTLET_STAGE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StageTimeoutSeconds = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["namespace"]; ok && v != "" {
		cfg.Namespace = v
	}
	if v, ok := overrides["storePath"]; ok && v != "" {
		cfg.StorePath = v
	}
	if v, ok := overrides["reviewers"]; ok && v != "" {
		cfg.Reviewers = splitList(v)
	}
	if v, ok := overrides["personasFile"]; ok && v != "" {
		cfg.PersonasFile = v
	}
	if v, ok := overrides["maxTokens"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v, ok := overrides["stageTimeoutSeconds"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StageTimeoutSeconds = n
		}
	}
}

// SetField sets a single config field by key name. Returns error if key is
// unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "namespace":
		cfg.Namespace = value
	case "storePath":
		cfg.StorePath = value
	case "reviewers":
		cfg.Reviewers = splitList(value)
	case "personasFile":
		cfg.PersonasFile = value
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "stageTimeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("stageTimeoutSeconds must be an integer: %w", err)
		}
		cfg.StageTimeoutSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

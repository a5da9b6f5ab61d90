package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration using the layered approach. configPath is the
// value of the -config flag; empty means discovery.
func Load(configPath string) (Config, error) {
	cfg := Defaults()

	path, err := discoverConfigFile(configPath)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := resolveFileReferences(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// discoverConfigFile resolves which config file to use. Order: explicit
// path, LISTORA_CONFIG, ./config.yaml, /etc/listora/config.yaml. An
// explicitly named file must exist; discovered locations are optional.
func discoverConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv("LISTORA_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file %s (from LISTORA_CONFIG): %w", envPath, err)
		}
		return envPath, nil
	}

	for _, candidate := range []string{"config.yaml", "/etc/listora/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// applyEnvOverrides layers LISTORA_* environment variables over the
// config. Environment wins over the file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LISTORA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LISTORA_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("LISTORA_BACKEND_URL"); v != "" {
		cfg.AI.BackendURL = v
	}
	if v := os.Getenv("LISTORA_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	if v := os.Getenv("LISTORA_MODEL"); v != "" {
		cfg.Engine.Model = v
	}
	if v := os.Getenv("LISTORA_VISION_MODEL"); v != "" {
		cfg.Engine.VisionModel = v
	}
	if v := os.Getenv("LISTORA_SPEECH_MODEL"); v != "" {
		cfg.Engine.SpeechModel = v
	}

	if v := os.Getenv("LISTORA_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("LISTORA_STORAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LISTORA_STORAGE_SIZE: %w", err)
		}
		cfg.Storage.MaxSize = size
	}
	if v := os.Getenv("LISTORA_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}

	if v := os.Getenv("LISTORA_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
	if v := os.Getenv("LISTORA_API_KEYS"); v != "" {
		var keys []APIKeyConfig
		if err := json.Unmarshal([]byte(v), &keys); err != nil {
			return fmt.Errorf("LISTORA_API_KEYS: %w", err)
		}
		cfg.Auth.APIKeys = keys
	}

	return nil
}

// resolveFileReferences fills in values from their _file counterparts.
// The inline value wins when both are set.
func resolveFileReferences(cfg *Config) error {
	if cfg.AI.APIKey == "" && cfg.AI.APIKeyFile != "" {
		value, err := readSecretFile(cfg.AI.APIKeyFile)
		if err != nil {
			return fmt.Errorf("ai.api_key_file: %w", err)
		}
		cfg.AI.APIKey = value
	}

	if cfg.Storage.Postgres.DSN == "" && cfg.Storage.Postgres.DSNFile != "" {
		value, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = value
	}

	for i := range cfg.Auth.APIKeys {
		entry := &cfg.Auth.APIKeys[i]
		if entry.Key == "" && entry.KeyFile != "" {
			value, err := readSecretFile(entry.KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			entry.Key = value
		}
	}

	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

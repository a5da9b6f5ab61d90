package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for consistency. All problems are
// reported at once via errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size: must be positive, got %d", c.Server.MaxBodySize))
	}

	if c.AI.BackendURL == "" {
		errs = append(errs, errors.New("ai.backend_url: required (set LISTORA_BACKEND_URL or configure in file)"))
	}

	if c.Engine.Temperature < 0 || c.Engine.Temperature > 2 {
		errs = append(errs, fmt.Errorf("engine.temperature: must be between 0 and 2, got %g", c.Engine.Temperature))
	}
	switch c.Engine.MergeMode {
	case "", "deterministic", "llm":
	default:
		errs = append(errs, fmt.Errorf("engine.merge_mode: must be %q or %q, got %q", "deterministic", "llm", c.Engine.MergeMode))
	}

	switch c.Storage.Type {
	case "memory":
		if c.Storage.MaxSize <= 0 {
			errs = append(errs, fmt.Errorf("storage.max_size: must be positive, got %d", c.Storage.MaxSize))
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, errors.New("storage.postgres.dsn: required when storage.type is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type: must be %q or %q, got %q", "memory", "postgres", c.Storage.Type))
	}

	switch c.Auth.Type {
	case "none", "":
	case "apikey":
		if len(c.Auth.APIKeys) == 0 {
			errs = append(errs, errors.New("auth.api_keys: at least one key required when auth.type is apikey"))
		}
		for i, entry := range c.Auth.APIKeys {
			if entry.Key == "" && entry.KeyFile == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d]: key or key_file required", i))
			}
			if entry.Subject == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d]: subject required", i))
			}
		}
	case "jwt":
		if c.Auth.JWT.JWKSURL == "" {
			errs = append(errs, errors.New("auth.jwt.jwks_url: required when auth.type is jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.type: must be %q, %q or %q, got %q", "none", "apikey", "jwt", c.Auth.Type))
	}

	if c.Auth.RateLimit.Enabled && c.Auth.RateLimit.DefaultRPM < 0 {
		errs = append(errs, fmt.Errorf("auth.rate_limit.default_rpm: must not be negative, got %d", c.Auth.RateLimit.DefaultRPM))
	}

	return errors.Join(errs...)
}

// Command server runs the listora listing generation service.
//
// Configuration comes from a YAML file (discovered or via -config) layered
// with LISTORA_* environment variables:
//
//	LISTORA_BACKEND_URL   - OpenAI-compatible backend URL (required)
//	LISTORA_API_KEY       - Backend API key (optional)
//	LISTORA_MODEL         - Text generation model (optional)
//	LISTORA_VISION_MODEL  - Image analysis model (optional)
//	LISTORA_SPEECH_MODEL  - Transcription model (optional)
//	LISTORA_PORT          - Listen port (default: 8080)
//	LISTORA_STORAGE       - Storage type: "memory" or "postgres" (default: "memory")
//	LISTORA_STORAGE_SIZE  - Max drafts in memory store (default: 1000)
//	LISTORA_AUTH_TYPE     - Auth type: "none", "apikey" or "jwt" (default: "none")
//	LISTORA_API_KEYS      - JSON array of API key entries (for "apikey")
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/listora/listora/pkg/ai/openai"
	"github.com/listora/listora/pkg/auth"
	"github.com/listora/listora/pkg/auth/apikey"
	"github.com/listora/listora/pkg/auth/jwt"
	"github.com/listora/listora/pkg/auth/noop"
	"github.com/listora/listora/pkg/config"
	"github.com/listora/listora/pkg/engine"
	"github.com/listora/listora/pkg/storage/memory"
	"github.com/listora/listora/pkg/storage/postgres"
	"github.com/listora/listora/pkg/transport"
	transporthttp "github.com/listora/listora/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience. Missing .env is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file (default: discover)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Create AI provider.
	provider := openai.NewClient(cfg.AI.BackendURL, cfg.AI.APIKey, cfg.AI.Timeout)
	defer provider.Close()

	// Create draft store.
	store, cleanup, err := newStore(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer cleanup()

	// Create generation engine.
	eng, err := engine.New(provider, engine.Config{
		Model:       cfg.Engine.Model,
		VisionModel: cfg.Engine.VisionModel,
		SpeechModel: cfg.Engine.SpeechModel,
		Temperature: cfg.Engine.Temperature,
		MaxTokens:   cfg.Engine.MaxTokens,
		MergeMode:   cfg.Engine.MergeMode,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	// Build authentication middleware.
	authMW, err := newAuthMiddleware(cfg.Auth, logger)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}

	srv := transporthttp.NewServer(eng, store,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
		transporthttp.WithMiddleware(authMW),
	)

	logger.Info("server starting",
		"port", cfg.Server.Port,
		"backend", cfg.AI.BackendURL,
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type)

	return srv.ListenAndServe()
}

// newStore creates the configured draft store and a cleanup function.
func newStore(cfg config.StorageConfig, logger *slog.Logger) (transport.DraftStore, func(), error) {
	switch cfg.Type {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("storage enabled", "type", "postgres", "max_conns", cfg.Postgres.MaxConns)
		return store, func() { store.Close() }, nil

	default:
		store := memory.New(cfg.MaxSize)
		logger.Info("storage enabled", "type", "memory", "max_size", cfg.MaxSize)
		return store, func() {}, nil
	}
}

// newAuthMiddleware builds the authenticator chain and rate limiter from
// the auth configuration.
func newAuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) (transport.Middleware, error) {
	chain := &auth.Chain{Default: auth.No}

	switch cfg.Type {
	case "none", "":
		chain.Authenticators = []auth.Authenticator{&noop.Authenticator{}}

	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			metadata := map[string]string{}
			if k.TenantID != "" {
				metadata["tenant_id"] = k.TenantID
			}
			entries = append(entries, apikey.RawKeyEntry{
				Key: k.Key,
				Identity: auth.Identity{
					Subject:     k.Subject,
					ServiceTier: k.ServiceTier,
					Metadata:    metadata,
				},
			})
		}
		chain.Authenticators = []auth.Authenticator{apikey.New(entries)}

	case "jwt":
		chain.Authenticators = []auth.Authenticator{jwt.New(jwt.Config{
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
			JWKSURL:  cfg.JWT.JWKSURL,
		})}

	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Type)
	}

	var limiter auth.RateLimiter
	if cfg.RateLimit.Enabled {
		tiers := make(map[string]auth.TierConfig, len(cfg.RateLimit.Tiers))
		for tier, rpm := range cfg.RateLimit.Tiers {
			tiers[tier] = auth.TierConfig{RequestsPerMinute: rpm}
		}
		limiter = auth.NewInProcessLimiter(tiers, cfg.RateLimit.DefaultRPM)
	}

	return auth.Middleware(chain, limiter, logger, auth.DefaultBypassEndpoints), nil
}

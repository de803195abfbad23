package main

import (
	"context"
	"log/slog"

	"ghostwriter/internal/config"
	"ghostwriter/internal/identity"
)

// openIdentity returns the configured identity store and a func releasing it
func openIdentity(ctx context.Context, cfg config.IdentityConfig, logger *slog.Logger) (identity.Store, func(), error) {
	if cfg.Backend != config.BackendRedis {
		return identity.NewFileStore(cfg.Path, cfg.TTL, logger), func() {}, nil
	}

	client, err := identity.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := client.Close(); err != nil {
			logger.Debug("closing redis client", "error", err)
		}
	}
	return identity.NewRedisStore(client, cfg.Profile, cfg.TTL, logger), release, nil
}

// Package cli holds the work behind the datamodel commands: building a workspace from
// configuration and the validate, infuse, extract, palette and inspect operations.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/datamodel"
	"github.com/aretw0/datamodel/internal/adapters/file"
	redisstore "github.com/aretw0/datamodel/internal/adapters/redis"
	loamadapter "github.com/aretw0/datamodel/pkg/adapters/loam"
	"github.com/aretw0/datamodel/pkg/adapters/memory"
	redislock "github.com/aretw0/datamodel/pkg/adapters/redis"
	"github.com/aretw0/datamodel/pkg/config"
	"github.com/aretw0/datamodel/pkg/observability"
	"github.com/aretw0/datamodel/pkg/persistence/middleware"
	"github.com/aretw0/datamodel/pkg/ports"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/prometheus/client_golang/prometheus"
)

// Env is an opened workspace and what it needs to be shut down.
type Env struct {
	Workspace *datamodel.Workspace
	Registry  *prometheus.Registry
	// LoadErr joins the documents that failed to decode.
	LoadErr error
	closers []func() error
}

// Close releases store connections.
func (e *Env) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// storeFor builds the record store selected by cfg.Store. Loam is handled by the caller
// because it is not a RecordStore.
func storeFor(cfg config.Config, env *Env, logger *slog.Logger) (ports.RecordStore, ports.SchemaStore, ports.DistributedLocker, error) {
	switch cfg.Store {
	case config.StoreMemory:
		s := memory.NewStore()
		return s, s, nil, nil
	case config.StoreFile:
		s := file.New(filepath.Join(cfg.Dir, file.DefaultBasePath))
		return s, s, nil, nil
	case config.StoreRedis:
		opts := []redisstore.Option{redisstore.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redisstore.WithTTL(cfg.Redis.TTL))
		}
		s := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		env.closers = append(env.closers, s.Close)
		logger.Info("using redis store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return s, s, redislock.NewLocker(s.Client(), cfg.Redis.Prefix), nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// middlewares returns the store wrappers asked for by cfg.
func middlewares(cfg config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Redact))
	}
	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return mws, nil
}

// OpenWorkspace builds the workspace described by cfg and loads it. Load errors on single
// documents are logged and do not fail the call.
func OpenWorkspace(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env := &Env{Registry: prometheus.NewRegistry()}
	metrics, err := observability.NewMetrics(env.Registry)
	if err != nil {
		return nil, err
	}

	opts := []datamodel.Option{
		datamodel.WithLogger(logger),
		datamodel.WithMetrics(metrics),
		datamodel.WithRegistry(variants.NewRegistry(variants.WithPaletteCut(cfg.Palette.Cut))),
	}

	if cfg.Store == config.StoreLoam {
		if cfg.EncryptionKey != "" || len(cfg.Redact) > 0 {
			logger.Warn("encryption and redaction apply to file, memory and redis stores only")
		}
		repo, err := loamadapter.Open(cfg.Dir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, datamodel.WithSource(repo), datamodel.WithSink(repo), datamodel.WithSchemaStore(repo))
	} else {
		store, schemas, locker, err := storeFor(cfg, env, logger)
		if err != nil {
			return nil, err
		}
		mws, err := middlewares(cfg)
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		opts = append(opts, datamodel.WithStore(middleware.Chain(store, mws...)), datamodel.WithSchemaStore(schemas))
		if locker != nil {
			opts = append(opts, datamodel.WithLocker(locker))
		}
	}

	ws, err := datamodel.Open(cfg.Dir, opts...)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.Workspace = ws
	if env.LoadErr = ws.Load(ctx); env.LoadErr != nil {
		logger.Warn("some documents were not loaded", "err", env.LoadErr)
	}
	return env, nil
}

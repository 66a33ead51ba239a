// Command server runs the Speaky client-session gateway.
//
//	@title						Speaky Gateway API
//	@version					1.0
//	@description				Client-session gateway of the Speaky messenger.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/speaky/gateway/docs"
	"github.com/speaky/gateway/internal/api"
	"github.com/speaky/gateway/internal/api/handler"
	"github.com/speaky/gateway/internal/core/ports"
	"github.com/speaky/gateway/internal/core/service"
	"github.com/speaky/gateway/internal/infrastructure/db"
	"github.com/speaky/gateway/internal/infrastructure/db/mongo"
	"github.com/speaky/gateway/internal/infrastructure/db/redis"
	"github.com/speaky/gateway/internal/infrastructure/memory"
	"github.com/speaky/gateway/internal/infrastructure/push"
	"github.com/speaky/gateway/internal/infrastructure/queue"
	"github.com/speaky/gateway/internal/infrastructure/remote"
	"github.com/speaky/gateway/internal/pkg/catalog"
	"github.com/speaky/gateway/internal/pkg/config"
	"github.com/speaky/gateway/internal/pkg/sealer"
	"github.com/speaky/gateway/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "speaky-gateway",
	})

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seal, err := sealer.New(cfg.SealKey)
	if err != nil {
		return fmt.Errorf("sealer: %w", err)
	}
	if seal == nil {
		log.Warn().Msg("SEAL_KEY not set, sessions are persisted unencrypted")
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	st, err := openStores(ctx, cfg, db.NewSessionCodec(seal), log)
	if err != nil {
		return err
	}
	defer st.close(log)

	rc := remote.New(remote.Config{
		AuthURL:   cfg.Upstream.AuthURL,
		UsersURL:  cfg.Upstream.UsersURL,
		ChatsURL:  cfg.Upstream.ChatsURL,
		UploadURL: cfg.Upstream.UploadURL,
		Timeout:   cfg.Upstream.Timeout,
	}, logger.Component("remote"))

	hub := push.NewHub(logger.Component("push"))
	dispatcher := queue.NewDispatcher(cfg.DispatchWorkers, hub, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	registry := service.NewRegistry(service.Deps{
		Remote: ports.Remote{
			Auth:   rc.Auth,
			Users:  rc.Users,
			Wallet: rc.Users,
			Chats:  rc.Chats,
			Upload: rc.Upload,
		},
		Sessions: st.sessions,
		Ledger:   st.ledger,
		Guard:    st.guard,
		Catalog:  cat,
		Events:   dispatcher,
		Log:      logger.Component("workspace"),
		IdleTTL:  cfg.SessionTTL,
	})
	registry.StartSweeper(ctx, sweepInterval)

	e := api.NewRouter(api.Deps{
		Registry:  registry,
		Tokens:    service.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL),
		Push:      hub,
		JWTSecret: cfg.JWTSecret,
		Probes:    st.probes,
		Log:       logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// stores are the storage adapters chosen by SESSIONS_DRIVER and LEDGER_DRIVER.
type stores struct {
	sessions ports.SessionRepository
	ledger   ports.LedgerRepository
	guard    ports.SubmitGuard
	probes   map[string]handler.Pinger

	mongo *gomongo.Client
	redis *goredis.Client
}

func openStores(ctx context.Context, cfg *config.Config, codec db.SessionCodec, log zerolog.Logger) (*stores, error) {
	st := &stores{probes: make(map[string]handler.Pinger)}

	var database *gomongo.Database
	if cfg.NeedsMongo() {
		client, d, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		st.mongo, database = client, d
		st.probes["mongodb"] = mongo.Pinger(client)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}
	if cfg.NeedsRedis() {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			st.close(log)
			return nil, err
		}
		st.redis = client
		st.probes["redis"] = redis.Pinger(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	switch cfg.SessionsDriver {
	case config.DriverRedis:
		st.sessions = redis.NewSessionRepository(st.redis, codec, cfg.SessionTTL)
		st.guard = redis.NewSubmitGuard(st.redis)
	case config.DriverMongo:
		repo := mongo.NewSessionRepository(database, codec)
		if err := repo.EnsureIndexes(ctx, cfg.SessionTTL); err != nil {
			st.close(log)
			return nil, err
		}
		st.sessions = repo
		st.guard = memory.NewSubmitGuard()
	default:
		st.sessions = memory.NewSessionRepository()
		st.guard = memory.NewSubmitGuard()
	}

	switch cfg.LedgerDriver {
	case config.DriverMongo:
		repo := mongo.NewLedgerRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			st.close(log)
			return nil, err
		}
		st.ledger = repo
	default:
		st.ledger = memory.NewLedgerRepository()
	}

	log.Info().
		Str("sessions", cfg.SessionsDriver).
		Str("ledger", cfg.LedgerDriver).
		Msg("storage ready")
	return st, nil
}

func (s *stores) close(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}
}

// @title        Account Service API
// @version      1.0
// @description  User registration, login and profile management.
// @BasePath     /
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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/myapp/account-service/internal/api"
	"github.com/myapp/account-service/internal/api/handler"
	"github.com/myapp/account-service/internal/core/ports"
	"github.com/myapp/account-service/internal/core/service"
	"github.com/myapp/account-service/internal/infrastructure/config"
	"github.com/myapp/account-service/internal/infrastructure/crypto"
	mongodb "github.com/myapp/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/myapp/account-service/internal/infrastructure/db/redis"
	"github.com/myapp/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "account-service",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Str("uri", cfg.Mongo.URI).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongodb.Disconnect(client, shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	repo := mongodb.NewUserRepository(db, cfg.Mongo.Collection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to create user indexes")
	}

	checks := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	var guard ports.RegistrationGuard
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	if rdb != nil {
		defer rdb.Close()
		guard = redisdb.NewRegistrationClaims(rdb, cfg.Redis.ClaimTTL)
		checks["redis"] = handler.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("registration claims enabled")
	}

	accounts := service.NewAccountService(repo, crypto.NewBcryptHasher(cfg.BcryptCost), guard, log)

	e := api.NewRouter(api.Deps{
		Accounts:          accounts,
		Checks:            checks,
		Log:               log,
		CORSAllowOrigins:  cfg.CORSAllowOrigins,
		MetricsRegisterer: prometheus.DefaultRegisterer,
		MetricsGatherer:   prometheus.DefaultGatherer,
	})

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server starting")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcms/admin-panel/internal/api"
	"github.com/mcms/admin-panel/internal/infrastructure/audit"
	mongodb "github.com/mcms/admin-panel/internal/infrastructure/db/mongo"
	redisdb "github.com/mcms/admin-panel/internal/infrastructure/db/redis"
	"github.com/mcms/admin-panel/internal/pkg/config"
	"github.com/mcms/admin-panel/pkg/logger"
)

// @title        Admin Panel API
// @version      1.0
// @description  Multi-tenant admin panel with JWT authentication, role-based access and project membership management.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongodb")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}

	userRepo := mongodb.NewUserRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure user indexes failed")
	}
	if err := projectRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure project indexes failed")
	}

	auditSink := audit.NewDispatcher(0, mongodb.NewAuditRepository(db), log)
	auditSink.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, auditSink, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting http server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}

	log.Info().Msg("server stopped")
}

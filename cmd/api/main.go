package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/crewlink/crewlink-api/docs"
	"github.com/crewlink/crewlink-api/internal/api"
	"github.com/crewlink/crewlink-api/internal/infrastructure/config"
	mongodb "github.com/crewlink/crewlink-api/internal/infrastructure/db/mongo"
	redisinfra "github.com/crewlink/crewlink-api/internal/infrastructure/db/redis"
	"github.com/crewlink/crewlink-api/pkg/logger"
)

// @title           CrewLink API
// @version         1.0
// @description     Freelance work records, coworker tagging, and the connection graph.
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	e, dispatcher := api.NewRouter(db, rdb, api.Options{
		JWTSecret:    cfg.JWTSecret,
		InviteTTL:    cfg.InviteTTL,
		SessionTTL:   cfg.SessionTTL,
		StatsWorkers: cfg.StatsWorkers,
	}, log)
	dispatcher.Start(ctx)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("crewlink api listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.NewWorkRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewConnectionRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewTokenRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewRoleRepository(db).EnsureIndexes(ctx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tesloshop/catalog-api/internal/api"
	"github.com/tesloshop/catalog-api/internal/api/handler"
	"github.com/tesloshop/catalog-api/internal/core/service"
	"github.com/tesloshop/catalog-api/internal/infrastructure/db/mongo"
	"github.com/tesloshop/catalog-api/internal/infrastructure/db/redis"
	"github.com/tesloshop/catalog-api/internal/infrastructure/queue"
	"github.com/tesloshop/catalog-api/internal/infrastructure/storage"
	"github.com/tesloshop/catalog-api/internal/pkg/config"
	"github.com/tesloshop/catalog-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	userRepo := mongo.NewUserRepository(db)
	productRepo := mongo.NewProductRepository(mongoClient, db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := productRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("product indexes failed")
	}

	imageStore, err := storage.NewDisk(cfg.StaticDir)
	if err != nil {
		log.Fatal().Err(err).Msg("image store init failed")
	}

	cleanup := queue.NewDispatcher(0, imageStore, cfg.BasePath+"/api/files/product", log)
	cleanup.Start(ctx)

	// --- Core services ---
	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	limiter := redis.NewLoginLimiter(rdb)
	authService := service.NewAuthService(userRepo, hasher, tokens, limiter, log)
	productService := service.NewProductService(productRepo, cleanup, log)
	seedService := service.NewSeedService(productService, userRepo, hasher, log)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:     handler.NewAuthHandler(authService),
		Products: handler.NewProductHandler(productService),
		Files:    handler.NewFilesHandler(imageStore, cfg.BasePath),
		Seed:     handler.NewSeedHandler(seedService),
		Tokens:   tokens,
		Resolver: authService,
		Mongo:    db,
		Redis:    rdb,
		Logger:   log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}

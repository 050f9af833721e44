package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docs "main/docs"
	appmarket "main/internal/application/service/market"
	appportfolio "main/internal/application/service/portfolio"
	"main/internal/config"
	"main/internal/infrastructure/cache"
	"main/internal/infrastructure/coingecko"
	infraportfolio "main/internal/infrastructure/portfolio"
	"main/internal/infrastructure/snapshot"
	infrahttp "main/internal/interfaces/http"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	docs.SwaggerInfo.Host = cfg.HTTP.Addr()

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	store, err := cache.NewStore(cfg.Cache.Dir, cacheTTL, logger)
	if err != nil {
		logger.Fatalf("failed to init cache store: %v", err)
	}

	snapshots := snapshot.NewLoader(cfg.Snapshot.Dir, logger)

	client := coingecko.NewClient(coingecko.Config{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.Key,
		VsCurrency: cfg.API.VsCurrency,
	}, store, snapshots, logger)

	portfolioRepo, err := infraportfolio.NewRepository(cfg.Portfolio.Path)
	if err != nil {
		logger.Fatalf("failed to init portfolio repo: %v", err)
	}
	defer func() {
		if closeErr := portfolioRepo.Close(); closeErr != nil {
			logger.Errorf("close portfolio repo: %v", closeErr)
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	marketService := appmarket.NewService(client)
	portfolioService := appportfolio.NewService(portfolioRepo, marketService)

	handler := infrahttp.NewHandler(marketService, portfolioService, redisClient, cacheTTL)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}

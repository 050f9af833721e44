package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"main/internal/domain/interfaces"
	"main/internal/infrastructure/coingecko"
	"main/internal/infrastructure/snapshot"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// cmd/snapshot pre-fetches the bundled JSON fixtures the snapshot loader
// serves, so deployments can run against static data instead of the
// rate-limited live API.

const (
	defaultOutDir    = snapshot.DefaultDir
	defaultChartCoin = "bitcoin"
	defaultChartDays = 7
	defaultPerPage   = 50
)

type snapshotConfig struct {
	OutDir    string
	BaseURL   string
	APIKey    string
	Currency  string
	ChartCoin string
	ChartDays int
	PerPage   int
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	// No store and no loader: every fetch here must be live.
	client := coingecko.NewClient(coingecko.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		VsCurrency: cfg.Currency,
	}, nil, nil, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeCoinList(gctx, client, cfg)
	})
	g.Go(func() error {
		return writeChart(gctx, client, cfg)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("snapshot failed: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"dir":   cfg.OutDir,
		"coin":  cfg.ChartCoin,
		"days":  cfg.ChartDays,
		"pages": 1,
	}).Info("snapshots written")
}

func loadConfig() (*snapshotConfig, error) {
	days := intEnv("SNAPSHOT_DAYS", defaultChartDays)
	if days <= 0 {
		return nil, fmt.Errorf("SNAPSHOT_DAYS must be positive, got %d", days)
	}
	perPage := intEnv("SNAPSHOT_PER_PAGE", defaultPerPage)
	if perPage <= 0 {
		return nil, fmt.Errorf("SNAPSHOT_PER_PAGE must be positive, got %d", perPage)
	}

	return &snapshotConfig{
		OutDir:    envOrDefault("SNAPSHOT_DIR", defaultOutDir),
		BaseURL:   envOrDefault("API_BASE_URL", coingecko.DefaultBaseURL),
		APIKey:    strings.TrimSpace(os.Getenv("API_KEY")),
		Currency:  envOrDefault("DEFAULT_CURRENCY", coingecko.DefaultVsCurrency),
		ChartCoin: envOrDefault("SNAPSHOT_COIN", defaultChartCoin),
		ChartDays: days,
		PerPage:   perPage,
	}, nil
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func intEnv(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func writeCoinList(ctx context.Context, client *coingecko.Client, cfg *snapshotConfig) error {
	coins, err := client.CoinsMarkets(ctx, interfaces.MarketsParams{
		VsCurrency: cfg.Currency,
		PerPage:    cfg.PerPage,
	})
	if err != nil {
		return fmt.Errorf("fetch coin list: %w", err)
	}
	return writeJSON(filepath.Join(cfg.OutDir, snapshot.CoinListFile), coins)
}

func writeChart(ctx context.Context, client *coingecko.Client, cfg *snapshotConfig) error {
	chart, err := client.CoinMarketChart(ctx, cfg.ChartCoin, cfg.ChartDays)
	if err != nil {
		return fmt.Errorf("fetch chart for %s: %w", cfg.ChartCoin, err)
	}
	return writeJSON(filepath.Join(cfg.OutDir, snapshot.ChartFile), chart)
}

func writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

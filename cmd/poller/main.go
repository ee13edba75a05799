package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/aman-zulfiqar/meteora-quoter/internal/cache"
	"github.com/aman-zulfiqar/meteora-quoter/internal/config"
	"github.com/aman-zulfiqar/meteora-quoter/internal/meteora"
	"github.com/aman-zulfiqar/meteora-quoter/internal/storage"
	"github.com/aman-zulfiqar/meteora-quoter/internal/stream"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main polls the public Meteora pool API and fans snapshots out to the log,
// Redis and ClickHouse until interrupted or the iteration cap is reached
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	loadEnv(logger)

	cfg := config.Load()
	pools := flag.String("pools", cfg.DynPoolAddress, "comma separated pool addresses")
	interval := flag.Duration("interval", cfg.PollInterval, "poll interval")
	maxIter := flag.Int("max", cfg.PollMaxIterations, "stop after this many polls (0 = until interrupted)")
	flag.Parse()

	cfg.PollInterval = *interval
	cfg.PollMaxIterations = *maxIter
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	logger.SetLevel(cfg.Level())

	addresses := splitCSV(*pools)
	if len(addresses) == 0 {
		logger.Fatal("no pools to poll: set -pools or DYN_POOL_ADDRESS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	var sinks []storage.SnapshotSink

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Logger: logger})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
		defer rc.Close()
		sinks = append(sinks, rc)
	}

	if cfg.ClickHouseAddr != "" {
		ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
			Logger:   logger,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to ClickHouse")
		}
		defer ch.Close()
		sinks = append(sinks, ch)
	}

	poller, err := stream.NewPoolPoller(stream.PoolPollerConfig{
		Fetcher:       meteora.NewClient(cfg.MeteoraAPIURL, cfg.HTTPTimeout),
		Addresses:     addresses,
		PollInterval:  cfg.PollInterval,
		MaxIterations: cfg.PollMaxIterations,
		RatePerSec:    cfg.PollRatePerSec,
		Logger:        logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create poller")
	}

	if err := poller.Start(ctx, stream.FanOut(logger, sinks...)); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("poller failed")
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

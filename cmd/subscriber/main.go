package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman-zulfiqar/meteora-quoter/internal/cache"
	"github.com/aman-zulfiqar/meteora-quoter/internal/config"
	"github.com/aman-zulfiqar/meteora-quoter/internal/constants"
	"github.com/sirupsen/logrus"
)

// main follows the pool snapshots the poller publishes on Redis
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down subscriber")
		cancel()
	}()

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Logger: logger})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer rc.Close()

	snaps, err := rc.SubscribeSnapshots(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe")
	}

	logger.WithField("channel", constants.PubSubChannelSnapshots).Info("subscriber running, press Ctrl+C to stop")
	for s := range snaps {
		logger.WithFields(logrus.Fields{
			"pool":       constants.TokenLabel(s.PoolAddress),
			"name":       s.PoolName,
			"tvl":        s.TVL,
			"fetched_at": s.FetchedAt,
		}).Info("received snapshot")
	}
}

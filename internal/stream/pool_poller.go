package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aman-zulfiqar/meteora-quoter/internal/models"
	"github.com/aman-zulfiqar/meteora-quoter/internal/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// PoolFetcher is the part of the Meteora API client the poller needs
type PoolFetcher interface {
	GetPools(ctx context.Context, addresses ...string) ([]models.PoolSnapshot, error)
}

// PoolPoller polls the public pool API on a fixed interval
type PoolPoller struct {
	fetcher       PoolFetcher
	addresses     []string
	pollInterval  time.Duration
	maxIterations int
	limiter       *rate.Limiter
	logger        *logrus.Logger

	mu      sync.Mutex
	running bool
	polls   int
}

// PoolPollerConfig holds configuration for the pool poller
type PoolPollerConfig struct {
	Fetcher      PoolFetcher
	Addresses    []string
	PollInterval time.Duration

	// MaxIterations stops the poller after that many polls; 0 polls until
	// the context is cancelled.
	MaxIterations int

	// RatePerSec caps request rate regardless of interval; 0 means 1/s.
	RatePerSec float64
	Logger     *logrus.Logger
}

// NewPoolPoller creates a new pool poller
func NewPoolPoller(cfg PoolPollerConfig) (*PoolPoller, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("pool fetcher is nil")
	}
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("at least one pool address is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if cfg.MaxIterations < 0 {
		return nil, fmt.Errorf("max iterations must not be negative")
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &PoolPoller{
		fetcher:       cfg.Fetcher,
		addresses:     cfg.Addresses,
		pollInterval:  cfg.PollInterval,
		maxIterations: cfg.MaxIterations,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		logger:        cfg.Logger,
	}, nil
}

// Start polls immediately and then on every tick. It returns nil once
// MaxIterations polls have run, or ctx.Err() when cancelled. A failed poll
// is logged and the loop carries on.
func (p *PoolPoller) Start(ctx context.Context, handler storage.SnapshotHandler) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.polls = 0
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.WithFields(logrus.Fields{
		"interval":       p.pollInterval,
		"pools":          p.addresses,
		"max_iterations": p.maxIterations,
	}).Info("starting pool polling")

	for {
		if err := p.poll(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.WithError(err).Error("poll error")
		}

		if p.done() {
			p.logger.WithField("polls", p.Polls()).Info("pool polling finished")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Polls reports how many polls the current or last run made.
func (p *PoolPoller) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func (p *PoolPoller) done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxIterations > 0 && p.polls >= p.maxIterations
}

func (p *PoolPoller) poll(ctx context.Context, handler storage.SnapshotHandler) error {
	p.mu.Lock()
	p.polls++
	n := p.polls
	p.mu.Unlock()

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	snaps, err := p.fetcher.GetPools(ctx, p.addresses...)
	if err != nil {
		return fmt.Errorf("failed to get pools: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"poll":  n,
		"count": len(snaps),
	}).Debug("fetched pools")

	if handler != nil {
		handler(ctx, snaps)
	}
	return nil
}

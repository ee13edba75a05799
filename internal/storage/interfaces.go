package storage

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/aman-zulfiqar/meteora-quoter/internal/models"
)

// QuoteCache defines the interface for caching raw quote responses
type QuoteCache interface {
	// GetQuote returns a cached response or cache.ErrCacheMiss
	GetQuote(ctx context.Context, key string) (json.RawMessage, error)

	// SetQuote stores a response for ttl
	SetQuote(ctx context.Context, key string, body json.RawMessage, ttl time.Duration) error

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer
}

// SnapshotSink receives pool snapshots produced by the poller
type SnapshotSink interface {
	// SaveSnapshots records a batch of snapshots
	SaveSnapshots(ctx context.Context, snaps []models.PoolSnapshot) error
}

// SnapshotReader serves recently recorded snapshots
type SnapshotReader interface {
	// GetRecentSnapshots retrieves the most recent snapshots, newest first
	GetRecentSnapshots(ctx context.Context, limit int64) ([]*models.PoolSnapshot, error)
}

// SnapshotStore defines the interface for persistent snapshot storage
type SnapshotStore interface {
	SnapshotSink

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}

// SnapshotHandler is a function that processes one poll's snapshots
type SnapshotHandler func(ctx context.Context, snaps []models.PoolSnapshot)

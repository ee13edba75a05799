package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/aman-zulfiqar/meteora-quoter/internal/models"
	"github.com/sirupsen/logrus"
)

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS pool_snapshots (
		fetched_at   DateTime64(3),
		pool_address String,
		pool_name    String,
		pool_tvl     String,
		raw          String
	) ENGINE = MergeTree()
	ORDER BY (pool_address, fetched_at)
`

// ClickHouseStore persists pool snapshots for historical queries.
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

// ClickHouseConfig holds connection settings for ClickHouse
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Logger   *logrus.Logger
}

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, createSnapshotsTable); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create pool_snapshots table: %w", err)
	}

	cfg.Logger.WithField("addr", cfg.Addr).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: cfg.Logger}, nil
}

func (c *ClickHouseStore) SaveSnapshots(ctx context.Context, snaps []models.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO pool_snapshots (fetched_at, pool_address, pool_name, pool_tvl, raw)")
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot batch: %w", err)
	}
	for _, s := range snaps {
		if err := batch.Append(s.FetchedAt, s.PoolAddress, s.PoolName, s.TVL, string(s.Raw)); err != nil {
			return fmt.Errorf("failed to append snapshot: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert snapshots: %w", err)
	}
	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}

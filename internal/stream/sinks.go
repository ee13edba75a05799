package stream

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/meteora-quoter/internal/constants"
	"github.com/aman-zulfiqar/meteora-quoter/internal/models"
	"github.com/aman-zulfiqar/meteora-quoter/internal/storage"

	"github.com/sirupsen/logrus"
)

// FanOut returns a handler that logs every snapshot and hands the batch to
// each sink. A failing sink is logged and does not stop the others.
func FanOut(logger *logrus.Logger, sinks ...storage.SnapshotSink) storage.SnapshotHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return func(ctx context.Context, snaps []models.PoolSnapshot) {
		for _, s := range snaps {
			logger.WithFields(logrus.Fields{
				"pool": constants.TokenLabel(s.PoolAddress),
				"name": s.PoolName,
				"tvl":  s.TVL,
			}).Info("pool snapshot")
		}

		for _, sink := range sinks {
			if sink == nil {
				continue
			}
			sctx, cancel := context.WithTimeout(ctx, constants.SnapshotSinkTimeout)
			err := sink.SaveSnapshots(sctx, snaps)
			cancel()
			if err != nil {
				logger.WithError(err).WithField("sink", fmt.Sprintf("%T", sink)).Warn("snapshot sink failed")
			}
		}
	}
}

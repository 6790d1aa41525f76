package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	snapshotRetryBase = 500 * time.Millisecond
	snapshotRetries   = 4
)

type snapshotFunc func(ctx context.Context, userID uuid.UUID) error

func snapshotBackoff() retry.Backoff {
	return retry.WithMaxRetries(snapshotRetries, retry.NewExponential(snapshotRetryBase))
}

// processSnapshot runs the snapshot with backoff. It returns the last error
// once the retries are used up or ctx is done.
func processSnapshot(ctx context.Context, run snapshotFunc, userID uuid.UUID, backoff retry.Backoff, log logger.Logger) error {
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := run(ctx, userID); err != nil {
			log.Warn("Snapshot attempt failed",
				zap.String("user_id", userID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
}

package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// SnapshotUseCase copies the current portfolio of a user to object storage
// each time it changes.
type SnapshotUseCase struct {
	repo     portfolio.Repository
	uploader service.Uploader
	logger   logger.Logger
	now      func() time.Time
}

func NewSnapshotUseCase(repo portfolio.Repository, uploader service.Uploader, log logger.Logger) *SnapshotUseCase {
	return &SnapshotUseCase{
		repo:     repo,
		uploader: uploader,
		logger:   log,
		now:      time.Now,
	}
}

func SnapshotFolder(userID uuid.UUID) string {
	return fmt.Sprintf("portfolios/%s", userID.String())
}

// Execute returns nil for users that no longer exist so the event is not retried.
func (uc *SnapshotUseCase) Execute(ctx context.Context, userID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "Snapshot")
	defer span.End()

	doc, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			uc.logger.Warn("Skipping snapshot for missing user", zap.String("user_id", userID.String()))
			return nil
		}
		span.RecordError(err)
		return err
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperror.NewInternal("failed to encode snapshot", err)
	}

	timestamp := uc.now().UTC().Format("2006-01-02_15-04-05")
	folder := SnapshotFolder(userID)
	publicID := fmt.Sprintf("snapshot-%s", timestamp)

	url, err := uc.uploader.Upload(ctx, bytes.NewReader(payload), folder, publicID)
	if err != nil {
		uc.logger.Error("Failed to upload portfolio snapshot", err, zap.String("user_id", userID.String()))
		return apperror.NewInternal("failed to upload snapshot", err)
	}

	uc.logger.Info("Portfolio snapshot uploaded",
		zap.String("user_id", userID.String()),
		zap.String("url", url),
		zap.String("public_id", folder+"/"+publicID),
	)
	return nil
}

package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const publishTimeout = 5 * time.Second

var ErrNotAnObject = apperror.NewValidation("Portfolio must be a JSON object")

var tracer = otel.Tracer("portfolio_usecase")

type PortfolioUseCase struct {
	repo      portfolio.Repository
	cache     portfolio.Cache
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewPortfolioUseCase(repo portfolio.Repository, cache portfolio.Cache, publisher service.EventPublisher, log logger.Logger) *PortfolioUseCase {
	return &PortfolioUseCase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    log,
	}
}

// Get returns the stored document, {} if the user never saved one.
// A cached document is only served while the user row still exists.
func (uc *PortfolioUseCase) Get(ctx context.Context, userID uuid.UUID) (portfolio.Document, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	if doc, ok := uc.cache.Get(ctx, userID); ok {
		exists, err := uc.repo.Exists(ctx, userID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if exists {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return doc, nil
		}
		uc.cache.Invalidate(ctx, userID)
		return nil, user.ErrUserNotFound
	}

	doc, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.cache.Set(ctx, userID, doc)
	return doc, nil
}

// Save replaces the whole document. There is no version check; the last
// writer wins. The cache entry is dropped rather than rewritten so the next
// read reflects whichever save the store kept.
func (uc *PortfolioUseCase) Save(ctx context.Context, userID uuid.UUID, doc portfolio.Document) (portfolio.Document, error) {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	if doc == nil {
		return nil, ErrNotAnObject
	}

	saved, err := uc.repo.Save(ctx, userID, doc)
	uc.cache.Invalidate(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.publisher.PublishPortfolioUpdated(pubCtx, userID); err != nil {
			uc.logger.Error("Failed to publish Kafka 'updated' event", err, zap.String("user_id", userID.String()))
		}
	}()

	return saved, nil
}

// Form returns the stored document merged over the blank form.
func (uc *PortfolioUseCase) Form(ctx context.Context, userID uuid.UUID) (portfolio.Portfolio, error) {
	doc, err := uc.Get(ctx, userID)
	if err != nil {
		return portfolio.Portfolio{}, err
	}
	return portfolio.MergeWithDefaults(doc), nil
}

func (uc *PortfolioUseCase) Validate(p portfolio.Portfolio) error {
	return p.Validate()
}

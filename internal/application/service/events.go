package service

import (
	"context"

	"github.com/google/uuid"
)

// EventPublisher announces domain changes to other processes. Publishing is
// best effort: callers log failures and never fail the request because of them.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, userID uuid.UUID) error
	PublishPortfolioUpdated(ctx context.Context, userID uuid.UUID) error
}

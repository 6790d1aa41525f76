package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

const publishTimeout = 5 * time.Second

type RegisterUseCase struct {
	userRepo  user.Repository
	hasher    auth.PasswordHasher
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewRegisterUseCase(repo user.Repository, hasher auth.PasswordHasher, publisher service.EventPublisher, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo:  repo,
		hasher:    hasher,
		publisher: publisher,
		logger:    log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*user.PublicView, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperror.NewValidation("Name, email and password are required")
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, apperror.NewValidation("Password must be at most 72 bytes")
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return nil, apperror.NewValidation("Name, email and password are required")
		}
		err = apperror.NewInternal("failed to hash password", err)
		span.RecordError(err)
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.userRepo.Create(ctx, u); err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("User registered", zap.String("user_id", u.ID.String()))

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.publisher.PublishUserRegistered(pubCtx, u.ID); err != nil {
			uc.logger.Error("Failed to publish Kafka 'registered' event", err, zap.String("user_id", u.ID.String()))
		}
	}()

	view := u.Public()
	return &view, nil
}

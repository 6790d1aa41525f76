package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

var ErrCredentialsRequired = apperror.NewValidation("Email and password are required")

type LoginUseCase struct {
	userRepo  user.Repository
	hasher    auth.PasswordHasher
	dummyHash string
	logger    logger.Logger
}

func NewLoginUseCase(repo user.Repository, hasher auth.PasswordHasher, log logger.Logger) *LoginUseCase {
	// Compared against when the email is unknown, so both failure paths pay for a bcrypt compare.
	dummy, err := hasher.Hash("timing-equaliser-not-a-real-password")
	if err != nil {
		log.Warn("Failed to prepare dummy password hash", zap.Error(err))
	}
	return &LoginUseCase{
		userRepo:  repo,
		hasher:    hasher,
		dummyHash: dummy,
		logger:    log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	User      user.PublicView
	SessionID uuid.UUID
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}

	u, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			span.RecordError(err)
			return nil, err
		}
		uc.hasher.Verify(input.Password, uc.dummyHash)
		uc.logger.Info("Login rejected", zap.String("reason", "user not found"))
		err = apperror.NewUnauthorized("user not found", nil)
		span.RecordError(err)
		return nil, err
	}

	if !uc.hasher.Verify(input.Password, u.PasswordHash) {
		uc.logger.Info("Login rejected", zap.String("reason", "password mismatch"), zap.String("user_id", u.ID.String()))
		err := apperror.NewUnauthorized("password mismatch", nil)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", u.ID.String()))
	return &LoginOutput{User: u.Public(), SessionID: u.ID}, nil
}

package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/pkg/apperror"
)

type User struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicView is the part of a user record that may leave the server.
type PublicView struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Public() PublicView {
	return PublicView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

var (
	ErrUserNotFound = apperror.NewAppError(apperror.ErrNotFound, "User not found", "user record does not exist", nil)
	ErrEmailTaken   = apperror.NewConflict("Email already registered", "users.email unique constraint")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}

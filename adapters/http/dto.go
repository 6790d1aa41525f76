package http

import (
	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/internal/domain/user"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CheckResponse is the identity returned by /api/auth/check.
type CheckResponse struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func ToCheckResponse(v *user.PublicView) CheckResponse {
	return CheckResponse{ID: v.ID, Name: v.Name, Email: v.Email}
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

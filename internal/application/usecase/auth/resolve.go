package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/internal/domain/user"
)

// IdentityResolver turns the id forwarded by the request gate into the
// user's public fields. The id may belong to a user deleted after the cookie
// was issued; that surfaces as user.ErrUserNotFound.
type IdentityResolver struct {
	userRepo user.Repository
}

func NewIdentityResolver(repo user.Repository) *IdentityResolver {
	return &IdentityResolver{userRepo: repo}
}

func (r *IdentityResolver) Resolve(ctx context.Context, id uuid.UUID) (*user.PublicView, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()

	u, err := r.userRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	view := u.Public()
	return &view, nil
}

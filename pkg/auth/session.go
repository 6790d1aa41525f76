package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "token"
	SessionMaxAge     = 7 * 24 * time.Hour

	SessionModePlain  = "plain"
	SessionModeSigned = "signed"
)

// SessionCodec moves a user id in and out of the session cookie.
type SessionCodec interface {
	Issue(userID uuid.UUID) (*http.Cookie, error)
	// Read returns false when the cookie is absent or does not decode to a user id.
	Read(r *http.Request) (uuid.UUID, bool)
}

type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	maxAge := o.MaxAge
	if maxAge <= 0 {
		maxAge = SessionMaxAge
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func rawSessionValue(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// PlainSessionCodec stores the bare user id in the cookie. The value is not
// signed, so any syntactically valid id is trusted.
type PlainSessionCodec struct {
	opts CookieOptions
}

func NewPlainSessionCodec(opts CookieOptions) *PlainSessionCodec {
	return &PlainSessionCodec{opts: opts}
}

func (c *PlainSessionCodec) Issue(userID uuid.UUID) (*http.Cookie, error) {
	return c.opts.cookie(userID.String()), nil
}

func (c *PlainSessionCodec) Read(r *http.Request) (uuid.UUID, bool) {
	raw, ok := rawSessionValue(r)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// SignedSessionCodec stores an HS256 JWT whose subject is the user id.
type SignedSessionCodec struct {
	jwtSvc *JWTService
	opts   CookieOptions
}

func NewSignedSessionCodec(jwtSvc *JWTService, opts CookieOptions) *SignedSessionCodec {
	return &SignedSessionCodec{jwtSvc: jwtSvc, opts: opts}
}

func (c *SignedSessionCodec) Issue(userID uuid.UUID) (*http.Cookie, error) {
	token, err := c.jwtSvc.GenerateToken(userID)
	if err != nil {
		return nil, err
	}
	return c.opts.cookie(token), nil
}

func (c *SignedSessionCodec) Read(r *http.Request) (uuid.UUID, bool) {
	raw, ok := rawSessionValue(r)
	if !ok {
		return uuid.Nil, false
	}
	claims, err := c.jwtSvc.ValidateToken(raw)
	if err != nil || claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func NewSessionCodec(mode, secret string, opts CookieOptions) (SessionCodec, error) {
	switch mode {
	case "", SessionModePlain:
		return NewPlainSessionCodec(opts), nil
	case SessionModeSigned:
		maxAge := opts.MaxAge
		if maxAge <= 0 {
			maxAge = SessionMaxAge
		}
		jwtSvc, err := NewJWTService(secret, maxAge)
		if err != nil {
			return nil, fmt.Errorf("signed session mode: %w", err)
		}
		return NewSignedSessionCodec(jwtSvc, opts), nil
	default:
		return nil, fmt.Errorf("unknown session mode %q", mode)
	}
}

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-builder/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// gateEngine records what reached the handler behind the gate.
type gateEngine struct {
	*gin.Engine
	hits       int
	seenHeader string
}

func newGateEngine(t *testing.T) *gateEngine {
	t.Helper()
	codec, err := auth.NewSessionCodec(auth.SessionModePlain, "", auth.CookieOptions{})
	require.NoError(t, err)

	g := &gateEngine{Engine: gin.New()}
	g.Use(RequestGate(codec))
	handler := func(c *gin.Context) {
		g.hits++
		g.seenHeader = c.GetHeader(HeaderUserID)
		c.String(http.StatusOK, "ok")
	}
	for _, p := range []string{"/api/portfolio", "/api/auth/login", "/api/auth/check", "/api/auth/register", "/api/test-db", "/portfolio", "/portfolio/edit", "/login", "/portfolios"} {
		g.GET(p, handler)
	}
	return g
}

func (g *gateEngine) do(path string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, o := range opts {
		o(req)
	}
	rr := httptest.NewRecorder()
	g.ServeHTTP(rr, req)
	return rr
}

func withSession(id string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: id})
	}
}

func withSpoofedHeader(id string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set(HeaderUserID, id)
	}
}

func TestRequestGate_ProtectedAPIWithoutSession(t *testing.T) {
	g := newGateEngine(t)

	rr := g.do("/api/portfolio")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())
	assert.Zero(t, g.hits)
}

func TestRequestGate_UnknownAPIPathIsStillGated(t *testing.T) {
	g := newGateEngine(t)

	rr := g.do("/api/does-not-exist")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestGate_ForwardsIdentity(t *testing.T) {
	g := newGateEngine(t)
	id := uuid.New()

	rr := g.do("/api/portfolio", withSession(id.String()))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, g.hits)
	assert.Equal(t, id.String(), g.seenHeader)
}

func TestRequestGate_ReplacesSpoofedHeader(t *testing.T) {
	g := newGateEngine(t)
	actual, forged := uuid.New(), uuid.New()

	g.do("/api/portfolio", withSession(actual.String()), withSpoofedHeader(forged.String()))
	assert.Equal(t, actual.String(), g.seenHeader)

	rr := g.do("/api/portfolio", withSpoofedHeader(forged.String()))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestGate_ExemptPathsPass(t *testing.T) {
	for _, p := range []string{"/api/auth/login", "/api/auth/check", "/api/auth/register", "/api/test-db"} {
		t.Run(p, func(t *testing.T) {
			g := newGateEngine(t)

			rr := g.do(p, withSpoofedHeader(uuid.NewString()))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, 1, g.hits)
			assert.Empty(t, g.seenHeader)
		})
	}
}

func TestRequestGate_InvalidCookieIsNoSession(t *testing.T) {
	g := newGateEngine(t)

	rr := g.do("/api/portfolio", withSession("not-a-uuid"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestGate_PortfolioPageRedirects(t *testing.T) {
	for _, p := range []string{"/portfolio", "/portfolio/edit"} {
		g := newGateEngine(t)

		rr := g.do(p)

		assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
		assert.Zero(t, g.hits)
	}

	g := newGateEngine(t)
	rr := g.do("/portfolio", withSession(uuid.NewString()))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequestGate_OtherPathsPass(t *testing.T) {
	for _, p := range []string{"/login", "/portfolios"} {
		g := newGateEngine(t)
		rr := g.do(p)
		assert.Equal(t, http.StatusOK, rr.Code, p)
	}
}

func TestGetUserIDFromGinContext(t *testing.T) {
	id := uuid.New()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserIDFromGinContext(c)
	assert.False(t, ok)

	c.Request.Header.Set(HeaderUserID, id.String())
	got, ok := GetUserIDFromGinContext(c)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

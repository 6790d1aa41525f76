package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

func serveError(err error) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(ErrorMiddleware(logger.NewNop()))
	router.GET("/", func(c *gin.Context) { c.Error(err) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	return rr
}

func TestErrorMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", apperror.NewValidation("Title is required"), http.StatusBadRequest, `{"error":"Title is required"}`},
		{"credentials", apperror.NewUnauthorized("password mismatch", nil), http.StatusUnauthorized, `{"error":"Invalid credentials"}`},
		{"not found", apperror.NewAppError(apperror.ErrNotFound, "User not found", "id x", nil), http.StatusNotFound, `{"error":"User not found"}`},
		{"conflict", apperror.NewConflict("Email already registered", "dup"), http.StatusConflict, `{"error":"Email already registered"}`},
		{"internal hides cause", apperror.NewInternal("pq: password authentication failed", errors.New("dial tcp 10.0.0.1:5432")), http.StatusInternalServerError, `{"error":"Internal server error"}`},
		{"plain error", errors.New("boom at /srv/app.go:12"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serveError(tc.err)
			assert.Equal(t, tc.status, rr.Code)
			assert.JSONEq(t, tc.body, rr.Body.String())
		})
	}
}

func TestErrorMiddleware_NoErrorPassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(ErrorMiddleware(logger.NewNop()))
	router.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}

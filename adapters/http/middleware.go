package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	// HeaderUserID carries the session's user id from the gate to handlers.
	// Inbound values are always discarded.
	HeaderUserID = "X-User-Id"

	GinContextKeyUserID = "userID"

	LoginPath = "/login"
)

// API paths reachable without a session. Matched exactly.
var exemptPaths = map[string]struct{}{
	"/api/auth/check":    {},
	"/api/test-db":       {},
	"/api/auth/register": {},
	"/api/auth/login":    {},
}

func isExempt(path string) bool {
	_, ok := exemptPaths[path]
	return ok
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// RequestGate runs on every request, before routing decides whether the
// path exists.
func RequestGate(codec auth.SessionCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Header.Del(HeaderUserID)
		path := c.Request.URL.Path

		switch {
		case underPrefix(path, "/api"):
			if isExempt(path) {
				c.Next()
				return
			}
			userID, ok := codec.Read(c.Request)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Request.Header.Set(HeaderUserID, userID.String())
			c.Set(GinContextKeyUserID, userID)
			c.Next()

		case underPrefix(path, "/portfolio"):
			if _, ok := codec.Read(c.Request); !ok {
				c.Redirect(http.StatusTemporaryRedirect, LoginPath)
				c.Abort()
				return
			}
			c.Next()

		default:
			c.Next()
		}
	}
}

// GetUserIDFromGinContext returns the id the gate resolved for this request.
func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(GinContextKeyUserID); ok {
		if userID, ok := v.(uuid.UUID); ok {
			return userID, true
		}
	}
	userID, err := uuid.Parse(c.GetHeader(HeaderUserID))
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if userID, ok := GetUserIDFromGinContext(c); ok {
			fields = append(fields, zap.String("user_id", userID.String()))
		}
		log.Info("HTTP request", fields...)
	}
}

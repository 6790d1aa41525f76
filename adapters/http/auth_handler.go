package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/application/usecase/auth"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	pkgauth "github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type AuthHandler struct {
	loginUseCase    *auth.LoginUseCase
	registerUseCase *auth.RegisterUseCase
	resolver        *auth.IdentityResolver
	codec           pkgauth.SessionCodec
	logger          logger.Logger
}

func NewAuthHandler(loginUC *auth.LoginUseCase, registerUC *auth.RegisterUseCase, resolver *auth.IdentityResolver, codec pkgauth.SessionCodec, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase:    loginUC,
		registerUseCase: registerUC,
		resolver:        resolver,
		codec:           codec,
		logger:          log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for login", err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	cookie, err := h.codec.Issue(output.SessionID)
	if err != nil {
		c.Error(apperror.NewInternal("failed to issue session cookie", err))
		return
	}
	http.SetCookie(c.Writer, cookie)

	h.logger.Info("User logged in", zap.String("user_id", output.SessionID.String()))
	c.JSON(http.StatusOK, output.User)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for register", err))
		return
	}

	view, err := h.registerUseCase.Execute(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Check is exempt from the gate and reads the session cookie itself.
func (h *AuthHandler) Check(c *gin.Context) {
	userID, ok := h.codec.Read(c.Request)
	if !ok {
		c.Error(apperror.NewUnauthenticated("no session cookie"))
		return
	}

	view, err := h.resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCheckResponse(view))
}

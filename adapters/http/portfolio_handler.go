package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type PortfolioHandler struct {
	portfolioUseCase *portfolioUC.PortfolioUseCase
	logger           logger.Logger
}

func NewPortfolioHandler(uc *portfolioUC.PortfolioUseCase, log logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioUseCase: uc,
		logger:           log,
	}
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthenticated("userID not found in context"))
		return
	}

	doc, err := h.portfolioUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *PortfolioHandler) SavePortfolio(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthenticated("userID not found in context"))
		return
	}

	var doc portfolio.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.Error(portfolioUC.ErrNotAnObject)
		return
	}

	saved, err := h.portfolioUseCase.Save(c.Request.Context(), userID, doc)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *PortfolioHandler) GetForm(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthenticated("userID not found in context"))
		return
	}

	form, err := h.portfolioUseCase.Form(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *PortfolioHandler) ValidatePortfolio(c *gin.Context) {
	var p portfolio.Portfolio
	if err := c.ShouldBindJSON(&p); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for portfolio validation", err))
		return
	}

	if err := h.portfolioUseCase.Validate(p); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{Valid: true})
}

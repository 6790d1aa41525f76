package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type RouterDeps struct {
	Logger           logger.Logger
	Codec            auth.SessionCodec
	AuthHandler      *AuthHandler
	PortfolioHandler *PortfolioHandler
	HealthHandler    *HealthHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLogger(d.Logger),
		RequestGate(d.Codec),
		ErrorMiddleware(d.Logger),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	router.GET("/health", d.HealthHandler.Health)
	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/portfolio") })
	router.GET(LoginPath, servePage("login.html"))
	router.GET("/portfolio", servePage("portfolio.html"))

	api := router.Group("/api")
	{
		api.GET("/test-db", d.HealthHandler.TestDB)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", d.AuthHandler.Login)
			authGroup.POST("/register", d.AuthHandler.Register)
			authGroup.GET("/check", d.AuthHandler.Check)
		}

		portfolios := api.Group("/portfolio")
		{
			portfolios.GET("", d.PortfolioHandler.GetPortfolio)
			portfolios.POST("", d.PortfolioHandler.SavePortfolio)
			portfolios.GET("/form", d.PortfolioHandler.GetForm)
			portfolios.POST("/validate", d.PortfolioHandler.ValidatePortfolio)
		}
	}

	return router
}

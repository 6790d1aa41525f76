package http

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/*.html
var pageFS embed.FS

func servePage(name string) gin.HandlerFunc {
	page, err := pageFS.ReadFile("web/" + name)
	if err != nil {
		panic(err)
	}
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
}

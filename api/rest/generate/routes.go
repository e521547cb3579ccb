package generate

import (
	"codeberg.org/printableperks/server/internal/auth"
	"codeberg.org/printableperks/server/internal/quota"
	"github.com/gin-gonic/gin"
)

// registers the coloring-page generation route
func RegisterRoutes(router *gin.RouterGroup, engine *quota.Engine, generator ImageGenerator, limit gin.HandlerFunc) {
	router.POST("/generate", limit, auth.OptionalAuthMiddleware(), Handler(engine, generator))
}

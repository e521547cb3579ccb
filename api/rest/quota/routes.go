package quota

import (
	"codeberg.org/printableperks/server/internal/auth"
	"codeberg.org/printableperks/server/internal/quota"
	"github.com/gin-gonic/gin"
)

// registers quota inspection routes
func RegisterRoutes(router *gin.RouterGroup, engine *quota.Engine) {
	group := router.Group("/quota")

	group.GET("/stats", auth.OptionalAuthMiddleware(), StatsHandler(engine))
	group.GET("/availability", auth.OptionalAuthMiddleware(), AvailabilityHandler(engine))
}

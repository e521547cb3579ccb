package quota

import (
	"net/http"

	"codeberg.org/printableperks/server/internal/auth"
	"codeberg.org/printableperks/server/internal/quota"
	"github.com/gin-gonic/gin"
)

// creates a handler returning the caller's generation statistics
func StatsHandler(engine *quota.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := auth.CallerFrom(c)

		c.JSON(http.StatusOK, engine.GetStats(c.Request.Context(), caller))
	}
}

// creates a handler reporting whether the caller may generate right now
func AvailabilityHandler(engine *quota.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := auth.CallerFrom(c)

		c.JSON(http.StatusOK, AvailabilityResponse{
			Available: engine.CheckAvailability(c.Request.Context(), caller),
		})
	}
}

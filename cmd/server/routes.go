package main

import (
	"time"

	"codeberg.org/printableperks/server/api/rest/generate"
	"codeberg.org/printableperks/server/api/rest/health"
	"codeberg.org/printableperks/server/api/rest/quota"
	"codeberg.org/printableperks/server/internal/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware())
	router.GET("/health", health.Handler)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		quota.RegisterRoutes(v1, server.services.Engine)
		generate.RegisterRoutes(v1, server.services.Engine, server.services.Images,
			ratelimit.GenerateMiddleware(server.redis))
	}
}

// allows the frontend to call the API from another origin. The device key
// header is exposed so anonymous browsers can persist the key the server
// mints for them.
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Device-Key"},
		ExposeHeaders: []string{"X-Device-Key"},
		MaxAge:        12 * time.Hour,
	})
}

// Package router assembles the gin engine and route table.
package router

import (
	"github.com/gin-gonic/gin"

	"dev.cogito.requiem/internal/handlers"
	"dev.cogito.requiem/internal/metrics"
)

// Options controls route assembly.
type Options struct {
	Mode           string // "debug", "release", or "test"
	MetricsEnabled bool
}

// SetupRouter builds the gin engine with the debate and admin routes.
func SetupRouter(debateHandler *handlers.DebateHandler, adminHandler *handlers.AdminHandler, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/debate", debateHandler.RunDebate)
		api.POST("/cancel", debateHandler.CancelAll)
		api.GET("/health", debateHandler.Health)
		api.GET("/debate/:report_id", adminHandler.GetDebate)
		api.POST("/reset", adminHandler.Reset)
	}

	if opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return r
}

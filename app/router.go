// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/auth"
)

// NewRouter builds the shared HTTP router. sender may be nil when no queue
// is configured; uploads are then stored but not enqueued.
func NewRouter(cfg *config.Config, sender MessageSender) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)
	router.POST("/search", SearchHandler(cfg))
	router.POST("/evaluate", EvaluateHandler)
	router.POST("/order", OrderHandler)

	var verifier *auth.Verifier
	if !cfg.Auth.Disabled {
		v, err := auth.NewVerifierFromConfig(cfg.Auth)
		if err != nil {
			return nil, err
		}
		verifier = v
	}

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{Disabled: cfg.Auth.Disabled}))
	protected.POST("/games/:username", UploadGames(cfg, sender))
	protected.GET("/errors/:username", GetErrorPositions)
	protected.GET("/jobs/:jobid", GetJobStatus)

	return router, nil
}

// requestLogger logs one line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

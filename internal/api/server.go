package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter wires every battle endpoint onto a new gin engine.
func SetupRouter(log *zap.Logger) *gin.Engine {
	h := NewHandler(log)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", healthHandler)

	battles := r.Group("/api/battles")
	battles.POST("/simulate", h.Simulate)
	battles.POST("/batch", h.Batch)
	battles.GET("/replay", h.Replay)

	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

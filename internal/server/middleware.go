package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"StockDeck/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id, reusing the caller's when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log *logger.Log) gin.HandlerFunc {
	entry := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry.WithFields(logger.Fields{
			"request_id":  c.GetString("request_id"),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
		}).Debug("request")
	}
}

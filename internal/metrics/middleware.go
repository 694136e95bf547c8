package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware counts every request into the registry.
func Middleware(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reg.RequestStarted()

		c.Next()

		reg.RequestFinished(c.Writer.Status(), time.Since(start))
	}
}

// Handler serves the registry snapshot as JSON.
func Handler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.Snapshot())
	}
}

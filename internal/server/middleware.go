package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
)

// quietPaths are polled by probes and scrapers and are not request-logged.
var quietPaths = []string{"/metrics", "/health", "/favicon.ico"}

// RequestLogger logs one line per request with zerolog.
func RequestLogger() gin.HandlerFunc {
	log := logx.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		for _, p := range quietPaths {
			if strings.HasPrefix(path, p) {
				return
			}
		}

		status := c.Writer.Status()
		e := log.Info()
		if status >= http.StatusInternalServerError {
			e = log.Error()
		} else if status >= http.StatusBadRequest {
			e = log.Warn()
		}
		if len(c.Errors) > 0 {
			e = e.Str("errors", c.Errors.String())
		}
		e.Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Recovery turns a handler panic into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logx.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/wedding-gallery/internal/ratelimit"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed", args...)
		case status >= http.StatusBadRequest:
			log.Warn("Request rejected", args...)
		default:
			log.Debug("Request served", args...)
		}
	}
}

func rateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Error: "Too many requests, please slow down",
				Code:  "rate_limited",
			})
			return
		}
		c.Next()
	}
}

func operatorOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{
				Error: "Operator actions are disabled on this server",
				Code:  "operator_disabled",
			})
			return
		}

		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Error: "Operator token required",
				Code:  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

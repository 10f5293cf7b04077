// Package middleware holds the Gin middleware shared by every route:
// correlation ids, caller identity, access logging with redaction, panic
// recovery, metrics, security headers, idempotency keys and rate limiting.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// maxRequestIDLen bounds client supplied correlation ids.
	maxRequestIDLen = 128
)

// RequestID propagates a client supplied X-Request-ID or generates a UUID
// when it is missing or unusable, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// validRequestID accepts short, printable ASCII ids so they are safe to echo
// in headers and log lines.
func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestIDFrom returns the correlation id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Recovery turns a panic into a JSON 500 carrying the request id, logging
// the stack through the request-scoped logger. When the handler already
// started the response only the status is recorded.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			rid := RequestIDFrom(c)
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// attachLogger scopes l to the request: handlers reach it through
// LoggerFrom and services through zerolog.Ctx on the request context.
func attachLogger(c *gin.Context, l *zerolog.Logger) {
	c.Set(loggerKey, l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
}

// requestLogger derives the request-scoped logger from the global one.
func requestLogger(c *gin.Context, rid string) zerolog.Logger {
	lc := log.With().Str("request_id", rid)
	if uid := UserID(c); uid != 0 {
		lc = lc.Uint("user_id", uid).Str("user_role", UserRole(c))
	}
	return lc.Logger()
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// none was attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if l, ok := c.Get(loggerKey); ok {
		if lg, ok := l.(*zerolog.Logger); ok {
			return lg
		}
	}
	lg := log.Logger
	return &lg
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-adoption-backend/internal/http/middleware"
	"github.com/tbourn/go-adoption-backend/internal/services"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Echo of X-Request-ID, for matching a client error to server logs.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"already_adopted"`
	Message   string `json:"message" example:"animal is already adopted"`
}

// kindStatus maps service error kinds to HTTP statuses. Kinds not listed
// are internal errors.
var kindStatus = map[services.Kind]int{
	services.KindNotFound:     http.StatusNotFound,
	services.KindForbidden:    http.StatusForbidden,
	services.KindConflict:     http.StatusConflict,
	services.KindInvalidInput: http.StatusBadRequest,
	services.KindInvalidState: http.StatusBadRequest,
}

// unavailableRetryAfter is advertised when the store is briefly unreachable.
const unavailableRetryAfter = "1"

func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Msg(msg)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: requestID(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail writes an error envelope; used by the router for fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr writes the envelope for an error returned by a service. Code and
// message of a *services.Error reach the client; the cause of an internal
// error is only logged.
func failErr(c *gin.Context, err error) {
	kind := services.KindOf(err)
	switch kind {
	case services.KindUnavailable:
		middleware.LoggerFrom(c).Warn().Err(err).Msg("store unavailable")
		c.Header("Retry-After", unavailableRetryAfter)
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, services.ErrUnavailable.Msg)
		return
	case services.KindInternal:
		middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		return
	}

	status, known := kindStatus[kind]
	if !known {
		status = http.StatusInternalServerError
	}
	code, msg := ErrCodeBadRequest, err.Error()
	var se *services.Error
	if errors.As(err, &se) {
		code, msg = se.Code, se.Msg
	}
	fail(c, status, code, msg)
}

// requestID prefers the id set by the RequestID middleware and falls back to
// the response header for handlers mounted without it.
func requestID(c *gin.Context) string {
	if rid := middleware.RequestIDFrom(c); rid != "" {
		return rid
	}
	return c.Writer.Header().Get("X-Request-ID")
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

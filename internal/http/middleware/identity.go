// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity. Authentication itself happens
// upstream (an API gateway or auth proxy); this service trusts the
// X-User-ID and X-User-Role headers it forwards, unless an earlier middleware
// has already placed an identity in the Gin context.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID carries the numeric id of the authenticated user.
	HeaderUserID = "X-User-ID"
	// HeaderUserRole carries the user's role (USER or ADMIN).
	HeaderUserRole = "X-User-Role"

	ctxKeyUserID   = "userID"
	ctxKeyUserRole = "userRole"
)

// Identity reads the caller identity headers into the Gin context.
//
// Behavior:
//   - If "userID" is already set (by an upstream auth middleware), the
//     headers are ignored.
//   - A missing X-User-ID leaves the request anonymous.
//   - A malformed X-User-ID (not a positive integer) is rejected with 400.
//   - The role is upper-cased; a missing role defaults to USER.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxKeyUserID); ok {
			c.Next()
			return
		}
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_identity",
				"message":    "X-User-ID must be a positive integer",
			})
			return
		}
		role := strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderUserRole)))
		if role == "" {
			role = "USER"
		}
		c.Set(ctxKeyUserID, uint(id))
		c.Set(ctxKeyUserRole, role)
		c.Next()
	}
}

// UserID returns the caller's user id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// UserRole returns the caller's role, or "" for anonymous requests.
func UserRole(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

package middleware

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the acting owner's ID
	UserIDKey contextKey = "user_id"

	// UserIDHeader carries the opaque owner identifier on every request
	UserIDHeader = "X-User-ID"
)

// OwnerMiddleware resolves the acting owner from the X-User-ID header. The ID
// is opaque to this service; the upstream gateway authenticates it. Requests
// without a positive integer ID are rejected before reaching any handler.
type OwnerMiddleware struct{}

// NewOwnerMiddleware creates a new OwnerMiddleware
func NewOwnerMiddleware() *OwnerMiddleware {
	return &OwnerMiddleware{}
}

// Resolve returns an Echo middleware that extracts the owner ID
func (m *OwnerMiddleware) Resolve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(UserIDHeader)
			if header == "" {
				return unauthorizedError(c, "Missing "+UserIDHeader+" header")
			}

			userID, err := strconv.ParseInt(header, 10, 64)
			if err != nil || userID <= 0 {
				return unauthorizedError(c, "Invalid "+UserIDHeader+" header")
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID extracts the owner ID from the request context.
// Returns 0 when no owner has been resolved.
func GetUserID(c echo.Context) int64 {
	if id, ok := c.Request().Context().Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

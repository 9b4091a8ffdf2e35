package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/ledgerly/ledgerly-backend/internal/middleware"
)

// setOwnerContext injects the acting owner into the request context the same
// way the owner middleware does
func setOwnerContext(c echo.Context, userID int64) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOwnerMiddleware(t *testing.T, header string) (*httptest.ResponseRecorder, int64) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	if header != "" {
		req.Header.Set(UserIDHeader, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var resolved int64
	handler := NewOwnerMiddleware().Resolve()(func(c echo.Context) error {
		resolved = GetUserID(c)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	return rec, resolved
}

func TestOwnerMiddleware_ValidHeader(t *testing.T) {
	rec, resolved := runOwnerMiddleware(t, "42")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), resolved)
}

func TestOwnerMiddleware_MissingHeader(t *testing.T) {
	rec, resolved := runOwnerMiddleware(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, resolved)
}

func TestOwnerMiddleware_InvalidHeader(t *testing.T) {
	for _, header := range []string{"abc", "-1", "0", "1.5"} {
		t.Run(header, func(t *testing.T) {
			rec, resolved := runOwnerMiddleware(t, header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Zero(t, resolved)
		})
	}
}

func TestGetUserID_NoContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Zero(t, GetUserID(c))
}

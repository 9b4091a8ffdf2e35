package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/ledgerly/ledgerly-backend/internal/middleware"
	"github.com/ledgerly/ledgerly-backend/internal/websocket"
)

func newWSContext(query string, header string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/ws"+query, nil)
	if header != "" {
		req.Header.Set(middleware.UserIDHeader, header)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestResolveWSUserID_HeaderFromGateway(t *testing.T) {
	if got := resolveWSUserID(newWSContext("", "42")); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
}

func TestResolveWSUserID_QueryParamFallback(t *testing.T) {
	if got := resolveWSUserID(newWSContext("?userId=7", "")); got != 7 {
		t.Errorf("Expected 7, got %d", got)
	}
}

func TestResolveWSUserID_HeaderWinsOverQueryParam(t *testing.T) {
	if got := resolveWSUserID(newWSContext("?userId=7", "42")); got != 42 {
		t.Errorf("Expected the gateway header to win, got %d", got)
	}
}

func TestResolveWSUserID_Invalid(t *testing.T) {
	cases := map[string]echo.Context{
		"missing":     newWSContext("", ""),
		"malformed":   newWSContext("?userId=abc", ""),
		"negative":    newWSContext("?userId=-1", ""),
		"zero header": newWSContext("", "0"),
	}
	for name, c := range cases {
		if got := resolveWSUserID(c); got != 0 {
			t.Errorf("%s: expected 0, got %d", name, got)
		}
	}
}

func TestHandleWS_RejectsUnidentifiedClient(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), nil)

	err := h.HandleWS(newWSContext("", ""))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("Expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", httpErr.Code)
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/ledgerly/ledgerly-backend/internal/service"
	"github.com/ledgerly/ledgerly-backend/internal/testutil"
	"github.com/ledgerly/ledgerly-backend/internal/websocket"
)

func newAccountHandler() (*echo.Echo, *AccountHandler) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := service.NewAccountService(accountRepo)
	return echo.New(), NewAccountHandler(accountService, &websocket.NoOpPublisher{})
}

func TestCreateAccount_Success(t *testing.T) {
	e, handler := newAccountHandler()

	reqBody := `{"name": "My Savings", "accountType": "savings", "initialBalance": "1000.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setOwnerContext(c, 1)

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "My Savings" {
		t.Errorf("Expected name 'My Savings', got %s", response.Name)
	}
	if response.AccountType != "savings" {
		t.Errorf("Expected account type 'savings', got %s", response.AccountType)
	}
	if response.Balance != "1000.50" {
		t.Errorf("Expected balance '1000.50', got %s", response.Balance)
	}
	if response.Currency != "USD" {
		t.Errorf("Expected currency 'USD', got %s", response.Currency)
	}
	if !response.IsActive {
		t.Error("Expected account to be active")
	}
}

func TestCreateAccount_MissingOwner(t *testing.T) {
	e, handler := newAccountHandler()

	reqBody := `{"name": "My Account", "accountType": "checking"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// No owner set
	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestCreateAccount_InvalidType(t *testing.T) {
	e, handler := newAccountHandler()

	reqBody := `{"name": "My Account", "accountType": "offshore"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setOwnerContext(c, 1)

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateAccount_DuplicateName(t *testing.T) {
	e, handler := newAccountHandler()

	reqBody := `{"name": "Checking", "accountType": "checking"}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setOwnerContext(c, 1)

		if err := handler.CreateAccount(c); err != nil {
			t.Fatalf("Attempt %d: expected JSON response, got error: %v", i, err)
		}
		if rec.Code != want {
			t.Errorf("Attempt %d: expected status %d, got %d", i, want, rec.Code)
		}
	}
}

func TestDeactivateAccount_KeepsHistory(t *testing.T) {
	e, handler := newAccountHandler()

	reqBody := `{"name": "Old Account", "accountType": "cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setOwnerContext(c, 1)
	if err := handler.CreateAccount(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("Seed account failed: err=%v code=%d", err, rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setOwnerContext(c, 1)

	if err := handler.DeactivateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	// The account still exists and can be fetched directly
	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setOwnerContext(c, 1)

	if err := handler.GetAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.IsActive {
		t.Error("Expected account to be inactive after deactivation")
	}

	// Default listing hides it
	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	setOwnerContext(c, 1)

	if err := handler.GetAccounts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var accounts []AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected no active accounts, got %d", len(accounts))
	}
}

func TestGetAccount_ForeignOwner(t *testing.T) {
	e, handler := newAccountHandler()

	reqBody := `{"name": "Private", "accountType": "checking"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setOwnerContext(c, 1)
	if err := handler.CreateAccount(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("Seed account failed: err=%v code=%d", err, rec.Code)
	}

	// Another owner cannot see it
	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setOwnerContext(c, 2)

	if err := handler.GetAccount(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/ledgerly/ledgerly-backend/internal/middleware"
	"github.com/ledgerly/ledgerly-backend/internal/service"
	"github.com/ledgerly/ledgerly-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
	events         websocket.EventPublisher
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, events websocket.EventPublisher) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		events:         events,
	}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name           string  `json:"name"`
	AccountType    string  `json:"accountType"`
	Currency       string  `json:"currency,omitempty"`
	InitialBalance *string `json:"initialBalance,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// UpdateAccountRequest represents the update account request body.
// Balance is deliberately absent; it only moves through the ledger.
type UpdateAccountRequest struct {
	Name        string  `json:"name"`
	AccountType string  `json:"accountType"`
	Currency    string  `json:"currency,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          int32   `json:"id"`
	UserID      int64   `json:"userId"`
	Name        string  `json:"name"`
	AccountType string  `json:"accountType"`
	Balance     string  `json:"balance"`
	Currency    string  `json:"currency"`
	IsActive    bool    `json:"isActive"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// accountErrorResponse maps account validation errors to problem responses
func accountErrorResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		}), true
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 100 characters or less"},
		}), true
	case errors.Is(err, domain.ErrInvalidAccountType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountType", Message: "Must be one of: checking, savings, credit, investment, cash"},
		}), true
	case errors.Is(err, domain.ErrInvalidCurrency):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currency", Message: "Must be a 3-letter currency code"},
		}), true
	case errors.Is(err, domain.ErrAccountExists):
		return NewConflictError(c, "An account with this name already exists"), true
	}
	return nil, false
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != nil && *req.InitialBalance != "" {
		parsed, err := decimal.NewFromString(*req.InitialBalance)
		if err != nil {
			return NewValidationError(c, "Invalid initialBalance", []ValidationError{
				{Field: "initialBalance", Message: "Must be a valid decimal number"},
			})
		}
		initialBalance = parsed
	}

	input := service.CreateAccountInput{
		Name:           req.Name,
		AccountType:    domain.AccountType(req.AccountType),
		Currency:       req.Currency,
		InitialBalance: initialBalance,
		Description:    req.Description,
	}

	account, err := h.accountService.CreateAccount(userID, input)
	if err != nil {
		if resp, ok := accountErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().Int64("user_id", userID).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account created")
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	// Inactive accounts are hidden unless explicitly requested
	includeInactive := c.QueryParam("includeInactive") == "true"

	accounts, err := h.accountService.GetAccounts(userID, !includeInactive)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccountByID(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("account_id", id).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	data := &domain.UpdateAccountData{
		Name:        req.Name,
		AccountType: domain.AccountType(req.AccountType),
		Currency:    req.Currency,
		Description: req.Description,
	}

	account, err := h.accountService.UpdateAccount(userID, int32(id), data)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if resp, ok := accountErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Int64("user_id", userID).Int("account_id", id).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	log.Info().Int64("user_id", userID).Int32("account_id", account.ID).Msg("Account updated")

	resp := toAccountResponse(account)
	h.events.Publish(userID, websocket.AccountUpdated(resp))
	return c.JSON(http.StatusOK, resp)
}

// DeactivateAccount handles DELETE /api/v1/accounts/:id.
// Accounts are deactivated rather than removed so ledger history stays intact.
func (h *AccountHandler) DeactivateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.DeactivateAccount(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("account_id", id).Msg("Failed to deactivate account")
		return NewInternalError(c, "Failed to deactivate account")
	}

	log.Info().Int64("user_id", userID).Int32("account_id", account.ID).Msg("Account deactivated")

	h.events.Publish(userID, websocket.AccountUpdated(toAccountResponse(account)))
	return c.NoContent(http.StatusNoContent)
}

// ActivateAccount handles POST /api/v1/accounts/:id/activate
func (h *AccountHandler) ActivateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.ActivateAccount(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("account_id", id).Msg("Failed to activate account")
		return NewInternalError(c, "Failed to activate account")
	}

	log.Info().Int64("user_id", userID).Int32("account_id", account.ID).Msg("Account activated")

	resp := toAccountResponse(account)
	h.events.Publish(userID, websocket.AccountUpdated(resp))
	return c.JSON(http.StatusOK, resp)
}

// Helper function to convert domain.Account to AccountResponse
func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		UserID:      account.UserID,
		Name:        account.Name,
		AccountType: string(account.AccountType),
		Balance:     account.Balance.StringFixed(2),
		Currency:    account.Currency,
		IsActive:    account.IsActive,
		Description: account.Description,
		CreatedAt:   account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   account.UpdatedAt.Format(time.RFC3339),
	}
}

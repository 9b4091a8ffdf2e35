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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	ledgerService  *service.LedgerService
	accountService *service.AccountService
	events         websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledgerService *service.LedgerService, accountService *service.AccountService, events websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		ledgerService:  ledgerService,
		accountService: accountService,
		events:         events,
	}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	AccountID   int32   `json:"accountId"`
	CategoryID  *int32  `json:"categoryId,omitempty"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Date        *string `json:"date,omitempty"`
	ToAccountID *int32  `json:"toAccountId,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          int32  `json:"id"`
	UserID      int64  `json:"userId"`
	AccountID   int32  `json:"accountId"`
	CategoryID  *int32 `json:"categoryId,omitempty"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	ToAccountID *int32 `json:"toAccountId,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// TransactionMutationResponse pairs the persisted transaction with the
// reconciled state of every account it touched, so callers can confirm the
// new balances without a follow-up read.
type TransactionMutationResponse struct {
	TransactionResponse
	Accounts []AccountResponse `json:"accounts"`
}

// parseTransactionRequest converts the request body into a service input.
// The date defaults to today when omitted. A nil input means the problem
// response has already been written.
func parseTransactionRequest(c echo.Context, req *TransactionRequest) (*service.TransactionInput, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date := time.Now()
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = parsed
	}

	return &service.TransactionInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Description: req.Description,
		Date:        date,
		ToAccountID: req.ToAccountID,
	}, nil
}

// transactionErrorResponse maps ledger validation errors to problem responses
func transactionErrorResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		}), true
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: income, expense, transfer"},
		}), true
	case errors.Is(err, domain.ErrDestinationRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "toAccountId", Message: "Destination account is required for transfers"},
		}), true
	case errors.Is(err, domain.ErrDestinationForbidden):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "toAccountId", Message: "Destination account only applies to transfers"},
		}), true
	case errors.Is(err, domain.ErrSameAccountTransfer):
		return NewValidationError(c, "Cannot transfer to the same account", []ValidationError{
			{Field: "toAccountId", Message: "Must be different from source account"},
		}), true
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account not found"},
		}), true
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		}), true
	}
	return nil, false
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if req.AccountID <= 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account ID is required"},
		})
	}

	input, err := parseTransactionRequest(c, &req)
	if err != nil || input == nil {
		return err
	}

	transaction, err := h.ledgerService.CreateTransaction(userID, *input)
	if err != nil {
		if resp, ok := transactionErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().
		Int64("user_id", userID).
		Int32("transaction_id", transaction.ID).
		Str("type", string(transaction.Type)).
		Msg("Transaction created")

	resp := toTransactionResponse(transaction)
	accounts := h.reconciledAccounts(userID, transaction.AccountID, int32OrZero(transaction.ToAccountID))
	h.events.Publish(userID, websocket.TransactionCreated(resp))
	h.publishAccountUpdates(userID, accounts)
	return c.JSON(http.StatusCreated, TransactionMutationResponse{
		TransactionResponse: resp,
		Accounts:            accounts,
	})
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	filters := &domain.TransactionFilters{}

	if typeStr := c.QueryParam("type"); typeStr != "" {
		transactionType := domain.TransactionType(typeStr)
		if !domain.ValidTransactionType(transactionType) {
			return NewValidationError(c, "Invalid type (must be 'income', 'expense' or 'transfer')", nil)
		}
		filters.Type = &transactionType
	}

	if accountIDStr := c.QueryParam("accountId"); accountIDStr != "" {
		var accountID int32
		if _, err := parseIntParam(accountIDStr, &accountID); err != nil {
			return NewValidationError(c, "Invalid accountId", nil)
		}
		filters.AccountID = &accountID
	}

	if categoryIDStr := c.QueryParam("categoryId"); categoryIDStr != "" {
		var categoryID int32
		if _, err := parseIntParam(categoryIDStr, &categoryID); err != nil {
			return NewValidationError(c, "Invalid categoryId", nil)
		}
		filters.CategoryID = &categoryID
	}

	if startDateStr := c.QueryParam("startDate"); startDateStr != "" {
		parsed, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid startDate format (use YYYY-MM-DD)", nil)
		}
		filters.StartDate = &parsed
	}

	if endDateStr := c.QueryParam("endDate"); endDateStr != "" {
		parsed, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid endDate format (use YYYY-MM-DD)", nil)
		}
		filters.EndDate = &parsed
	}

	transactions, err := h.ledgerService.ListTransactions(userID, filters)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	response := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = toTransactionResponse(transaction)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.ledgerService.GetTransaction(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if req.AccountID <= 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account ID is required"},
		})
	}

	input, err := parseTransactionRequest(c, &req)
	if err != nil || input == nil {
		return err
	}

	// The pre-update record identifies which accounts the reversal touches;
	// the store re-reads it under its own lock before applying anything.
	previous, err := h.ledgerService.GetTransaction(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("transaction_id", id).Msg("Failed to load transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	transaction, err := h.ledgerService.UpdateTransaction(userID, int32(id), *input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp, ok := transactionErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Int64("user_id", userID).Int("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	log.Info().Int64("user_id", userID).Int32("transaction_id", transaction.ID).Msg("Transaction updated")

	resp := toTransactionResponse(transaction)
	accounts := h.reconciledAccounts(userID,
		previous.AccountID, int32OrZero(previous.ToAccountID),
		transaction.AccountID, int32OrZero(transaction.ToAccountID))
	h.events.Publish(userID, websocket.TransactionUpdated(resp))
	h.publishAccountUpdates(userID, accounts)
	return c.JSON(http.StatusOK, TransactionMutationResponse{
		TransactionResponse: resp,
		Accounts:            accounts,
	})
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	previous, err := h.ledgerService.GetTransaction(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("transaction_id", id).Msg("Failed to load transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	if err := h.ledgerService.DeleteTransaction(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Int64("user_id", userID).Int("transaction_id", id).Msg("Transaction deleted")

	h.events.Publish(userID, websocket.TransactionDeleted(map[string]int32{"id": int32(id)}))
	h.publishAccountUpdates(userID, h.reconciledAccounts(userID,
		previous.AccountID, int32OrZero(previous.ToAccountID)))
	return c.NoContent(http.StatusNoContent)
}

// reconciledAccounts loads the current state of the touched accounts,
// deduplicated. The mutation is already committed, so a lookup failure is
// logged and the account skipped rather than failing the request.
func (h *TransactionHandler) reconciledAccounts(userID int64, ids ...int32) []AccountResponse {
	seen := make(map[int32]bool, len(ids))
	accounts := make([]AccountResponse, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		account, err := h.accountService.GetAccountByID(userID, id)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Int32("account_id", id).Msg("Failed to load reconciled account")
			continue
		}
		accounts = append(accounts, toAccountResponse(account))
	}
	return accounts
}

// publishAccountUpdates emits account.updated for every reconciled account so
// clients can refresh balances without polling
func (h *TransactionHandler) publishAccountUpdates(userID int64, accounts []AccountResponse) {
	for _, account := range accounts {
		h.events.Publish(userID, websocket.AccountUpdated(account))
	}
}

func int32OrZero(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

// Helper function to parse int query params with overflow protection
func parseIntParam(s string, out *int32) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return false, errors.New("invalid integer")
	}
	*out = int32(v)
	return true, nil
}

// Helper function to convert domain.Transaction to TransactionResponse
func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          transaction.ID,
		UserID:      transaction.UserID,
		AccountID:   transaction.AccountID,
		Type:        string(transaction.Type),
		Amount:      transaction.Amount.StringFixed(2),
		Description: transaction.Description,
		Date:        transaction.Date.Format("2006-01-02"),
		CreatedAt:   transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   transaction.UpdatedAt.Format(time.RFC3339),
	}
	if transaction.CategoryID != nil {
		resp.CategoryID = transaction.CategoryID
	}
	if transaction.ToAccountID != nil {
		resp.ToAccountID = transaction.ToAccountID
	}
	return resp
}

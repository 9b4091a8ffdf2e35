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

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	events        websocket.EventPublisher
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, events websocket.EventPublisher) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		events:        events,
	}
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	CategoryID int32  `json:"categoryId"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	IsActive   *bool  `json:"isActive,omitempty"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID         int32  `json:"id"`
	UserID     int64  `json:"userId"`
	CategoryID int32  `json:"categoryId"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	IsActive   bool   `json:"isActive"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// BudgetStatusResponse represents a budget with its derived spend figures
type BudgetStatusResponse struct {
	BudgetResponse
	SpentAmount     string `json:"spentAmount"`
	RemainingAmount string `json:"remainingAmount"`
}

// BudgetAlertResponse represents a budget alert in API responses
type BudgetAlertResponse struct {
	Budget          BudgetResponse `json:"budget"`
	AlertType       string         `json:"alertType"`
	Message         string         `json:"message"`
	SpentAmount     string         `json:"spentAmount"`
	SpentPercentage string         `json:"spentPercentage"`
}

// parseBudgetRequest converts the request body into a service input. A nil
// input means the problem response has already been written.
func parseBudgetRequest(c echo.Context, req *BudgetRequest) (*service.BudgetInput, error) {
	if req.CategoryID <= 0 {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category ID is required"},
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, NewValidationError(c, "Invalid startDate", []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, NewValidationError(c, "Invalid endDate", []ValidationError{
			{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	return &service.BudgetInput{
		CategoryID: req.CategoryID,
		Amount:     amount,
		Period:     domain.BudgetPeriod(req.Period),
		StartDate:  startDate,
		EndDate:    endDate,
	}, nil
}

// budgetErrorResponse maps budget validation errors to problem responses
func budgetErrorResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		}), true
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "period", Message: "Must be one of: weekly, monthly, yearly"},
		}), true
	case errors.Is(err, domain.ErrInvalidDateRange):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "End date must not be before start date"},
		}), true
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		}), true
	case errors.Is(err, domain.ErrBudgetExists):
		return NewConflictError(c, "A budget for this category and date range already exists"), true
	}
	return nil, false
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseBudgetRequest(c, &req)
	if err != nil || input == nil {
		return err
	}

	budget, err := h.budgetService.CreateBudget(userID, *input)
	if err != nil {
		if resp, ok := budgetErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	log.Info().Int64("user_id", userID).Int32("budget_id", budget.ID).Int32("category_id", budget.CategoryID).Msg("Budget created")

	resp := toBudgetResponse(budget)
	h.events.Publish(userID, websocket.BudgetCreated(resp))
	return c.JSON(http.StatusCreated, resp)
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	statuses, err := h.budgetService.GetBudgets(userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get budgets")
		return NewInternalError(c, "Failed to get budgets")
	}

	response := make([]BudgetStatusResponse, len(statuses))
	for i, status := range statuses {
		response[i] = BudgetStatusResponse{
			BudgetResponse:  toBudgetResponse(status.Budget),
			SpentAmount:     status.SpentAmount.StringFixed(2),
			RemainingAmount: status.RemainingAmount.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetCurrentBudgets handles GET /api/v1/budgets/current
func (h *BudgetHandler) GetCurrentBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	statuses, err := h.budgetService.GetCurrentBudgets(userID, time.Now())
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get current budgets")
		return NewInternalError(c, "Failed to get current budgets")
	}

	response := make([]BudgetStatusResponse, len(statuses))
	for i, status := range statuses {
		response[i] = BudgetStatusResponse{
			BudgetResponse:  toBudgetResponse(status.Budget),
			SpentAmount:     status.SpentAmount.StringFixed(2),
			RemainingAmount: status.RemainingAmount.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetBudgetAlerts handles GET /api/v1/budgets/alerts
func (h *BudgetHandler) GetBudgetAlerts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	alerts, err := h.budgetService.GetAlerts(userID, time.Now())
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get budget alerts")
		return NewInternalError(c, "Failed to get budget alerts")
	}

	response := make([]BudgetAlertResponse, len(alerts))
	for i, alert := range alerts {
		response[i] = BudgetAlertResponse{
			Budget:          toBudgetResponse(alert.Budget),
			AlertType:       string(alert.AlertType),
			Message:         alert.Message,
			SpentAmount:     alert.SpentAmount.StringFixed(2),
			SpentPercentage: alert.SpentPercentage.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseBudgetRequest(c, &req)
	if err != nil || input == nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	budget, err := h.budgetService.UpdateBudget(userID, int32(id), *input, isActive)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if resp, ok := budgetErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Int64("user_id", userID).Int("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	log.Info().Int64("user_id", userID).Int32("budget_id", budget.ID).Msg("Budget updated")

	resp := toBudgetResponse(budget)
	h.events.Publish(userID, websocket.BudgetUpdated(resp))
	return c.JSON(http.StatusOK, resp)
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	log.Info().Int64("user_id", userID).Int("budget_id", id).Msg("Budget deleted")

	h.events.Publish(userID, websocket.BudgetDeleted(map[string]int32{"id": int32(id)}))
	return c.NoContent(http.StatusNoContent)
}

// Helper function to convert domain.Budget to BudgetResponse
func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:         budget.ID,
		UserID:     budget.UserID,
		CategoryID: budget.CategoryID,
		Amount:     budget.Amount.StringFixed(2),
		Period:     string(budget.Period),
		StartDate:  budget.StartDate.Format("2006-01-02"),
		EndDate:    budget.EndDate.Format("2006-01-02"),
		IsActive:   budget.IsActive,
		CreatedAt:  budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  budget.UpdatedAt.Format(time.RFC3339),
	}
}

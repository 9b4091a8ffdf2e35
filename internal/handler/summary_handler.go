package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/ledgerly/ledgerly-backend/internal/middleware"
	"github.com/ledgerly/ledgerly-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// SummaryHandler handles reporting HTTP requests
type SummaryHandler struct {
	summaryService *service.SummaryService
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// AccountTypeSummaryResponse is the per-type rollup in the account summary
type AccountTypeSummaryResponse struct {
	Count        int32  `json:"count"`
	TotalBalance string `json:"totalBalance"`
}

// AccountSummaryResponse represents the account summary in API responses
type AccountSummaryResponse struct {
	TotalBalance string                                `json:"totalBalance"`
	AccountCount int32                                 `json:"accountCount"`
	ByType       map[string]AccountTypeSummaryResponse `json:"byType"`
}

// TransactionSummaryResponse represents the transaction summary in API responses
type TransactionSummaryResponse struct {
	TotalIncome      string `json:"totalIncome"`
	TotalExpenses    string `json:"totalExpenses"`
	NetAmount        string `json:"netAmount"`
	TransactionCount int64  `json:"transactionCount"`
	PeriodStart      string `json:"periodStart"`
	PeriodEnd        string `json:"periodEnd"`
}

// CategoryGroupResponse represents one category's slice of the breakdown
type CategoryGroupResponse struct {
	Category         CategoryResponse      `json:"category"`
	TotalAmount      string                `json:"totalAmount"`
	TransactionCount int32                 `json:"transactionCount"`
	Transactions     []TransactionResponse `json:"transactions"`
}

// GetAccountSummary handles GET /api/v1/summary/accounts
func (h *SummaryHandler) GetAccountSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	summary, err := h.summaryService.GetAccountSummary(userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get account summary")
		return NewInternalError(c, "Failed to get account summary")
	}

	byType := make(map[string]AccountTypeSummaryResponse, len(summary.ByType))
	for accountType, typeSummary := range summary.ByType {
		byType[string(accountType)] = AccountTypeSummaryResponse{
			Count:        typeSummary.Count,
			TotalBalance: typeSummary.TotalBalance.StringFixed(2),
		}
	}

	return c.JSON(http.StatusOK, AccountSummaryResponse{
		TotalBalance: summary.TotalBalance.StringFixed(2),
		AccountCount: summary.AccountCount,
		ByType:       byType,
	})
}

// reportPeriod is an inclusive date range for the summary reports
type reportPeriod struct {
	start time.Time
	end   time.Time
}

// parsePeriod reads the startDate/endDate query params. The period defaults
// to the first of the current month through today; each bound overrides its
// default independently, so either param may be supplied alone. A nil period
// means the problem response has already been written.
func parsePeriod(c echo.Context) (*reportPeriod, error) {
	start, end := service.DefaultPeriod(time.Now())

	if startStr := c.QueryParam("startDate"); startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return nil, NewValidationError(c, "Invalid startDate format (use YYYY-MM-DD)", nil)
		}
		start = parsed
	}
	if endStr := c.QueryParam("endDate"); endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return nil, NewValidationError(c, "Invalid endDate format (use YYYY-MM-DD)", nil)
		}
		end = parsed
	}
	if end.Before(start) {
		return nil, NewValidationError(c, "endDate must not be before startDate", nil)
	}
	return &reportPeriod{start: start, end: end}, nil
}

// GetTransactionSummary handles GET /api/v1/summary/transactions
func (h *SummaryHandler) GetTransactionSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	period, err := parsePeriod(c)
	if err != nil || period == nil {
		return err
	}

	summary, err := h.summaryService.GetTransactionSummary(userID, period.start, period.end)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get transaction summary")
		return NewInternalError(c, "Failed to get transaction summary")
	}

	return c.JSON(http.StatusOK, TransactionSummaryResponse{
		TotalIncome:      summary.TotalIncome.StringFixed(2),
		TotalExpenses:    summary.TotalExpenses.StringFixed(2),
		NetAmount:        summary.NetAmount.StringFixed(2),
		TransactionCount: summary.TransactionCount,
		PeriodStart:      summary.PeriodStart.Format("2006-01-02"),
		PeriodEnd:        summary.PeriodEnd.Format("2006-01-02"),
	})
}

// GetTransactionsByCategory handles GET /api/v1/summary/transactions/by-category
func (h *SummaryHandler) GetTransactionsByCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Owner required")
	}

	period, err := parsePeriod(c)
	if err != nil || period == nil {
		return err
	}

	groups, err := h.summaryService.GetTransactionsByCategory(userID, period.start, period.end)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get transactions by category")
		return NewInternalError(c, "Failed to get transactions by category")
	}

	response := make([]CategoryGroupResponse, len(groups))
	for i, group := range groups {
		response[i] = toCategoryGroupResponse(group)
	}
	return c.JSON(http.StatusOK, response)
}

func toCategoryGroupResponse(group *domain.CategoryGroup) CategoryGroupResponse {
	transactions := make([]TransactionResponse, len(group.Transactions))
	for i, transaction := range group.Transactions {
		transactions[i] = toTransactionResponse(transaction)
	}
	return CategoryGroupResponse{
		Category:         toCategoryResponse(group.Category),
		TotalAmount:      group.TotalAmount.StringFixed(2),
		TransactionCount: group.TransactionCount,
		Transactions:     transactions,
	}
}

package service

import (
	"fmt"
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// BudgetService is the budget aggregator. Spend and remaining amounts are
// derived from the ledger on every call; nothing is cached, so results always
// reflect the committed state at query time.
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// BudgetInput holds the input for creating a budget
type BudgetInput struct {
	CategoryID int32
	Amount     decimal.Decimal
	Period     domain.BudgetPeriod
	StartDate  time.Time
	EndDate    time.Time
}

// CreateBudget creates a budget after validating the period, amount, date
// range and category ownership.
func (s *BudgetService) CreateBudget(userID int64, input BudgetInput) (*domain.Budget, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidBudgetPeriod(input.Period) {
		return nil, domain.ErrInvalidPeriod
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if _, err := s.categoryRepo.GetByID(userID, input.CategoryID); err != nil {
		return nil, err
	}

	return s.budgetRepo.Create(&domain.Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Period:     input.Period,
		StartDate:  domain.DateOnly(input.StartDate),
		EndDate:    domain.DateOnly(input.EndDate),
		IsActive:   true,
	})
}

// UpdateBudget updates a budget's amount, period, dates and active flag.
func (s *BudgetService) UpdateBudget(userID int64, id int32, input BudgetInput, isActive bool) (*domain.Budget, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidBudgetPeriod(input.Period) {
		return nil, domain.ErrInvalidPeriod
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	return s.budgetRepo.Update(userID, id, &domain.UpdateBudgetData{
		Amount:    input.Amount,
		Period:    input.Period,
		StartDate: domain.DateOnly(input.StartDate),
		EndDate:   domain.DateOnly(input.EndDate),
		IsActive:  isActive,
	})
}

// DeleteBudget removes a budget. Budgets have no balance side effects.
func (s *BudgetService) DeleteBudget(userID int64, id int32) error {
	return s.budgetRepo.Delete(userID, id)
}

// GetBudgets returns all of the owner's budgets with derived spend attached.
func (s *BudgetService) GetBudgets(userID int64) ([]*domain.BudgetStatus, error) {
	budgets, err := s.budgetRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.withStatus(userID, budgets)
}

// GetCurrentBudgets returns the owner's budgets whose active window contains
// asOf, with derived spend attached.
func (s *BudgetService) GetCurrentBudgets(userID int64, asOf time.Time) ([]*domain.BudgetStatus, error) {
	budgets, err := s.budgetRepo.ListCurrent(userID, domain.DateOnly(asOf))
	if err != nil {
		return nil, err
	}
	return s.withStatus(userID, budgets)
}

// Spent returns the sum of expense-type transaction amounts in the budget's
// category whose effective date falls within the budget window, bounds
// inclusive. Transactions without a category never contribute.
func (s *BudgetService) Spent(budget *domain.Budget) (decimal.Decimal, error) {
	return s.transactionRepo.SumExpensesByCategory(
		budget.UserID, budget.CategoryID, budget.StartDate, budget.EndDate)
}

// Remaining returns amount minus spent; negative when over budget, never
// clamped.
func (s *BudgetService) Remaining(budget *domain.Budget) (decimal.Decimal, error) {
	spent, err := s.Spent(budget)
	if err != nil {
		return decimal.Zero, err
	}
	return budget.Amount.Sub(spent), nil
}

// SpentPercentage returns 100 * spent / amount, or zero when amount is not
// positive. The value is exact; rounding happens only at the reporting edge.
func SpentPercentage(amount, spent decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return spent.Mul(oneHundred).Div(amount)
}

// ClassifyAlert maps an exact spent percentage to an alert type. Thresholds
// are inclusive at the lower bound: exactly 80% is a warning, exactly 100% is
// over budget. Below 80% no alert is emitted and ok is false.
func ClassifyAlert(pct decimal.Decimal) (alertType domain.BudgetAlertType, ok bool) {
	switch {
	case pct.GreaterThanOrEqual(oneHundred):
		return domain.BudgetAlertOverBudget, true
	case pct.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return domain.BudgetAlertWarning, true
	}
	return "", false
}

// GetAlerts evaluates every current budget and returns those at or past a
// spend threshold. The reported percentage is rounded half-up to 2 decimal
// places; classification uses the exact value, so 79.9975% stays silent even
// though it rounds to 80.00.
func (s *BudgetService) GetAlerts(userID int64, asOf time.Time) ([]*domain.BudgetAlert, error) {
	budgets, err := s.budgetRepo.ListCurrent(userID, domain.DateOnly(asOf))
	if err != nil {
		return nil, err
	}

	alerts := make([]*domain.BudgetAlert, 0)
	for _, budget := range budgets {
		spent, err := s.Spent(budget)
		if err != nil {
			return nil, err
		}

		pct := SpentPercentage(budget.Amount, spent)
		alertType, ok := ClassifyAlert(pct)
		if !ok {
			continue
		}

		category, err := s.categoryRepo.GetByID(userID, budget.CategoryID)
		if err != nil {
			return nil, err
		}

		message := fmt.Sprintf("80%% of budget used for %s", category.Name)
		if alertType == domain.BudgetAlertOverBudget {
			message = fmt.Sprintf("Budget exceeded for %s", category.Name)
		}

		alerts = append(alerts, &domain.BudgetAlert{
			Budget:          budget,
			AlertType:       alertType,
			Message:         message,
			SpentAmount:     spent,
			SpentPercentage: pct.Round(2),
		})
	}
	return alerts, nil
}

func (s *BudgetService) withStatus(userID int64, budgets []*domain.Budget) ([]*domain.BudgetStatus, error) {
	statuses := make([]*domain.BudgetStatus, len(budgets))
	for i, budget := range budgets {
		spent, err := s.Spent(budget)
		if err != nil {
			return nil, err
		}
		statuses[i] = &domain.BudgetStatus{
			Budget:          budget,
			SpentAmount:     spent,
			RemainingAmount: budget.Amount.Sub(spent),
		}
	}
	return statuses, nil
}

package service

import (
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SummaryService builds read-only aggregations over committed ledger state.
type SummaryService struct {
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(accountRepo domain.AccountRepository, categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository) *SummaryService {
	return &SummaryService{
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// GetAccountSummary totals the owner's active accounts and groups count and
// balance by account type.
func (s *SummaryService) GetAccountSummary(userID int64) (*domain.AccountSummary, error) {
	accounts, err := s.accountRepo.GetAllByUser(userID, true)
	if err != nil {
		return nil, err
	}

	summary := &domain.AccountSummary{
		TotalBalance: decimal.Zero,
		ByType:       make(map[domain.AccountType]*domain.AccountTypeSummary),
	}
	for _, account := range accounts {
		summary.TotalBalance = summary.TotalBalance.Add(account.Balance)
		summary.AccountCount++

		typeSummary, ok := summary.ByType[account.AccountType]
		if !ok {
			typeSummary = &domain.AccountTypeSummary{TotalBalance: decimal.Zero}
			summary.ByType[account.AccountType] = typeSummary
		}
		typeSummary.Count++
		typeSummary.TotalBalance = typeSummary.TotalBalance.Add(account.Balance)
	}
	return summary, nil
}

// DefaultPeriod returns the default reporting range: first of the current
// month through today.
func DefaultPeriod(now time.Time) (start, end time.Time) {
	end = domain.DateOnly(now)
	start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// GetTransactionSummary returns income, expense, net and count for the range.
func (s *SummaryService) GetTransactionSummary(userID int64, startDate, endDate time.Time) (*domain.TransactionSummary, error) {
	startDate = domain.DateOnly(startDate)
	endDate = domain.DateOnly(endDate)

	income, err := s.transactionRepo.SumByTypeAndDateRange(userID, domain.TransactionTypeIncome, startDate, endDate)
	if err != nil {
		return nil, err
	}
	expenses, err := s.transactionRepo.SumByTypeAndDateRange(userID, domain.TransactionTypeExpense, startDate, endDate)
	if err != nil {
		return nil, err
	}
	count, err := s.transactionRepo.CountByDateRange(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionSummary{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetAmount:        income.Sub(expenses),
		TransactionCount: count,
		PeriodStart:      startDate,
		PeriodEnd:        endDate,
	}, nil
}

// GetTransactionsByCategory groups the range's transactions by category name,
// excluding transactions without a category. Each group carries its total,
// count and member transactions.
func (s *SummaryService) GetTransactionsByCategory(userID int64, startDate, endDate time.Time) ([]*domain.CategoryGroup, error) {
	startDate = domain.DateOnly(startDate)
	endDate = domain.DateOnly(endDate)

	transactions, err := s.transactionRepo.List(userID, &domain.TransactionFilters{
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int32]*domain.Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}

	groups := make(map[int32]*domain.CategoryGroup)
	order := make([]int32, 0)
	for _, tx := range transactions {
		if tx.CategoryID == nil {
			continue
		}
		category, ok := byID[*tx.CategoryID]
		if !ok {
			continue
		}

		group, ok := groups[category.ID]
		if !ok {
			group = &domain.CategoryGroup{Category: category, TotalAmount: decimal.Zero}
			groups[category.ID] = group
			order = append(order, category.ID)
		}
		group.TotalAmount = group.TotalAmount.Add(tx.Amount)
		group.TransactionCount++
		group.Transactions = append(group.Transactions, tx)
	}

	result := make([]*domain.CategoryGroup, len(order))
	for i, id := range order {
		result[i] = groups[id]
	}
	return result, nil
}

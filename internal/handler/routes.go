package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/ledgerly/ledgerly-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, ownerMiddleware *middleware.OwnerMiddleware, rateLimiter *middleware.RateLimiter, accountHandler *AccountHandler, categoryHandler *CategoryHandler, transactionHandler *TransactionHandler, budgetHandler *BudgetHandler, summaryHandler *SummaryHandler, webSocketHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(ownerMiddleware.Resolve())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Account routes
	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeactivateAccount)
	accounts.POST("/:id/deactivate", accountHandler.DeactivateAccount)
	accounts.POST("/:id/activate", accountHandler.ActivateAccount)

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/popular", categoryHandler.GetPopularCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/current", budgetHandler.GetCurrentBudgets)
	budgets.GET("/alerts", budgetHandler.GetBudgetAlerts)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Summary routes
	summary := api.Group("/summary")
	summary.GET("/accounts", summaryHandler.GetAccountSummary)
	summary.GET("/transactions", summaryHandler.GetTransactionSummary)
	summary.GET("/transactions/by-category", summaryHandler.GetTransactionsByCategory)

	// WebSocket endpoint (outside the owner middleware; it authenticates
	// via query parameter during the upgrade)
	e.GET("/ws", webSocketHandler.HandleWS)
}

package app

import (
	"database/sql"

	"github.com/breakeven/breakeven/internal/auth"
	"github.com/breakeven/breakeven/internal/config"
	"github.com/breakeven/breakeven/internal/utils"
	"github.com/breakeven/breakeven/pkg/budget"
	"github.com/breakeven/breakeven/pkg/expense"
	"github.com/breakeven/breakeven/pkg/ledger"
	"github.com/breakeven/breakeven/pkg/rate"
	"github.com/breakeven/breakeven/pkg/stats"
	"github.com/breakeven/breakeven/pkg/subscription"
	"github.com/breakeven/breakeven/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	TokenVerifier *auth.SupabaseVerifier

	UserService user.Service
	UserHandler *user.Handler

	BudgetRepo    budget.BudgetRepo
	RateSchedule  *rate.Schedule
	BudgetService budget.BudgetService
	BudgetHandler *budget.BudgetHandler

	LedgerRepo    ledger.Repo
	LedgerEngine  *ledger.Engine
	LedgerService ledger.Service
	LedgerHandler *ledger.Handler

	ExpenseRepo    expense.Repo
	ExpenseService expense.Service
	ExpenseHandler *expense.Handler

	SubscriptionRepo    subscription.Repo
	SubscriptionService subscription.Service
	SubscriptionHandler *subscription.Handler

	StatsService stats.StatsService
	StatsHandler *stats.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.TokenVerifier = auth.NewSupabaseVerifier(cfg.Supabase)

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	// The ledger engine and rate schedule exist before the budget service:
	// budget mutations trigger recomputation through them.
	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.RateSchedule = rate.NewSchedule(rate.NewRateRepo(db))
	deps.ExpenseRepo = expense.NewExpenseRepo(db)
	deps.LedgerRepo = ledger.NewLedgerRepo(db)
	deps.LedgerEngine = ledger.NewEngine(deps.LedgerRepo, deps.RateSchedule, deps.ExpenseRepo, deps.Clock)

	deps.BudgetService = budget.NewBudgetService(deps.BudgetRepo, deps.RateSchedule, deps.LedgerEngine)
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	deps.LedgerService = ledger.NewLedgerService(deps.LedgerRepo, deps.LedgerEngine, deps.Clock)
	deps.LedgerHandler = ledger.NewHandler(deps.LedgerService, deps.BudgetService, deps.RateSchedule)

	deps.ExpenseService = expense.NewExpenseService(deps.ExpenseRepo, deps.LedgerEngine, deps.Clock)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService, deps.BudgetService)

	deps.SubscriptionRepo = subscription.NewSubscriptionRepo(db)
	deps.SubscriptionService = subscription.NewSubscriptionService(deps.SubscriptionRepo, deps.Clock)
	deps.SubscriptionHandler = subscription.NewHandler(deps.SubscriptionService, deps.BudgetService, deps.Clock)

	deps.StatsService = stats.NewStatsService(deps.ExpenseRepo, deps.SubscriptionRepo, deps.Clock)
	deps.StatsHandler = stats.NewHandler(deps.StatsService, deps.BudgetService)

	return deps
}

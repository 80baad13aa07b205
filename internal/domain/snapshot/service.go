package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
)

// historyMonths caps how far back the prompt's historical breakdown goes.
const historyMonths = 6

// ExpenseSource is the slice of the expense store the service reads.
// *expenses.Store implements it.
type ExpenseSource interface {
	MonthlyCategoryTotals(ctx context.Context, userID uuid.UUID, day time.Time) (map[string]decimal.Decimal, error)
	HistoricalMonthlyTotals(ctx context.Context, userID uuid.UUID, months int) ([]expenses.MonthTotal, error)
	ListRecurring(ctx context.Context, userID uuid.UUID) ([]expenses.RecurringExpense, error)
}

// ContextSource reads budgets, income and goals. *Repository implements it.
type ContextSource interface {
	GetBudgets(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error)
	GetMonthlyIncome(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	GetGoals(ctx context.Context, userID uuid.UUID) ([]GoalProgress, error)
}

// Service assembles snapshots on demand. Each request recomputes from the
// store; nothing is cached, a snapshot is valid only for the request that
// built it.
type Service struct {
	expenses ExpenseSource
	context  ContextSource
}

// NewService creates a snapshot service.
func NewService(expenses ExpenseSource, context ContextSource) *Service {
	return &Service{expenses: expenses, context: context}
}

// Snapshot loads all inputs and builds the user's financial snapshot as of
// now.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID, now time.Time) (Snapshot, error) {
	totals, err := s.expenses.MonthlyCategoryTotals(ctx, userID, now)
	if err != nil {
		return Snapshot{}, err
	}
	history, err := s.expenses.HistoricalMonthlyTotals(ctx, userID, historyMonths)
	if err != nil {
		return Snapshot{}, err
	}
	recurring, err := s.expenses.ListRecurring(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	budgets, err := s.context.GetBudgets(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	income, err := s.context.GetMonthlyIncome(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	goals, err := s.context.GetGoals(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	return Build(Inputs{
		Now:       now,
		History:   history,
		Totals:    totals,
		Budgets:   budgets,
		Income:    income,
		Goals:     goals,
		Recurring: recurring,
	}), nil
}

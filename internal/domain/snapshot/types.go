// Package snapshot builds the read-only financial context embedded in
// assistant prompts: historical totals, current-month breakdown with budget
// usage and projections, income availability, goals and recurring expenses.
package snapshot

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
)

// Confidence labels how trustworthy a month-end projection is, based on how
// far into the month we are.
type Confidence string

const (
	ConfidenceLow    Confidence = "baja"
	ConfidenceMedium Confidence = "media"
	ConfidenceHigh   Confidence = "alta"
)

// CategoryBreakdown is one category's current-month state.
type CategoryBreakdown struct {
	Key         string
	Spent       decimal.Decimal
	Budget      decimal.Decimal // zero when no budget set
	PercentUsed decimal.Decimal // zero when no budget set
	Projection  decimal.Decimal // linear month-end estimate
	Confidence  Confidence
}

// GoalProgress is one savings goal and how far along it is.
type GoalProgress struct {
	Name    string
	Target  decimal.Decimal
	Saved   decimal.Decimal
	Percent decimal.Decimal
}

// Snapshot is the aggregated view handed to the prompt builder. It is built
// on demand per request and never mutated afterwards.
type Snapshot struct {
	Month      string // YYYY-MM
	History    []expenses.MonthTotal
	Categories []CategoryBreakdown
	TotalSpent decimal.Decimal
	Income     decimal.Decimal
	Available  decimal.Decimal // income - total spent, floored at zero
	Goals      []GoalProgress
	Recurring  []expenses.RecurringExpense
}

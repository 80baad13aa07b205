package snapshot

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
)

// Inputs holds everything Build needs. Collecting them up front keeps Build
// pure and trivially testable.
type Inputs struct {
	Now       time.Time
	History   []expenses.MonthTotal
	Totals    map[string]decimal.Decimal // current-month spend per category
	Budgets   map[string]decimal.Decimal
	Income    decimal.Decimal
	Goals     []GoalProgress
	Recurring []expenses.RecurringExpense
}

// Build assembles a snapshot from already-loaded data. Projections are a
// linear extrapolation of spend so far over the days elapsed; confidence
// grows with how much of the month has passed.
func Build(in Inputs) Snapshot {
	dayOfMonth := in.Now.Day()
	daysInMonth := time.Date(in.Now.Year(), in.Now.Month()+1, 0, 0, 0, 0, 0, in.Now.Location()).Day()
	confidence := projectionConfidence(dayOfMonth)

	keys := make([]string, 0, len(in.Totals))
	for k := range in.Totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := decimal.Zero
	categories := make([]CategoryBreakdown, 0, len(keys))
	for _, key := range keys {
		spent := in.Totals[key]
		total = total.Add(spent)

		b := CategoryBreakdown{
			Key:        key,
			Spent:      spent,
			Budget:     in.Budgets[key],
			Confidence: confidence,
			Projection: spent.Div(decimal.NewFromInt(int64(dayOfMonth))).
				Mul(decimal.NewFromInt(int64(daysInMonth))).Round(2),
		}
		if b.Budget.IsPositive() {
			b.PercentUsed = spent.Div(b.Budget).Mul(decimal.NewFromInt(100)).Round(1)
		}
		categories = append(categories, b)
	}

	available := in.Income.Sub(total)
	if available.IsNegative() {
		available = decimal.Zero
	}

	return Snapshot{
		Month:      in.Now.Format("2006-01"),
		History:    in.History,
		Categories: categories,
		TotalSpent: total,
		Income:     in.Income,
		Available:  available,
		Goals:      in.Goals,
		Recurring:  in.Recurring,
	}
}

func projectionConfidence(dayOfMonth int) Confidence {
	switch {
	case dayOfMonth < 7:
		return ConfidenceLow
	case dayOfMonth < 15:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

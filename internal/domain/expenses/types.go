// Package expenses holds the expense draft model, its Postgres store and the
// recurring-expense materializer.
package expenses

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of accepted payment methods. Values are the
// user-facing Spanish labels because they are stored and displayed verbatim.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "Tarjeta"
	PaymentCash     PaymentMethod = "Efectivo"
	PaymentBizum    PaymentMethod = "Bizum"
	PaymentTransfer PaymentMethod = "Transferencia"
)

// Valid reports whether the payment method is one of the accepted values.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCard, PaymentCash, PaymentBizum, PaymentTransfer:
		return true
	}
	return false
}

// Draft is an expense ready to persist. The extractor produces drafts; the
// store consumes them. Category must be a canonical key from the user's
// category set; resolvers guarantee that, the store does not re-check it.
type Draft struct {
	Name          string
	Amount        decimal.Decimal
	Category      string
	Subcategory   string
	Date          string // YYYY-MM-DD
	PaymentMethod PaymentMethod
	IsRecurring   bool
	RecurringID   *uuid.UUID
}

// Validate checks the draft's structural invariants. The AI-applied path
// deliberately skips amount validation (model output with an unparseable
// amount records as zero), so validation is a separate call, not part of
// Record.
func (d Draft) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("draft: name is required")
	}
	if !d.Amount.IsPositive() {
		return fmt.Errorf("draft: amount must be positive, got %s", d.Amount)
	}
	if d.Category == "" {
		return fmt.Errorf("draft: category is required")
	}
	if !d.PaymentMethod.Valid() {
		return fmt.Errorf("draft: unknown payment method %q", d.PaymentMethod)
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return fmt.Errorf("draft: bad date %q: %w", d.Date, err)
	}
	return nil
}

// Expense is a persisted expense row.
type Expense struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Amount        decimal.Decimal
	Category      string
	Subcategory   string
	Date          string
	PaymentMethod PaymentMethod
	IsRecurring   bool
	RecurringID   *uuid.UUID
	CreatedAt     time.Time
}

// RecurringExpense is a template that materializes into a real expense once a
// month on its configured day.
type RecurringExpense struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Name             string
	Amount           decimal.Decimal
	Category         string
	Subcategory      string
	PaymentMethod    PaymentMethod
	DayOfMonth       int
	Active           bool
	LastMaterialized *time.Time
}

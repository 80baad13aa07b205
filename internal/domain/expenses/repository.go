package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists expenses and recurring templates in Postgres.
type Store struct {
	db DB
}

// NewStore creates an expense store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Record inserts one expense and returns the stored row.
func (s *Store) Record(ctx context.Context, userID uuid.UUID, d Draft) (*Expense, error) {
	query := `
		INSERT INTO expenses (user_id, name, amount, category, subcategory, expense_date, payment_method, is_recurring, recurring_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	e := &Expense{
		UserID:        userID,
		Name:          d.Name,
		Amount:        d.Amount,
		Category:      d.Category,
		Subcategory:   d.Subcategory,
		Date:          d.Date,
		PaymentMethod: d.PaymentMethod,
		IsRecurring:   d.IsRecurring,
		RecurringID:   d.RecurringID,
	}

	err := s.db.QueryRow(ctx, query,
		userID, d.Name, d.Amount, d.Category, d.Subcategory, d.Date,
		string(d.PaymentMethod), d.IsRecurring, d.RecurringID,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record expense: %w", err)
	}

	return e, nil
}

// ListSince returns expenses dated on or after the given day, newest first.
func (s *Store) ListSince(ctx context.Context, userID uuid.UUID, since string) ([]Expense, error) {
	query := `
		SELECT id, name, amount, category, subcategory, expense_date, payment_method, is_recurring, recurring_id, created_at
		FROM expenses
		WHERE user_id = $1 AND expense_date >= $2
		ORDER BY expense_date DESC, created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e := Expense{UserID: userID}
		var method string
		var day time.Time
		if err := rows.Scan(&e.ID, &e.Name, &e.Amount, &e.Category, &e.Subcategory, &day, &method, &e.IsRecurring, &e.RecurringID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = day.Format("2006-01-02")
		e.PaymentMethod = PaymentMethod(method)
		out = append(out, e)
	}
	return out, rows.Err()
}

// MonthlyCategoryTotals aggregates spend per category for the month holding
// the given day.
func (s *Store) MonthlyCategoryTotals(ctx context.Context, userID uuid.UUID, day time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1 AND date_trunc('month', expense_date::date) = date_trunc('month', $2::date)
		GROUP BY category
	`

	rows, err := s.db.Query(ctx, query, userID, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category string
		var total decimal.Decimal
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals[category] = total
	}
	return totals, rows.Err()
}

// HistoricalMonthlyTotals returns total spend per month, oldest first,
// capped at the given number of months.
func (s *Store) HistoricalMonthlyTotals(ctx context.Context, userID uuid.UUID, months int) ([]MonthTotal, error) {
	query := `
		SELECT to_char(date_trunc('month', expense_date::date), 'YYYY-MM'), COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, months)
	if err != nil {
		return nil, fmt.Errorf("historical totals: %w", err)
	}
	defer rows.Close()

	var out []MonthTotal
	for rows.Next() {
		var mt MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, fmt.Errorf("scan historical total: %w", err)
		}
		out = append(out, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first for prompt rendering.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MonthTotal is one month's aggregate spend.
type MonthTotal struct {
	Month string // YYYY-MM
	Total decimal.Decimal
}

// ListDueRecurring returns active recurring templates due for the given day
// that have not materialized this month yet.
func (s *Store) ListDueRecurring(ctx context.Context, day time.Time) ([]RecurringExpense, error) {
	query := `
		SELECT id, user_id, name, amount, category, subcategory, payment_method, day_of_month, last_materialized
		FROM recurring_expenses
		WHERE active
		  AND day_of_month = $1
		  AND (last_materialized IS NULL OR date_trunc('month', last_materialized) < date_trunc('month', $2::timestamptz))
	`

	rows, err := s.db.Query(ctx, query, day.Day(), day)
	if err != nil {
		return nil, fmt.Errorf("list due recurring: %w", err)
	}
	defer rows.Close()

	var out []RecurringExpense
	for rows.Next() {
		var r RecurringExpense
		var method string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Amount, &r.Category, &r.Subcategory, &method, &r.DayOfMonth, &r.LastMaterialized); err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		r.PaymentMethod = PaymentMethod(method)
		r.Active = true
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkMaterialized stamps a recurring template after its expense is recorded.
func (s *Store) MarkMaterialized(ctx context.Context, id uuid.UUID, when time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE recurring_expenses SET last_materialized = $2 WHERE id = $1`, id, when)
	if err != nil {
		return fmt.Errorf("mark materialized: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark materialized: recurring %s not found", id)
	}
	return nil
}

// ListRecurring returns all active recurring templates for a user.
func (s *Store) ListRecurring(ctx context.Context, userID uuid.UUID) ([]RecurringExpense, error) {
	query := `
		SELECT id, user_id, name, amount, category, subcategory, payment_method, day_of_month, last_materialized
		FROM recurring_expenses
		WHERE user_id = $1 AND active
		ORDER BY day_of_month
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	var out []RecurringExpense
	for rows.Next() {
		var r RecurringExpense
		var method string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Amount, &r.Category, &r.Subcategory, &method, &r.DayOfMonth, &r.LastMaterialized); err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		r.PaymentMethod = PaymentMethod(method)
		r.Active = true
		out = append(out, r)
	}
	return out, rows.Err()
}

package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads budgets, income and goals from Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a snapshot repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// GetBudgets returns the per-category budgets a user has configured.
func (r *Repository) GetBudgets(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `SELECT category, amount FROM budgets WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	defer rows.Close()

	budgets := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category string
		var amount decimal.Decimal
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets[category] = amount
	}
	return budgets, rows.Err()
}

// GetMonthlyIncome returns the user's configured monthly income, zero when
// none is set.
func (r *Repository) GetMonthlyIncome(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var income decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT amount FROM income WHERE user_id = $1`, userID).Scan(&income)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get income: %w", err)
	}
	return income, nil
}

// GetGoals returns the user's savings goals with progress computed.
func (r *Repository) GetGoals(ctx context.Context, userID uuid.UUID) ([]GoalProgress, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, target_amount, saved_amount FROM goals WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}
	defer rows.Close()

	var goals []GoalProgress
	for rows.Next() {
		var g GoalProgress
		if err := rows.Scan(&g.Name, &g.Target, &g.Saved); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.Target.IsPositive() {
			g.Percent = g.Saved.Div(g.Target).Mul(decimal.NewFromInt(100)).Round(1)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

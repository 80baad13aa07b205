package expenses

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RecurringSource lists due templates and stamps them once materialized.
// *Store implements it.
type RecurringSource interface {
	ListDueRecurring(ctx context.Context, day time.Time) ([]RecurringExpense, error)
	MarkMaterialized(ctx context.Context, id uuid.UUID, when time.Time) error
}

// Recorder records one expense. *Store implements it.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, d Draft) (*Expense, error)
}

// Materializer turns due recurring templates into real expenses. The cron
// scheduler runs it daily; re-running on the same day is a no-op because the
// source only hands back templates not yet stamped for the current month.
type Materializer struct {
	source   RecurringSource
	recorder Recorder
	logger   *slog.Logger
}

// NewMaterializer wires a materializer.
func NewMaterializer(source RecurringSource, recorder Recorder, logger *slog.Logger) *Materializer {
	return &Materializer{source: source, recorder: recorder, logger: logger}
}

// MaterializeDue records an expense for every template due at now. One
// failing template does not stop the rest; failures are logged and counted.
func (m *Materializer) MaterializeDue(ctx context.Context, now time.Time) (int, error) {
	due, err := m.source.ListDueRecurring(ctx, now)
	if err != nil {
		return 0, err
	}

	materialized := 0
	for _, r := range due {
		id := r.ID
		draft := Draft{
			Name:          r.Name,
			Amount:        r.Amount,
			Category:      r.Category,
			Subcategory:   r.Subcategory,
			Date:          now.Format("2006-01-02"),
			PaymentMethod: r.PaymentMethod,
			IsRecurring:   true,
			RecurringID:   &id,
		}

		if _, err := m.recorder.Record(ctx, r.UserID, draft); err != nil {
			m.logger.Error("recurring expense materialization failed",
				"recurring_id", r.ID, "user_id", r.UserID, "error", err)
			continue
		}
		if err := m.source.MarkMaterialized(ctx, r.ID, now); err != nil {
			m.logger.Error("recurring expense stamp failed",
				"recurring_id", r.ID, "error", err)
			continue
		}
		materialized++
	}

	if materialized > 0 {
		m.logger.Info("recurring expenses materialized", "count", materialized)
	}
	return materialized, nil
}

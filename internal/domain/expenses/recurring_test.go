package expenses

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecurringSource struct {
	due     []RecurringExpense
	stamped []uuid.UUID
	listErr error
	markErr error
}

func (f *fakeRecurringSource) ListDueRecurring(_ context.Context, _ time.Time) ([]RecurringExpense, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakeRecurringSource) MarkMaterialized(_ context.Context, id uuid.UUID, _ time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.stamped = append(f.stamped, id)
	return nil
}

type fakeRecorder struct {
	recorded []Draft
	failFor  string
}

func (f *fakeRecorder) Record(_ context.Context, _ uuid.UUID, d Draft) (*Expense, error) {
	if f.failFor != "" && d.Name == f.failFor {
		return nil, errors.New("insert failed")
	}
	f.recorded = append(f.recorded, d)
	return &Expense{ID: uuid.New(), Name: d.Name, Amount: d.Amount}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func template(name string, day int) RecurringExpense {
	return RecurringExpense{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          name,
		Amount:        decimal.NewFromInt(100),
		Category:      "Casa",
		PaymentMethod: PaymentTransfer,
		DayOfMonth:    day,
		Active:        true,
	}
}

func TestMaterializer_MaterializeDue(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	rent := template("Alquiler", 5)
	gym := template("Gimnasio", 5)

	source := &fakeRecurringSource{due: []RecurringExpense{rent, gym}}
	recorder := &fakeRecorder{}

	m := NewMaterializer(source, recorder, discardLogger())
	count, err := m.MaterializeDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, recorder.recorded, 2)
	d := recorder.recorded[0]
	assert.Equal(t, "Alquiler", d.Name)
	assert.Equal(t, "2024-03-05", d.Date)
	assert.True(t, d.IsRecurring)
	require.NotNil(t, d.RecurringID)
	assert.Equal(t, rent.ID, *d.RecurringID)

	assert.Equal(t, []uuid.UUID{rent.ID, gym.ID}, source.stamped)
}

func TestMaterializer_OneFailureDoesNotStopRest(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	rent := template("Alquiler", 5)
	gym := template("Gimnasio", 5)

	source := &fakeRecurringSource{due: []RecurringExpense{rent, gym}}
	recorder := &fakeRecorder{failFor: "Alquiler"}

	m := NewMaterializer(source, recorder, discardLogger())
	count, err := m.MaterializeDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The failed template is not stamped, so a later run retries it.
	assert.Equal(t, []uuid.UUID{gym.ID}, source.stamped)
}

func TestMaterializer_NothingDue(t *testing.T) {
	source := &fakeRecurringSource{}
	recorder := &fakeRecorder{}

	m := NewMaterializer(source, recorder, discardLogger())
	count, err := m.MaterializeDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, recorder.recorded)
}

func TestMaterializer_SourceError(t *testing.T) {
	source := &fakeRecurringSource{listErr: errors.New("db down")}
	m := NewMaterializer(source, &fakeRecorder{}, discardLogger())

	_, err := m.MaterializeDue(context.Background(), time.Now())
	assert.ErrorContains(t, err, "db down")
}

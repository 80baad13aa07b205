package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	expenseID := uuid.New()
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	draft := Draft{
		Name:          "supermercado",
		Amount:        decimal.NewFromInt(50),
		Category:      "Alimentación",
		Subcategory:   "Supermercado",
		Date:          "2024-03-15",
		PaymentMethod: PaymentCard,
	}

	mock.ExpectQuery(`INSERT INTO expenses`).
		WithArgs(userID, "supermercado", draft.Amount, "Alimentación", "Supermercado",
			"2024-03-15", "Tarjeta", false, (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(expenseID, created))

	store := NewStore(mock)
	got, err := store.Record(context.Background(), userID, draft)
	require.NoError(t, err)

	assert.Equal(t, expenseID, got.ID)
	assert.Equal(t, "supermercado", got.Name)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListSince(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	// expense_date arrives from Postgres as a date value, not text.
	mock.ExpectQuery(`SELECT id, name, amount, category, subcategory, expense_date`).
		WithArgs(userID, "2024-03-01").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "amount", "category", "subcategory", "expense_date",
			"payment_method", "is_recurring", "recurring_id", "created_at",
		}).AddRow(
			uuid.New(), "metro", decimal.NewFromFloat(1.5), "Transporte", "",
			time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
			"Tarjeta", false, (*uuid.UUID)(nil), created,
		))

	store := NewStore(mock)
	got, err := store.ListSince(context.Background(), userID, "2024-03-01")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-14", got[0].Date)
	assert.Equal(t, PaymentCard, got[0].PaymentMethod)
	assert.Equal(t, userID, got[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MonthlyCategoryTotals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT category, COALESCE`).
		WithArgs(userID, "2024-03-15").
		WillReturnRows(pgxmock.NewRows([]string{"category", "sum"}).
			AddRow("Alimentación", decimal.NewFromFloat(210.45)).
			AddRow("Transporte", decimal.NewFromInt(60)))

	store := NewStore(mock)
	totals, err := store.MonthlyCategoryTotals(context.Background(), userID, day)
	require.NoError(t, err)

	assert.Len(t, totals, 2)
	assert.True(t, totals["Alimentación"].Equal(decimal.NewFromFloat(210.45)))
	assert.True(t, totals["Transporte"].Equal(decimal.NewFromInt(60)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_HistoricalMonthlyTotals_OldestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()

	// Query returns newest first; the store reverses for rendering.
	mock.ExpectQuery(`GROUP BY 1`).
		WithArgs(userID, 3).
		WillReturnRows(pgxmock.NewRows([]string{"month", "sum"}).
			AddRow("2024-03", decimal.NewFromInt(300)).
			AddRow("2024-02", decimal.NewFromInt(200)).
			AddRow("2024-01", decimal.NewFromInt(100)))

	store := NewStore(mock)
	got, err := store.HistoricalMonthlyTotals(context.Background(), userID, 3)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "2024-01", got[0].Month)
	assert.Equal(t, "2024-03", got[2].Month)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListDueRecurring(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	day := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	recID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`FROM recurring_expenses`).
		WithArgs(5, day).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "name", "amount", "category", "subcategory",
			"payment_method", "day_of_month", "last_materialized",
		}).AddRow(recID, userID, "Alquiler", decimal.NewFromInt(800), "Casa", "",
			"Transferencia", 5, (*time.Time)(nil)))

	store := NewStore(mock)
	due, err := store.ListDueRecurring(context.Background(), day)
	require.NoError(t, err)

	require.Len(t, due, 1)
	assert.Equal(t, "Alquiler", due[0].Name)
	assert.Equal(t, PaymentTransfer, due[0].PaymentMethod)
	assert.True(t, due[0].Active)
	assert.Nil(t, due[0].LastMaterialized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MarkMaterialized_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	when := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE recurring_expenses`).
		WithArgs(id, when).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStore(mock)
	err = store.MarkMaterialized(context.Background(), id, when)
	assert.ErrorContains(t, err, "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraft_Validate(t *testing.T) {
	valid := Draft{
		Name:          "gasolina",
		Amount:        decimal.NewFromInt(40),
		Category:      "Transporte",
		Date:          "2024-03-15",
		PaymentMethod: PaymentCash,
	}
	assert.NoError(t, valid.Validate())

	t.Run("zero amount", func(t *testing.T) {
		d := valid
		d.Amount = decimal.Zero
		assert.ErrorContains(t, d.Validate(), "amount")
	})

	t.Run("bad payment method", func(t *testing.T) {
		d := valid
		d.PaymentMethod = "Cheque"
		assert.ErrorContains(t, d.Validate(), "payment method")
	})

	t.Run("bad date", func(t *testing.T) {
		d := valid
		d.Date = "15/03/2024"
		assert.ErrorContains(t, d.Validate(), "date")
	})
}

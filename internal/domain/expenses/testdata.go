package expenses

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestDataGenerator produces realistic expense fixtures for tests and
// seeding.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a fixed seed so fixtures are
// reproducible.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

var fixtureCategories = map[string][]string{
	"Alimentación": {"supermercado", "frutería", "panadería", "carnicería"},
	"Transporte":   {"gasolina", "metro", "taxi", "parking"},
	"Ocio":         {"cine", "concierto", "videojuegos"},
	"Restaurantes": {"menú del día", "cena", "cafetería"},
	"Salud":        {"farmacia", "dentista", "fisio"},
}

var fixtureMethods = []PaymentMethod{PaymentCard, PaymentCash, PaymentBizum, PaymentTransfer}

// Expense generates one random expense for the user within the given month.
func (g *TestDataGenerator) Expense(userID uuid.UUID, month time.Time) Expense {
	category := g.faker.RandomString(keysOf(fixtureCategories))
	names := fixtureCategories[category]

	day := g.faker.Number(1, 28)
	date := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
	cents := g.faker.Number(100, 15000)

	return Expense{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          fmt.Sprintf("%s %s", g.faker.RandomString(names), g.faker.LetterN(4)),
		Amount:        decimal.New(int64(cents), -2),
		Category:      category,
		Date:          date.Format("2006-01-02"),
		PaymentMethod: fixtureMethods[g.faker.Number(0, len(fixtureMethods)-1)],
		CreatedAt:     date,
	}
}

// Expenses generates count random expenses within the given month.
func (g *TestDataGenerator) Expenses(userID uuid.UUID, month time.Time, count int) []Expense {
	out := make([]Expense, count)
	for i := range out {
		out[i] = g.Expense(userID, month)
	}
	return out
}

func keysOf(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Package report renders monthly expense exports as Excel workbooks or CSV
// files and stores them for download.
package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
)

// Row is one exported expense line. The csv tags drive the CSV layout.
type Row struct {
	Date        string `csv:"fecha"`
	Name        string `csv:"concepto"`
	Category    string `csv:"categoria"`
	Subcategory string `csv:"subcategoria"`
	Amount      string `csv:"importe"`
	Payment     string `csv:"metodo_pago"`
}

// Monthly is a rendered monthly report.
type Monthly struct {
	Month  string // YYYY-MM
	Rows   []Row
	Totals map[string]decimal.Decimal
	Total  decimal.Decimal
}

// BuildMonthly filters the expenses to the given month and aggregates
// per-category totals.
func BuildMonthly(month string, items []expenses.Expense) Monthly {
	m := Monthly{
		Month:  month,
		Totals: make(map[string]decimal.Decimal),
	}

	for _, e := range items {
		if !strings.HasPrefix(e.Date, month) {
			continue
		}
		m.Rows = append(m.Rows, Row{
			Date:        e.Date,
			Name:        e.Name,
			Category:    e.Category,
			Subcategory: e.Subcategory,
			Amount:      e.Amount.StringFixed(2),
			Payment:     string(e.PaymentMethod),
		})
		m.Totals[e.Category] = m.Totals[e.Category].Add(e.Amount)
		m.Total = m.Total.Add(e.Amount)
	}
	return m
}

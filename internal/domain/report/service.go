package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
	"github.com/FACorreiaa/expense-assistant/pkg/storage"
)

// Format selects the export file type.
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatCSV   Format = "csv"
)

const (
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV   = "text/csv"
)

// ExpenseLister reads expenses for export. *expenses.Store implements it.
type ExpenseLister interface {
	ListSince(ctx context.Context, userID uuid.UUID, since string) ([]expenses.Expense, error)
}

// Service renders and stores monthly exports.
type Service struct {
	expenses ExpenseLister
	files    storage.Storage
	logger   *slog.Logger
}

// NewService creates a report service.
func NewService(expenses ExpenseLister, files storage.Storage, logger *slog.Logger) *Service {
	return &Service{expenses: expenses, files: files, logger: logger}
}

// ExportMonthly renders the given month ("YYYY-MM") in the requested format
// and stores the file for download.
func (s *Service) ExportMonthly(ctx context.Context, userID uuid.UUID, month string, format Format) (*storage.FileInfo, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, fmt.Errorf("report: bad month %q: %w", month, err)
	}

	items, err := s.expenses.ListSince(ctx, userID, month+"-01")
	if err != nil {
		return nil, err
	}
	monthly := BuildMonthly(month, items)

	var buf *bytes.Buffer
	var filename, contentType string
	switch format {
	case FormatCSV:
		if buf, err = RenderCSV(monthly); err != nil {
			return nil, err
		}
		filename = "gastos-" + month + ".csv"
		contentType = contentTypeCSV
	case FormatExcel:
		if buf, err = RenderExcel(monthly); err != nil {
			return nil, err
		}
		filename = "gastos-" + month + ".xlsx"
		contentType = contentTypeExcel
	default:
		return nil, fmt.Errorf("report: unknown format %q", format)
	}

	info, err := s.files.Save(ctx, userID, filename, contentType, buf)
	if err != nil {
		return nil, err
	}
	s.logger.Info("monthly report exported",
		"user_id", userID, "month", month, "format", format, "rows", len(monthly.Rows))
	return info, nil
}

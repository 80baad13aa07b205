package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Gastos"

// RenderExcel renders the report as an xlsx workbook: one sheet with the
// expense lines, followed by per-category totals.
func RenderExcel(m Monthly) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}

	header := []string{"Fecha", "Concepto", "Categoría", "Subcategoría", "Importe (€)", "Método de pago"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("report: write header: %w", err)
		}
	}

	rowIdx := 2
	for _, row := range m.Rows {
		values := []any{row.Date, row.Name, row.Category, row.Subcategory, row.Amount, row.Payment}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("report: write row: %w", err)
			}
		}
		rowIdx++
	}

	// Totals block, alphabetical, separated by a blank row.
	rowIdx++
	categories := make([]string, 0, len(m.Totals))
	for c := range m.Totals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		nameCell, _ := excelize.CoordinatesToCellName(1, rowIdx)
		totalCell, _ := excelize.CoordinatesToCellName(2, rowIdx)
		_ = f.SetCellValue(sheetName, nameCell, "Total "+c)
		_ = f.SetCellValue(sheetName, totalCell, m.Totals[c].StringFixed(2))
		rowIdx++
	}
	nameCell, _ := excelize.CoordinatesToCellName(1, rowIdx)
	totalCell, _ := excelize.CoordinatesToCellName(2, rowIdx)
	_ = f.SetCellValue(sheetName, nameCell, "Total "+m.Month)
	_ = f.SetCellValue(sheetName, totalCell, m.Total.StringFixed(2))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report: write workbook: %w", err)
	}
	return buf, nil
}

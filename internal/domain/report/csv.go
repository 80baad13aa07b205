package report

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
)

// RenderCSV renders the expense lines as CSV with a header row. Totals are
// left out, spreadsheet consumers compute their own.
func RenderCSV(m Monthly) (*bytes.Buffer, error) {
	rows := m.Rows
	if rows == nil {
		rows = []Row{}
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("report: marshal csv: %w", err)
	}
	return bytes.NewBuffer(out), nil
}

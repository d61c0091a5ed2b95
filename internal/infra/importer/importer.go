// Package importer extracts client rows from spreadsheets.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// Excel reads client lists from .xlsx workbooks. The header row is located
// by content, not position, so files with title rows above the table still
// import.
type Excel struct{}

// NewExcel returns an .xlsx importer.
func NewExcel() *Excel { return &Excel{} }

// Column headings accepted for each field, compared case-insensitively.
var (
	nameHeaders    = []string{"client", "client name", "name", "customer", "customer name", "company"}
	phoneHeaders   = []string{"phone", "mobile", "contact", "phone number"}
	addressHeaders = []string{"address", "location"}
)

// ImportClients reads the first sheet and returns one record per data row
// with a non-empty name. Rows above the header row are ignored.
func (e *Excel) ImportClients(r io.Reader) ([]domain.ImportedClient, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	headerIdx, cols := findHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no client column found in sheet %q", sheets[0])
	}

	var out []domain.ImportedClient
	for _, row := range rows[headerIdx+1:] {
		name := cell(row, cols.name)
		if name == "" {
			continue
		}
		out = append(out, domain.ImportedClient{
			Name:    name,
			Phone:   cell(row, cols.phone),
			Address: cell(row, cols.address),
		})
	}
	return out, nil
}

type columns struct {
	name    int
	phone   int
	address int
}

// findHeader scans for the first row containing a recognizable name column
// and maps the field columns from it. Missing phone/address columns map
// to -1 and yield empty fields.
func findHeader(rows [][]string) (int, columns) {
	for i, row := range rows {
		cols := columns{name: -1, phone: -1, address: -1}
		for j, raw := range row {
			h := strings.ToLower(strings.TrimSpace(raw))
			switch {
			case cols.name < 0 && matches(h, nameHeaders):
				cols.name = j
			case cols.phone < 0 && matches(h, phoneHeaders):
				cols.phone = j
			case cols.address < 0 && matches(h, addressHeaders):
				cols.address = j
			}
		}
		if cols.name >= 0 {
			return i, cols
		}
	}
	return -1, columns{}
}

func matches(h string, candidates []string) bool {
	for _, c := range candidates {
		if h == c {
			return true
		}
	}
	return false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/finsafe/statement-anonymizer/internal/grid"
)

// FromXLSX extracts the first non-empty sheet of a workbook into a grid.
// Cells come back as formatted strings, which is what the classifier wants:
// it sees the same text a human exporting to CSV would.
func FromXLSX(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		if len(rows) >= 2 {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("workbook has no sheet with data rows")
}

// FromFile dispatches on file extension: PDF and workbook formats get their
// dedicated extractors, everything else is treated as delimited text.
func FromFile(filePath string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return FromPDF(filePath)
	case ".xlsx", ".xlsm", ".xltx":
		return FromXLSX(filePath)
	default:
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		return grid.Tokenize(string(data))
	}
}

package grid

import (
	"fmt"
	"strings"
)

// Shape normalizes a ragged grid into a rectangle: strips a leading BOM,
// pads short rows, and grows the header when data rows are wider. Rows are
// never reordered or dropped here, only padded. Row 0 is the header.
func Shape(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}

	if len(out[0]) > 0 {
		out[0][0] = strings.TrimPrefix(out[0][0], "\uFEFF")
	}

	width := 0
	for _, row := range out {
		if len(row) > width {
			width = len(row)
		}
	}

	// Grow the header first so synthetic names line up with padded cells.
	for len(out[0]) < width {
		out[0] = append(out[0], fmt.Sprintf("Column %d", len(out[0])+1))
	}

	for i := 1; i < len(out); i++ {
		for len(out[i]) < width {
			out[i] = append(out[i], "")
		}
	}
	return out
}

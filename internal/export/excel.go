// Package export renders a formatted seating plan into an Excel workbook
// for printing and notice boards.  One worksheet carries the seat grid
// with batch colors, a second carries the summary numbers.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/blazex/seat-allocation/internal/seating"
)

const (
	planSheet    = "Seating Plan"
	summarySheet = "Summary"
)

// Excel builds the workbook for a plan.  title becomes the heading of the
// plan sheet, typically "<session> - <classroom> - <date>".  The caller
// owns the returned file and should stream it with WriteTo.
func Excel(title string, out *seating.Output) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), planSheet)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	if err := writePlan(f, title, out); err != nil {
		return nil, err
	}
	if err := writeSummary(f, out); err != nil {
		return nil, err
	}
	return f, nil
}

// writePlan renders the grid.  Row 1 is the heading, row 2 the column
// letters, then one sheet row per seat row with the row number in
// column A.
func writePlan(f *excelize.File, title string, out *seating.Output) error {
	if err := f.SetCellValue(planSheet, "A1", title); err != nil {
		return err
	}
	head, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(planSheet, "A1", "A1", head); err != nil {
		return err
	}

	for c := 0; c < out.Metadata.Cols; c++ {
		cell, err := excelize.CoordinatesToCellName(c+2, 2)
		if err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(planSheet, cell, col); err != nil {
			return err
		}
	}

	styles := make(map[string]int) // fill color -> style id
	for r, row := range out.Seating {
		rowCell, err := excelize.CoordinatesToCellName(1, r+3)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(planSheet, rowCell, r+1); err != nil {
			return err
		}
		for c, seat := range row {
			cell, err := excelize.CoordinatesToCellName(c+2, r+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(planSheet, cell, seat.Display); err != nil {
				return err
			}
			styleID, ok := styles[seat.Color]
			if !ok {
				styleID, err = f.NewStyle(&excelize.Style{
					Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{seat.Color}},
					Border: []excelize.Border{
						{Type: "left", Style: 1, Color: "999999"},
						{Type: "right", Style: 1, Color: "999999"},
						{Type: "top", Style: 1, Color: "999999"},
						{Type: "bottom", Style: 1, Color: "999999"},
					},
					Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
				})
				if err != nil {
					return err
				}
				styles[seat.Color] = styleID
			}
			if err := f.SetCellStyle(planSheet, cell, cell, styleID); err != nil {
				return err
			}
		}
	}

	last, err := excelize.ColumnNumberToName(out.Metadata.Cols + 1)
	if err != nil {
		return err
	}
	return f.SetColWidth(planSheet, "B", last, 14)
}

// writeSummary lists the distribution numbers and the validation verdict.
func writeSummary(f *excelize.File, out *seating.Output) error {
	rows := [][]interface{}{
		{"Total students", out.Summary.TotalStudents},
		{"Broken seats", out.Summary.BrokenSeatsCount},
		{"Set A", out.Summary.PaperSetDistribution["A"]},
		{"Set B", out.Summary.PaperSetDistribution["B"]},
		{"Plan valid", out.Validation.IsValid},
	}
	for b := 1; b <= out.Metadata.NumBatches; b++ {
		rows = append(rows, []interface{}{fmt.Sprintf("Batch %d seated", b), out.Summary.BatchDistribution[b]})
	}
	for i, pair := range rows {
		keyCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		valCell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, keyCell, pair[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, valCell, pair[1]); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 22)
}

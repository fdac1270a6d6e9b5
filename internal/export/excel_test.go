package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazex/seat-allocation/internal/seating"
)

func TestExcelRendersGridAndSummary(t *testing.T) {
	out := seating.New(seating.Config{
		Rows: 3, Cols: 4, NumBatches: 2, BatchByColumn: true,
		BrokenSeats: [][2]int{{0, 0}},
	}).Generate().Format()

	f, err := Excel("Midterm — Room 101", out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue(planSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Midterm — Room 101", title)

	// Column letters along row 2, row numbers down column A.
	colHead, err := f.GetCellValue(planSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "A", colHead)
	rowHead, err := f.GetCellValue(planSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "1", rowHead)

	// The broken seat at (0,0) lands in B3.
	brokenCell, err := f.GetCellValue(planSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "BROKEN", brokenCell)

	// An allocated seat carries roll+set.
	seatCell, err := f.GetCellValue(planSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, out.Seating[0][1].Display, seatCell)

	total, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "11", total, "12 seats minus one broken")
}

package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazex/seat-allocation/internal/seating"
)

func TestParseHeaderlessCSV(t *testing.T) {
	res, err := Parse(strings.NewReader("BTCS24O1001,Asha\nBTCS24O1002,Bilal\n"))
	require.NoError(t, err)

	assert.Equal(t, []seating.RollEntry{
		{Roll: "BTCS24O1001", Name: "Asha"},
		{Roll: "BTCS24O1002", Name: "Bilal"},
	}, res.Entries)
	assert.Empty(t, res.Warnings)
}

func TestParseHeaderMapsColumns(t *testing.T) {
	in := "Name,Roll No\nAsha,BTCS24O1001\nBilal,BTCS24O1002\n"
	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "BTCS24O1001", res.Entries[0].Roll)
	assert.Equal(t, "Asha", res.Entries[0].Name)
}

func TestParseTSV(t *testing.T) {
	in := "Roll\tName\nE001\tAsha\nE002\tBilal\n"
	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "E002", res.Entries[1].Roll)
	assert.Equal(t, "Bilal", res.Entries[1].Name)
}

func TestParseSkipsRowsWithoutRoll(t *testing.T) {
	in := "E001,Asha\n,Nameless\n\nE003,Chitra\n"
	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no roll number")
}

func TestParseFlagsDuplicates(t *testing.T) {
	in := "E001,Asha\nE001,Asha Again\n"
	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	// Both rows are kept; the validator decides what a duplicate means.
	assert.Len(t, res.Entries, 2)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "duplicate roll E001")
}

func TestParseHeaderWithoutNameColumn(t *testing.T) {
	in := "Enrollment\nE001\nE002\n"
	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "E001", res.Entries[0].Roll)
	assert.Empty(t, res.Entries[0].Name)
}

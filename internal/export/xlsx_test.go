package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadsync/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")

	leads := []model.Lead{
		{
			RunID:       "run-1",
			UID:         "<a@mail>",
			Name:        "Amit Shah",
			Phone:       "'+919825012345",
			Email:       "N/A",
			Product:     "Industrial Valves",
			Status:      "New",
			ProcessedAt: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			RunID:       "run-1",
			UID:         "<b@mail>",
			Name:        "N/A",
			Phone:       "'+919876543210",
			Email:       "sunita@example.in",
			Product:     "N/A",
			Status:      "New",
			ProcessedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, WriteXLSX(path, "Leads", leads))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet, ok := f.Sheet["Leads"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Date", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Message ID", sheet.Rows[0].Cells[6].String())

	assert.Equal(t, "2024-03-15 09:30:00", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "Amit Shah", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "'+919825012345", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "<b@mail>", sheet.Rows[2].Cells[6].String())
}

func TestWriteXLSXEmptyJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, WriteXLSX(path, "", nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet, ok := f.Sheet["Leads"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 1)
}

package sheets

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const demoCSV = `city,price,sold_date,notes
Kent,550000,2024-01-15,tidy
Renton,not-a-price,2024-02-01,
Seattle,850000,someday,view
`

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "homes.csv")
	require.NoError(t, os.WriteFile(path, []byte(demoCSV), 0o600))
	return path
}

func TestReadCSVWithCoercion(t *testing.T) {
	data, err := NewDataReader(writeCSV(t)).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "price", "sold_date", "notes"}, data.Headers)
	require.Len(t, data.Rows, 3)

	tbl, err := data.Table(Schema{Numeric: []string{"price"}, Time: []string{"sold_date"}})
	require.NoError(t, err)

	prices, err := tbl.Floats("price")
	require.NoError(t, err)
	assert.Equal(t, 550000.0, prices[0])
	assert.True(t, math.IsNaN(prices[1]), "unparseable price should be missing")

	dates, err := tbl.Times("sold_date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), dates[0])
	assert.True(t, dates[2].IsZero(), "unparseable date should be missing")
}

func TestSchemaIgnoresUnknownColumns(t *testing.T) {
	data, err := NewDataReader(writeCSV(t)).ReadData()
	require.NoError(t, err)
	_, err = data.Table(Schema{Numeric: []string{"price", "zestimate"}})
	assert.NoError(t, err)
}

func TestReadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homes.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"city", "price"},
		{"Kent", 550000},
		{"Renton", 620000},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "price"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Kent", data.Rows[0][0])
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "absent.csv")).ReadData()
	assert.Error(t, err)
}

func TestShortRowsArePadded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2\n"), 0o600))
	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", ""}, data.Rows[0])
}

func TestRemoteSheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(demoCSV))
	}))
	defer srv.Close()

	data, err := NewRemoteSheet(srv.URL).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, len(data.Rows))
}

func TestRemoteSheetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewRemoteSheet(srv.URL).Read(context.Background())
	assert.Error(t, err)
}

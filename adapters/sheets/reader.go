// Package sheets is the spreadsheet connection layer: local .xlsx/.csv
// files and remote CSV-export URLs, decoded into tables with best-effort
// type coercion. Connection failures are returned to the caller; coercion
// failures become missing cells.
package sheets

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dashlab/domain/table"
)

// SheetData holds raw spreadsheet rows before coercion.
type SheetData struct {
	Headers []string
	Rows    [][]string
}

// Schema declares which raw columns should be coerced after loading.
// Columns not listed stay as strings.
type Schema struct {
	Numeric []string
	Time    []string
}

// DataReader reads Excel and CSV files.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the given file, dispatching on the
// extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into raw rows.
func (r *DataReader) ReadData() (*SheetData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}
	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcel() (*SheetData, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("spreadsheet must have a header row and at least one data row")
	}
	return fromRows(rows)
}

func (r *DataReader) readCSV() (*SheetData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("spreadsheet must have a header row and at least one data row")
	}
	return fromRows(rows)
}

// fromRows splits a raw row grid into headers and data, padding short rows
// so every record has a cell per header.
func fromRows(rows [][]string) (*SheetData, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				rec[i] = strings.TrimSpace(row[i])
			}
		}
		data = append(data, rec)
	}
	return &SheetData{Headers: headers, Rows: data}, nil
}

// Table converts raw rows into a table, coercing the schema's columns.
// Unknown schema columns are ignored, matching the best-effort contract.
func (d *SheetData) Table(schema Schema) (*table.Table, error) {
	t := table.New()
	for i, h := range d.Headers {
		col := make([]string, len(d.Rows))
		for j, row := range d.Rows {
			col[j] = row[i]
		}
		if err := t.AddStrings(h, col); err != nil {
			return nil, err
		}
	}
	for _, name := range schema.Numeric {
		if !t.HasCol(name) {
			continue
		}
		if err := t.ToNumeric(name); err != nil {
			return nil, err
		}
	}
	for _, name := range schema.Time {
		if !t.HasCol(name) {
			continue
		}
		if err := t.ToTime(name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

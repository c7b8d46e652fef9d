// Command seedsheet writes a demo home-sales spreadsheet so the labs can
// be pointed at a real local file via SPREADSHEET_FILE.
package main

import (
	"flag"
	"log"
	"math"

	"github.com/xuri/excelize/v2"

	"dashlab/domain/synth"
	"dashlab/domain/table"
)

func main() {
	out := flag.String("out", "home_sales.xlsx", "output spreadsheet path")
	rows := flag.Int("rows", 2400, "number of sales rows")
	seed := flag.Int64("seed", 42, "generator seed")
	flag.Parse()

	cfg := synth.DefaultHomeSalesConfig()
	cfg.Count = *rows
	cfg.Seed = *seed
	t := synth.HomeSales(cfg)

	if err := writeSheet(t, *out); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("wrote %d rows to %s", t.NumRows(), *out)
}

func writeSheet(t *table.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck
	sheet := f.GetSheetName(0)

	// sold_month is derived on load, so the file carries only raw columns.
	var names []string
	for _, n := range t.Names() {
		if n != "sold_month" {
			names = append(names, n)
		}
	}

	for j, name := range names {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for i := 0; i < t.NumRows(); i++ {
		for j, name := range names {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(t.Col(name), i)); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func cellValue(c *table.Column, i int) interface{} {
	switch c.Kind {
	case table.KindString:
		return c.Strings[i]
	case table.KindNumber:
		if math.IsNaN(c.Floats[i]) {
			return ""
		}
		return c.Floats[i]
	case table.KindTime:
		if c.Times[i].IsZero() {
			return ""
		}
		return c.Times[i].Format("2006-01-02")
	}
	return ""
}

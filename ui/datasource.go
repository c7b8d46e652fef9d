package ui

import (
	"context"
	"fmt"

	"dashlab/adapters/sheets"
	"dashlab/domain/synth"
	"dashlab/domain/table"
	"dashlab/internal/cache"
	"dashlab/internal/config"
	apperrors "dashlab/internal/errors"
	"dashlab/internal/logging"
)

const (
	keyHomeSales = "dataset:home_sales"
	keyFlips     = "dataset:house_flips"

	// connectionName is the secrets table the spreadsheet connection
	// reads, i.e. [connections.sheets] in secrets.toml.
	connectionName = "sheets"
)

// salesSchema coerces the columns the analysis pipeline depends on.
// Unknown spreadsheet columns pass through untouched.
var salesSchema = sheets.Schema{
	Numeric: []string{"price", "area", "beds", "baths"},
	Time:    []string{"sold_date"},
}

// SalesData is a home-sales table plus where it came from, so pages can
// show which source backed the render.
type SalesData struct {
	Table  *table.Table
	Origin string
}

// DataSource resolves the lab datasets: a configured local spreadsheet
// first, then a remote spreadsheet from secrets, then synthetic data.
// Loads go through the TTL cache so repeated renders skip the I/O.
type DataSource struct {
	cfg   *config.Config
	cache *cache.Cache
	log   *logging.Logger
}

func NewDataSource(cfg *config.Config, c *cache.Cache, logger *logging.Logger) *DataSource {
	return &DataSource{cfg: cfg, cache: c, log: logger}
}

// HomeSales returns the caching-lab dataset and whether it came from
// cache.
func (d *DataSource) HomeSales(ctx context.Context) (*SalesData, bool, error) {
	v, hit, err := d.cache.GetOrCompute(keyHomeSales, func() (interface{}, error) {
		return d.loadHomeSales(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*SalesData), hit, nil
}

func (d *DataSource) loadHomeSales(ctx context.Context) (*SalesData, error) {
	if file := d.cfg.Data.SpreadsheetFile; file != "" {
		data, err := sheets.NewDataReader(file).ReadData()
		if err != nil {
			return nil, err
		}
		t, err := salesTable(data)
		if err != nil {
			d.log.Warn("[loadHomeSales] spreadsheet %s unusable, using synthetic data: %v", file, err)
			return syntheticSales(), nil
		}
		return &SalesData{Table: t, Origin: "spreadsheet " + file}, nil
	}

	if url, err := d.cfg.Secrets.SpreadsheetURL(connectionName); err == nil {
		data, err := sheets.NewRemoteSheet(url).Read(ctx)
		if err != nil {
			return nil, err
		}
		t, err := salesTable(data)
		if err != nil {
			d.log.Warn("[loadHomeSales] remote spreadsheet unusable, using synthetic data: %v", err)
			return syntheticSales(), nil
		}
		return &SalesData{Table: t, Origin: "remote spreadsheet"}, nil
	}

	return syntheticSales(), nil
}

// RemoteSales always fetches from the configured remote spreadsheet,
// bypassing the cache. The secrets lab uses it as a live connection demo.
func (d *DataSource) RemoteSales(ctx context.Context) (*SalesData, error) {
	url, err := d.cfg.Secrets.SpreadsheetURL(connectionName)
	if err != nil {
		return nil, err
	}
	data, err := sheets.NewRemoteSheet(url).Read(ctx)
	if err != nil {
		return nil, err
	}
	t, err := salesTable(data)
	if err != nil {
		return nil, err
	}
	return &SalesData{Table: t, Origin: "remote spreadsheet"}, nil
}

// Flips returns the charts-lab dataset with a month column appended.
func (d *DataSource) Flips() (*table.Table, bool, error) {
	v, hit, err := d.cache.GetOrCompute(keyFlips, func() (interface{}, error) {
		t := synth.HouseFlips(synth.DefaultFlipsConfig())
		if err := t.AddMonthColumn("date", "month"); err != nil {
			return nil, err
		}
		return t, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*table.Table), hit, nil
}

func salesTable(data *sheets.SheetData) (*table.Table, error) {
	t, err := data.Table(salesSchema)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{"city", "price", "sold_date"} {
		if !t.HasCol(required) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("spreadsheet is missing the %q column", required))
		}
	}
	if !t.HasCol("sold_month") {
		if err := t.AddMonthColumn("sold_date", "sold_month"); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func syntheticSales() *SalesData {
	return &SalesData{
		Table:  synth.HomeSales(synth.DefaultHomeSalesConfig()),
		Origin: "synthetic",
	}
}

package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"dashlab/internal/errors"
)

// RemoteSheet reads a published spreadsheet through its CSV export URL,
// the URL coming from the secrets file rather than source code.
type RemoteSheet struct {
	url    string
	client *http.Client
}

// NewRemoteSheet creates a connection to a CSV export URL.
func NewRemoteSheet(url string) *RemoteSheet {
	return &RemoteSheet{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Read fetches and parses the sheet. Any transport or HTTP failure is a
// connection error for the caller to display.
func (r *RemoteSheet) Read(ctx context.Context) (*SheetData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building sheet request")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching spreadsheet")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ConnectionError(fmt.Sprintf("spreadsheet fetch returned %s", resp.Status))
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing spreadsheet CSV")
	}
	if len(rows) < 2 {
		return nil, errors.ConnectionError("spreadsheet has no data rows")
	}
	return fromRows(rows)
}

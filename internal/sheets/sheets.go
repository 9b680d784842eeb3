// Package sheets fetches tabular data from public Google Sheets via the
// CSV export endpoint. The sheet must be shared as "anyone with the link
// can view"; no authentication is used.
package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/tabular"
)

var (
	sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	gidPattern     = regexp.MustCompile(`[#&?]gid=([0-9]+)`)
)

// FetchError reports a sheet that could not be fetched or parsed.
type FetchError struct {
	SheetID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Failed to fetch Google Sheet: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseURL extracts the document ID and tab gid from a Google Sheets URL.
// The gid defaults to "0" (first tab) when absent.
func ParseURL(sheetURL string) (sheetID, gid string, err error) {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", "", fmt.Errorf("invalid Google Sheets URL: %s", sheetURL)
	}
	sheetID = m[1]
	gid = "0"
	if g := gidPattern.FindStringSubmatch(sheetURL); g != nil {
		gid = g[1]
	}
	return sheetID, gid, nil
}

// Client fetches sheet tabs as row records.
type Client struct {
	http    *http.Client
	baseURL string
	log     *observability.Logger
}

// NewClient returns a Client against the public Google Sheets export
// endpoint.
func NewClient(log *observability.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://docs.google.com",
		log:     log,
	}
}

// NewClientWithBase returns a Client against a custom endpoint, used in
// tests.
func NewClientWithBase(base string, log *observability.Logger) *Client {
	c := NewClient(log)
	c.baseURL = base
	return c
}

// Fetch downloads one sheet tab as CSV and converts it to row records.
// The first CSV row is the header; cells are parsed into typed scalars.
func (c *Client) Fetch(ctx context.Context, sheetID, gid string) ([]tabular.Record, error) {
	exportURL := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s",
		c.baseURL, url.PathEscape(sheetID), url.QueryEscape(gid))
	c.log.Info(ctx, "fetching sheet", "sheet_id", sheetID, "gid", gid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, &FetchError{SheetID: sheetID, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{SheetID: sheetID, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{SheetID: sheetID, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &FetchError{SheetID: sheetID, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]tabular.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(tabular.Record, 0, len(header))
		for i, key := range header {
			var v tabular.Value
			if i < len(row) {
				v = tabular.ParseScalar(row[i])
			}
			rec = append(rec, tabular.Field{Key: key, Value: v})
		}
		records = append(records, rec)
	}

	c.log.Info(ctx, "sheet fetched", "sheet_id", sheetID, "rows", len(records))
	return records, nil
}

// Package sheets is the remote tabular store client. It models the per-user
// spreadsheet as two fixed-schema tables ("Items" and "History") and
// translates table operations into Sheets/Drive REST calls. Every call takes
// the caller's bearer token explicitly; the client holds no credential state.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const (
	// SheetItems and SheetHistory are the two tables provisioned per user.
	SheetItems   = "Items"
	SheetHistory = "History"

	titlePrefix = "Shopping List - "
)

var (
	// ErrUnavailable means there is no usable credential: the token is
	// missing or the backing API rejected it. Callers fall back to the
	// local cache.
	ErrUnavailable = errors.New("remote store unavailable")

	// ErrRequestFailed means a valid attempt was rejected by the backing
	// API. Recoverable; callers roll back or log per their policy.
	ErrRequestFailed = errors.New("remote request failed")
)

// ItemsHeader and HistoryHeader are the fixed column schemas, written once
// when a spreadsheet is provisioned.
var (
	ItemsHeader   = []string{"ID", "Name", "Quantity", "Category", "Price", "Status", "CreatedAt", "PurchasedAt"}
	HistoryHeader = []string{"Date", "Item", "Quantity", "Price", "Category", "Store", "Total", "ID"}
)

type Client struct {
	httpClient *http.Client
	sheetsURL  string
	driveURL   string
}

// NewClient creates a client against the production Google endpoints.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sheetsURL:  "https://sheets.googleapis.com/v4/spreadsheets",
		driveURL:   "https://www.googleapis.com/drive/v3/files",
	}
}

// do performs one authenticated JSON request. A single attempt, no retry.
func (c *Client) do(ctx context.Context, token, method, rawURL string, body, out any) error {
	if token == "" {
		return fmt.Errorf("no access token: %w", ErrUnavailable)
	}

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, rawURL, err, ErrRequestFailed)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: status %d: %w", method, rawURL, resp.StatusCode, ErrUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: status %d: %w", method, rawURL, resp.StatusCode, ErrRequestFailed)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// FindOrCreateSpreadsheet looks up the user's spreadsheet by name in Drive
// and creates it (with both sheets and their headers) if absent. Repeated
// calls for the same user return the same id.
func (c *Client) FindOrCreateSpreadsheet(ctx context.Context, token, email string) (string, error) {
	title := titlePrefix + email

	id, err := c.findByName(ctx, token, title)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return c.createSpreadsheet(ctx, token, title)
}

func (c *Client) findByName(ctx context.Context, token, title string) (string, error) {
	query := fmt.Sprintf("mimeType='application/vnd.google-apps.spreadsheet' and name='%s' and trashed=false", title)
	rawURL := fmt.Sprintf("%s?q=%s&fields=files(id,name)", c.driveURL, url.QueryEscape(query))

	var result struct {
		Files []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := c.do(ctx, token, http.MethodGet, rawURL, nil, &result); err != nil {
		return "", fmt.Errorf("find spreadsheet: %w", err)
	}
	if len(result.Files) > 0 {
		return result.Files[0].ID, nil
	}
	return "", nil
}

func (c *Client) createSpreadsheet(ctx context.Context, token, title string) (string, error) {
	body := map[string]any{
		"properties": map[string]any{"title": title},
		"sheets": []map[string]any{
			{"properties": map[string]any{"title": SheetItems}},
			{"properties": map[string]any{"title": SheetHistory}},
		},
	}

	var created struct {
		SpreadsheetID string `json:"spreadsheetId"`
		Sheets        []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	rawURL := c.sheetsURL + "?fields=spreadsheetId,sheets.properties"
	if err := c.do(ctx, token, http.MethodPost, rawURL, body, &created); err != nil {
		return "", fmt.Errorf("create spreadsheet: %w", err)
	}

	sheetIDs := make(map[string]int64, len(created.Sheets))
	for _, s := range created.Sheets {
		sheetIDs[s.Properties.Title] = s.Properties.SheetID
	}
	if err := c.writeHeaders(ctx, token, created.SpreadsheetID, sheetIDs); err != nil {
		return "", err
	}
	return created.SpreadsheetID, nil
}

// writeHeaders writes the bold header row on both sheets in one batch.
func (c *Client) writeHeaders(ctx context.Context, token, spreadsheetID string, sheetIDs map[string]int64) error {
	headers := map[string][]string{
		SheetItems:   ItemsHeader,
		SheetHistory: HistoryHeader,
	}

	var requests []map[string]any
	for title, cols := range headers {
		sheetID, ok := sheetIDs[title]
		if !ok {
			continue
		}
		cells := make([]map[string]any, len(cols))
		for i, col := range cols {
			cells[i] = map[string]any{
				"userEnteredValue":  map[string]any{"stringValue": col},
				"userEnteredFormat": map[string]any{"textFormat": map[string]any{"bold": true}},
			}
		}
		requests = append(requests, map[string]any{
			"updateCells": map[string]any{
				"range":  map[string]any{"sheetId": sheetID, "startRowIndex": 0, "endRowIndex": 1},
				"rows":   []map[string]any{{"values": cells}},
				"fields": "userEnteredValue,userEnteredFormat.textFormat.bold",
			},
		})
	}

	rawURL := fmt.Sprintf("%s/%s:batchUpdate", c.sheetsURL, spreadsheetID)
	if err := c.do(ctx, token, http.MethodPost, rawURL, map[string]any{"requests": requests}, nil); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	return nil
}

// ReadRange returns the raw rows in the given A1 range, or an empty slice if
// the range holds no data.
func (c *Client) ReadRange(ctx context.Context, token, spreadsheetID, rng string) ([][]string, error) {
	rawURL := fmt.Sprintf("%s/%s/values/%s", c.sheetsURL, spreadsheetID, url.PathEscape(rng))

	var result struct {
		Values [][]string `json:"values"`
	}
	if err := c.do(ctx, token, http.MethodGet, rawURL, nil, &result); err != nil {
		return nil, fmt.Errorf("read range %s: %w", rng, err)
	}
	return result.Values, nil
}

// AppendRow appends one row after the last data row of the named sheet.
func (c *Client) AppendRow(ctx context.Context, token, spreadsheetID, sheetName string, row []string) error {
	rng := sheetName + "!A:H"
	rawURL := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED", c.sheetsURL, spreadsheetID, url.PathEscape(rng))

	body := map[string]any{"values": [][]string{row}}
	if err := c.do(ctx, token, http.MethodPost, rawURL, body, nil); err != nil {
		return fmt.Errorf("append row to %s: %w", sheetName, err)
	}
	return nil
}

// UpdateRange overwrites the cells in the given A1 range.
func (c *Client) UpdateRange(ctx context.Context, token, spreadsheetID, rng string, values [][]string) error {
	rawURL := fmt.Sprintf("%s/%s/values/%s?valueInputOption=USER_ENTERED", c.sheetsURL, spreadsheetID, url.PathEscape(rng))

	body := map[string]any{"values": values}
	if err := c.do(ctx, token, http.MethodPut, rawURL, body, nil); err != nil {
		return fmt.Errorf("update range %s: %w", rng, err)
	}
	return nil
}

// ClearRange blanks the cells in the given A1 range without shifting rows.
func (c *Client) ClearRange(ctx context.Context, token, spreadsheetID, rng string) error {
	rawURL := fmt.Sprintf("%s/%s/values/%s:clear", c.sheetsURL, spreadsheetID, url.PathEscape(rng))

	if err := c.do(ctx, token, http.MethodPost, rawURL, map[string]any{}, nil); err != nil {
		return fmt.Errorf("clear range %s: %w", rng, err)
	}
	return nil
}

// DeleteRows removes the given 1-based rows from the named sheet. Rows are
// deleted bottom-up so the remaining indices in the batch stay valid; rows of
// items below the deleted ones still shift, which callers must account for.
func (c *Client) DeleteRows(ctx context.Context, token, spreadsheetID, sheetName string, rows []int) error {
	if len(rows) == 0 {
		return nil
	}

	sheetID, err := c.sheetID(ctx, token, spreadsheetID, sheetName)
	if err != nil {
		return err
	}

	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	requests := make([]map[string]any, 0, len(sorted))
	for _, row := range sorted {
		requests = append(requests, map[string]any{
			"deleteDimension": map[string]any{
				"range": map[string]any{
					"sheetId":    sheetID,
					"dimension":  "ROWS",
					"startIndex": row - 1,
					"endIndex":   row,
				},
			},
		})
	}

	rawURL := fmt.Sprintf("%s/%s:batchUpdate", c.sheetsURL, spreadsheetID)
	if err := c.do(ctx, token, http.MethodPost, rawURL, map[string]any{"requests": requests}, nil); err != nil {
		return fmt.Errorf("delete rows from %s: %w", sheetName, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, token, spreadsheetID, sheetName string) (int64, error) {
	rawURL := fmt.Sprintf("%s/%s?fields=sheets.properties(sheetId,title)", c.sheetsURL, spreadsheetID)

	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := c.do(ctx, token, http.MethodGet, rawURL, nil, &meta); err != nil {
		return 0, fmt.Errorf("spreadsheet metadata: %w", err)
	}

	for _, s := range meta.Sheets {
		if s.Properties.Title == sheetName {
			return s.Properties.SheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found: %w", sheetName, ErrRequestFailed)
}

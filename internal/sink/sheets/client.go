// Package sheets implements the lead sink against the Google Sheets
// values API.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadsync/internal/model"
	"github.com/sells-group/leadsync/internal/sink"
	"github.com/sells-group/leadsync/pkg/googleapi"
	"github.com/sells-group/leadsync/pkg/googleauth"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Config identifies the target sheet and its identifier column.
type Config struct {
	SpreadsheetID string
	SheetName     string
	// IDColumn is the column letter holding the unique identifier.
	IDColumn string
	// IDHeader is the header label excluded from the seen set.
	IDHeader string
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit overrides the default 1 req/s write throttle.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// Client appends lead rows to one spreadsheet tab.
type Client struct {
	cfg     Config
	tokens  googleauth.TokenSource
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Sheets sink client.
func New(tokens googleauth.TokenSource, cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		tokens:  tokens,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(1, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ sink.Sink = (*Client)(nil)

type valueRange struct {
	MajorDimension string     `json:"majorDimension,omitempty"`
	Values         [][]string `json:"values"`
}

// SeenIDs reads the full extent of the identifier column.
func (c *Client) SeenIDs(ctx context.Context) (map[string]struct{}, error) {
	col := c.cfg.IDColumn
	rng := fmt.Sprintf("%s!%s:%s", c.cfg.SheetName, col, col)
	path := fmt.Sprintf("/spreadsheets/%s/values/%s?majorDimension=COLUMNS",
		c.cfg.SpreadsheetID, url.PathEscape(rng))

	var vr valueRange
	if err := c.do(ctx, http.MethodGet, path, nil, &vr); err != nil {
		return nil, eris.Wrap(err, "sheets: read identifier column")
	}

	seen := make(map[string]struct{})
	if len(vr.Values) == 0 {
		return seen, nil
	}
	for _, cell := range vr.Values[0] {
		if cell == "" || cell == c.cfg.IDHeader {
			continue
		}
		seen[cell] = struct{}{}
	}
	return seen, nil
}

// Append adds the record as one new row at the bottom of the sheet.
// Values go in USER_ENTERED so the phone field's text-forcing prefix is
// honored by the sheet.
func (c *Client) Append(ctx context.Context, rec model.Record) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "sheets: rate limit")
		}
	}

	rng := fmt.Sprintf("%s!A:A", c.cfg.SheetName)
	path := fmt.Sprintf("/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.cfg.SpreadsheetID, url.PathEscape(rng))

	body, err := json.Marshal(valueRange{
		MajorDimension: "ROWS",
		Values:         [][]string{rec.Row()},
	})
	if err != nil {
		return eris.Wrap(err, "sheets: marshal row")
	}

	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return eris.Wrapf(err, "sheets: append row %s", rec.UID)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return eris.Wrap(err, "sheets: acquire token")
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return eris.Wrap(err, "sheets: create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "sheets: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "sheets: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return googleapi.FromResponse("sheets", resp.StatusCode, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "sheets: unmarshal response")
		}
	}
	return nil
}

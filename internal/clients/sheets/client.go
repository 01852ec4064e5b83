// Package sheets talks to a spreadsheet through the Google Sheets v4 values API. Each table
// is a worksheet whose first row is the header.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/internal/store"
	"github.com/samandr77/microservices/claims/pkg/config"
	"github.com/samandr77/microservices/claims/pkg/transport"
)

const (
	defaultRetryWaitMax = time.Second * 5
	maxErrorBody        = 512
	valueInput          = "RAW"
)

var ErrBadRange = errors.New("unexpected range in response")

// APIError is a non-2xx answer from the spreadsheet API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets api: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	client        *http.Client
	baseURL       string
	spreadsheetID string
	token         string

	mu      sync.Mutex
	headers map[string][]string
}

var _ store.Backend = (*Client)(nil)

// NewClient builds a client that does not retry unless cfg.RetryMax says so: appends are
// not idempotent.
func NewClient(cfg config.Sheets, timeout time.Duration) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = timeout
	retryClient.HTTPClient.Transport = transport.NewLoggingRoundTripper(nil)
	retryClient.Logger = nil

	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}

		return false, nil
	}

	return &Client{
		client:        retryClient.StandardClient(),
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		spreadsheetID: cfg.SpreadsheetID,
		token:         cfg.Token,
		headers:       make(map[string][]string),
	}
}

type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

type appendResponse struct {
	Updates struct {
		UpdatedRange string `json:"updatedRange"`
	} `json:"updates"`
}

type batchUpdateRequest struct {
	ValueInputOption string       `json:"valueInputOption"`
	Data             []valueRange `json:"data"`
}

func (c *Client) Fetch(ctx context.Context, table string) (store.Raw, error) {
	var vr valueRange

	q := url.Values{"valueRenderOption": {"UNFORMATTED_VALUE"}}

	err := c.do(ctx, http.MethodGet, c.valuesURL(quoteSheet(table), "", q), nil, &vr)
	if err != nil {
		return store.Raw{}, err
	}

	raw := store.Raw{Rows: []store.RawRow{}}

	if len(vr.Values) == 0 {
		c.setHeader(table, nil)
		return raw, nil
	}

	for _, h := range vr.Values[0] {
		raw.Header = append(raw.Header, entity.Text(h))
	}

	for i, r := range vr.Values[1:] {
		raw.Rows = append(raw.Rows, store.RawRow{Ref: int64(i), Values: r})
	}

	c.setHeader(table, raw.Header)

	return raw, nil
}

func (c *Client) Append(ctx context.Context, table string, columns []string, row []any) (int64, error) {
	laid, err := c.layout(ctx, table, columns, [][]any{row})
	if err != nil {
		return 0, err
	}

	var resp appendResponse

	q := url.Values{"valueInputOption": {valueInput}, "insertDataOption": {"INSERT_ROWS"}}

	err = c.do(ctx, http.MethodPost, c.valuesURL(quoteSheet(table), ":append", q), valueRange{Values: laid}, &resp)
	if err != nil {
		return 0, err
	}

	sheetRow, err := firstRow(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, err
	}

	return int64(sheetRow - 2), nil
}

func (c *Client) AppendMany(ctx context.Context, table string, columns []string, rows [][]any) error {
	laid, err := c.layout(ctx, table, columns, rows)
	if err != nil {
		return err
	}

	q := url.Values{"valueInputOption": {valueInput}, "insertDataOption": {"INSERT_ROWS"}}

	return c.do(ctx, http.MethodPost, c.valuesURL(quoteSheet(table), ":append", q), valueRange{Values: laid}, nil)
}

// Replace clears the worksheet and writes columns as its header followed by rows.
func (c *Client) Replace(ctx context.Context, table string, columns []string, rows [][]any) error {
	err := c.do(ctx, http.MethodPost, c.valuesURL(quoteSheet(table), ":clear", nil), struct{}{}, nil)
	if err != nil {
		return err
	}

	values := make([][]any, 0, len(rows)+1)

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}

	values = append(values, header)

	for _, r := range rows {
		values = append(values, cells(r, len(columns)))
	}

	rng := quoteSheet(table) + "!A1"
	q := url.Values{"valueInputOption": {valueInput}}

	err = c.do(ctx, http.MethodPut, c.valuesURL(rng, "", q), valueRange{Range: rng, MajorDimension: "ROWS", Values: values}, nil)
	if err != nil {
		return err
	}

	c.setHeader(table, columns)

	return nil
}

func (c *Client) Update(ctx context.Context, table string, columns []string, updates []entity.CellUpdate) error {
	header, err := c.ensureHeader(ctx, table, columns)
	if err != nil {
		return err
	}

	req := batchUpdateRequest{
		ValueInputOption: valueInput,
		Data:             make([]valueRange, 0, len(updates)),
	}

	for _, u := range updates {
		idx := slices.Index(header, u.Column)

		req.Data = append(req.Data, valueRange{
			Range:  fmt.Sprintf("%s!%s%d", quoteSheet(table), columnLetter(idx), u.Ref+2),
			Values: [][]any{{cell(u.Value)}},
		})
	}

	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values:batchUpdate", c.baseURL, url.PathEscape(c.spreadsheetID))

	return c.do(ctx, http.MethodPost, u, req, nil)
}

// layout positions every row by the worksheet header, extending the header first when
// columns names cells it does not have yet.
func (c *Client) layout(ctx context.Context, table string, columns []string, rows [][]any) ([][]any, error) {
	header, err := c.ensureHeader(ctx, table, columns)
	if err != nil {
		return nil, err
	}

	out := make([][]any, 0, len(rows))

	for _, r := range rows {
		laid := make([]any, len(header))
		for i := range laid {
			laid[i] = ""
		}

		for i, col := range columns {
			if i < len(r) {
				laid[slices.Index(header, col)] = cell(r[i])
			}
		}

		out = append(out, laid)
	}

	return out, nil
}

func (c *Client) ensureHeader(ctx context.Context, table string, columns []string) ([]string, error) {
	header, ok := c.header(table)
	if !ok {
		var vr valueRange

		err := c.do(ctx, http.MethodGet, c.valuesURL(quoteSheet(table)+"!1:1", "", nil), nil, &vr)
		if err != nil {
			return nil, err
		}

		if len(vr.Values) > 0 {
			for _, h := range vr.Values[0] {
				header = append(header, entity.Text(h))
			}
		}
	}

	missing := make([]any, 0)

	for _, col := range columns {
		if !slices.Contains(header, col) {
			header = append(header, col)
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		start := len(header) - len(missing)
		rng := fmt.Sprintf("%s!%s1", quoteSheet(table), columnLetter(start))
		q := url.Values{"valueInputOption": {valueInput}}

		err := c.do(ctx, http.MethodPut, c.valuesURL(rng, "", q), valueRange{Range: rng, MajorDimension: "ROWS", Values: [][]any{missing}}, nil)
		if err != nil {
			return nil, err
		}
	}

	c.setHeader(table, header)

	return header, nil
}

func (c *Client) header(table string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.headers[table]

	return slices.Clone(h), ok
}

func (c *Client) setHeader(table string, header []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.headers[table] = slices.Clone(header)
}

func (c *Client) valuesURL(rng, suffix string, q url.Values) string {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(rng), suffix)

	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	return u
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}

		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(msg)}
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()

	err = dec.Decode(out)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func cells(row []any, n int) []any {
	out := make([]any, n)

	for i := range out {
		out[i] = ""
		if i < len(row) {
			out[i] = cell(row[i])
		}
	}

	return out
}

func cell(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}

		return x.Format(entity.StampLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}

		return x.Format(entity.StampLayout)
	default:
		return v
	}
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a zero-based column index into A1 notation: 0 is A, 26 is AA.
func columnLetter(idx int) string {
	var b []byte

	for idx >= 0 {
		b = append([]byte{byte('A' + idx%26)}, b...)
		idx = idx/26 - 1
	}

	return string(b)
}

// firstRow extracts the first row number from an A1 range such as 'claims'!A5:M5.
func firstRow(rng string) (int, error) {
	_, cellRef, ok := strings.Cut(rng, "!")
	if !ok {
		cellRef = rng
	}

	cellRef, _, _ = strings.Cut(cellRef, ":")
	digits := strings.TrimLeft(cellRef, "ABCDEFGHIJKLMNOPQRSTUVWXYZ$")
	digits = strings.TrimPrefix(digits, "$")

	n, err := strconv.Atoi(digits)
	if err != nil || n < 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadRange, rng)
	}

	return n, nil
}

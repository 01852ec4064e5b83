package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samandr77/microservices/claims/internal/clients/sheets"
	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/pkg/config"
)

const sheetData = `{
	"range": "'clients'!A1:C3",
	"majorDimension": "ROWS",
	"values": [
		["client_number", "name", "phone"],
		[123, "ANA", "555"],
		["00042", "BETO"]
	]
}`

func newClient(t *testing.T, h http.HandlerFunc) *sheets.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return sheets.NewClient(config.Sheets{
		BaseURL:       srv.URL,
		SpreadsheetID: "sheet-id",
		Token:         "secret",
	}, time.Second)
}

func TestClient_Fetch(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v4/spreadsheets/sheet-id/values/'clients'", r.URL.Path)
		require.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(sheetData))
	})

	raw, err := c.Fetch(context.Background(), "clients")
	require.NoError(t, err)
	require.Equal(t, []string{"client_number", "name", "phone"}, raw.Header)
	require.Len(t, raw.Rows, 2)
	require.EqualValues(t, 1, raw.Rows[1].Ref)
	require.Equal(t, "123", entity.CanonicalKey(raw.Rows[0].Values[0]))
	require.Equal(t, "42", entity.CanonicalKey(raw.Rows[1].Values[0]))
}

func TestClient_Fetch_EmptySheet(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"range": "'clients'!A1:Z1000", "majorDimension": "ROWS"}`))
	})

	raw, err := c.Fetch(context.Background(), "clients")
	require.NoError(t, err)
	require.Empty(t, raw.Header)
	require.Empty(t, raw.Rows)
}

func TestClient_Append(t *testing.T) {
	var appended [][]any

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(sheetData))
		case strings.HasSuffix(r.URL.Path, ":append"):
			require.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))

			var body struct {
				Values [][]any `json:"values"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			appended = body.Values

			_, _ = w.Write([]byte(`{"updates": {"updatedRange": "'clients'!A4:C4"}}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()

	_, err := c.Fetch(ctx, "clients")
	require.NoError(t, err)

	ref, err := c.Append(ctx, "clients", []string{"phone", "client_number"}, []any{"777", "999"})
	require.NoError(t, err)
	require.EqualValues(t, 2, ref)
	require.Equal(t, [][]any{{"999", "", "777"}}, appended)
}

func TestClient_Append_ExtendsHeader(t *testing.T) {
	var headerWrite string

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(sheetData))
		case r.Method == http.MethodPut:
			headerWrite = r.URL.Path
			_, _ = w.Write([]byte(`{}`))
		case strings.HasSuffix(r.URL.Path, ":append"):
			_, _ = w.Write([]byte(`{"updates": {"updatedRange": "'clients'!A4:D4"}}`))
		}
	})

	ctx := context.Background()

	_, err := c.Fetch(ctx, "clients")
	require.NoError(t, err)

	_, err = c.Append(ctx, "clients", []string{"client_number", "seal_number"}, []any{"1", "S"})
	require.NoError(t, err)
	require.Equal(t, "/v4/spreadsheets/sheet-id/values/'clients'!D1", headerWrite)
}

func TestClient_Update(t *testing.T) {
	var req struct {
		ValueInputOption string `json:"valueInputOption"`
		Data             []struct {
			Range  string  `json:"range"`
			Values [][]any `json:"values"`
		} `json:"data"`
	}

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(sheetData))
		case strings.HasSuffix(r.URL.Path, "values:batchUpdate"):
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_, _ = w.Write([]byte(`{}`))
		}
	})

	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	err := c.Update(ctx, "clients", []string{"client_number", "name", "phone"}, []entity.CellUpdate{
		{Ref: 1, Column: "phone", Value: "111"},
		{Ref: 0, Column: "name", Value: at},
	})
	require.NoError(t, err)

	require.Equal(t, "RAW", req.ValueInputOption)
	require.Len(t, req.Data, 2)
	require.Equal(t, "'clients'!C3", req.Data[0].Range)
	require.Equal(t, "'clients'!B2", req.Data[1].Range)
	require.Equal(t, [][]any{{"2024-03-01 10:30:00"}}, req.Data[1].Values)
}

func TestClient_APIError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Quota exceeded"}}`))
	})

	_, err := c.Fetch(context.Background(), "clients")

	var apiErr *sheets.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "Quota exceeded")
}

package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/edgard/hubermanchat/internal/config"
	errs "github.com/edgard/hubermanchat/internal/errors"
	"github.com/edgard/hubermanchat/internal/logger"
)

type fakeGoogle struct {
	mu       sync.Mutex
	status   map[string]int
	appended [][]any
	queries  []string
	options  []string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	if code, ok := f.status[path]; ok {
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": code, "message": http.StatusText(code)},
		})
		return
	}

	switch {
	case path == "/files":
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		files := []map[string]string{}
		if strings.Contains(r.URL.Query().Get("q"), "name = 'Huberman Logs'") {
			files = append(files, map[string]string{"id": "sheet-456", "name": "Huberman Logs"})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"files": files})

	case strings.HasSuffix(path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.appended = append(f.appended, body.Values...)
		f.options = append(f.options, r.URL.Query().Get("valueInputOption")+"/"+r.URL.Query().Get("insertDataOption"))
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-123"})

	case strings.HasPrefix(path, "/v4/spreadsheets/"):
		id := strings.TrimPrefix(path, "/v4/spreadsheets/")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": id,
			"properties":    map[string]any{"title": "Huberman Logs"},
			"sheets": []map[string]any{
				{"properties": map[string]any{"sheetId": 7, "title": "Archive", "index": 1}},
				{"properties": map[string]any{"sheetId": 0, "title": "Sheet1"}},
			},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestBackend(t *testing.T, fake *fakeGoogle) Backend {
	t.Helper()

	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	backend, err := NewGoogleBackend(context.Background(), config.SheetsConfig{ValueInputOption: "RAW"}, logger.Discard(),
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()),
	)
	require.NoError(t, err)
	return backend
}

func TestGoogleBackend_SpreadsheetByID(t *testing.T) {
	backend := newTestBackend(t, &fakeGoogle{})

	target, err := backend.SpreadsheetByID(context.Background(), "sheet-123")
	require.NoError(t, err)
	assert.Equal(t, &Target{SpreadsheetID: "sheet-123", Title: "Huberman Logs", Worksheet: "Sheet1"}, target)
}

func TestGoogleBackend_SpreadsheetByName(t *testing.T) {
	fake := &fakeGoogle{}
	backend := newTestBackend(t, fake)

	target, err := backend.SpreadsheetByName(context.Background(), "Huberman Logs")
	require.NoError(t, err)
	assert.Equal(t, "sheet-456", target.SpreadsheetID)
	assert.Equal(t, "Sheet1", target.Worksheet)

	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], "mimeType = 'application/vnd.google-apps.spreadsheet'")
	assert.Contains(t, fake.queries[0], "trashed = false")

	_, err = backend.SpreadsheetByName(context.Background(), "Nope")
	require.Error(t, err)
	assert.True(t, errs.IsLogging(err))
}

func TestGoogleBackend_AppendRow(t *testing.T) {
	fake := &fakeGoogle{}
	backend := newTestBackend(t, fake)

	target := &Target{SpreadsheetID: "sheet-123", Worksheet: "Sheet1"}
	require.NoError(t, backend.AppendRow(context.Background(), target, testEntry.Row()))

	require.Len(t, fake.appended, 1)
	assert.Equal(t, []any{"2025-03-14T09:26:53Z", "What is dopamine?", "Dopamine is a neurotransmitter..."}, fake.appended[0])
	assert.Equal(t, []string{"RAW/INSERT_ROWS"}, fake.options)
}

func TestGoogleBackend_ErrorClassification(t *testing.T) {
	fake := &fakeGoogle{status: map[string]int{
		"/v4/spreadsheets/missing": http.StatusNotFound,
		"/v4/spreadsheets/revoked": http.StatusUnauthorized,
	}}
	backend := newTestBackend(t, fake)

	_, err := backend.SpreadsheetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.IsLogging(err))

	_, err = backend.SpreadsheetByID(context.Background(), "revoked")
	require.Error(t, err)
	assert.True(t, errs.IsAuth(err))
}

func TestQuoteSheetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "'Sheet1'", quoteSheetName("Sheet1"))
	assert.Equal(t, "'Bob''s log'", quoteSheetName("Bob's log"))
	assert.Equal(t, `Bob\'s \\ log`, escapeQuery(`Bob's \ log`))
}

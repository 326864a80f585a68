package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"smartspend/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets emulates the handful of Sheets endpoints the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	titles   []string
	added    []string
	appended map[string][][]any
	gets     int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})
	case strings.HasSuffix(path, ":append"):
		rng := strings.TrimSuffix(path[strings.Index(path, "/values/")+len("/values/"):], ":append")
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.appended[rng] = append(f.appended[rng], vr.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": rng + ":G" + string(rune('0'+len(vr.Values)))},
		})
	case r.Method == http.MethodGet:
		f.gets++
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1", "sheets": sheets})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, existing ...string) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{titles: existing, appended: map[string][][]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "sheet-1", ""), fake
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Equal(t, "missing spreadsheet id", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-1", ServiceAccountFile: "/non/existent.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestClient_AppendReportCreatesSheetWithHeader(t *testing.T) {
	c, fake := newTestClient(t)

	header := []string{"Date", "Type", "Category", "Amount", "Notes"}
	rows := [][]string{
		{"6/18/2025", "expense", "Food & Dining", "35.50", "Lunch"},
		{"6/17/2025", "income", "Salary", "2500.00", ""},
	}
	ref, err := c.AppendReport(context.Background(), "Monthly Report - Jun 18, 2025", header, rows)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	assert.Equal(t, []string{"Monthly Report - Jun 18, 2025"}, fake.added)
	got := fake.appended["'Monthly Report - Jun 18, 2025'!A1"]
	require.Len(t, got, 3)
	assert.Equal(t, "Date", got[0][0])
	assert.Equal(t, "35.50", got[1][3])
}

func TestClient_AppendReportToExistingSheetSkipsHeader(t *testing.T) {
	c, fake := newTestClient(t, "Weekly")

	_, err := c.AppendReport(context.Background(), "Weekly", []string{"Date"}, [][]string{{"6/18/2025"}})
	require.NoError(t, err)

	assert.Empty(t, fake.added)
	got := fake.appended["'Weekly'!A1"]
	require.Len(t, got, 1)
	assert.Equal(t, "6/18/2025", got[0][0])
}

func TestClient_AppendAlertCachesKnownSheets(t *testing.T) {
	c, fake := newTestClient(t)
	alert := core.BudgetAlert{
		BudgetID:   "b1",
		CategoryID: "1",
		Level:      "warning",
		Spent:      decimal.RequireFromString("85"),
		Amount:     decimal.RequireFromString("100"),
		Percentage: decimal.RequireFromString("85"),
		At:         time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, c.AppendAlert(context.Background(), alert))
	require.NoError(t, c.AppendAlert(context.Background(), alert))

	assert.Equal(t, 1, fake.gets, "spreadsheet metadata should be fetched once")
	got := fake.appended["'Budget Alerts'!A1"]
	require.Len(t, got, 3) // header + two alerts
	assert.Equal(t, "At", got[0][0])
	assert.Equal(t, "2025-06-18 12:00", got[1][0])
	assert.Equal(t, "85.00", got[1][4])
}

func TestClient_AppendReportValidation(t *testing.T) {
	c := &Client{spreadsheetID: "test"}

	_, err := c.AppendReport(context.Background(), "  ", nil, nil)
	assert.Error(t, err)

	_, err = c.AppendReport(context.Background(), "Report", nil, nil)
	assert.EqualError(t, err, "sheets service not initialized")
}

func TestA1QuotesSheetNames(t *testing.T) {
	assert.Equal(t, "'Budget Alerts'!A1", a1("Budget Alerts", "A1"))
	assert.Equal(t, "'Bob''s'!B2", a1("Bob's", "B2"))
}

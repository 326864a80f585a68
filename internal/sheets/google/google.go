package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"smartspend/internal/core"
	ports "smartspend/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultAlertsSheet is the tab budget alerts are appended to.
const DefaultAlertsSheet = "Budget Alerts"

var alertHeader = []string{"At", "Budget", "Category", "Level", "Spent", "Amount", "Percentage"}

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	ServiceAccountFile string
	ServiceAccountJSON string
	AlertsSheet        string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	alertsSheet   string

	// Sheet titles known to exist, so headers are written only once.
	mu    sync.Mutex
	known map[string]bool
}

// Ensure interface conformance
var (
	_ ports.ReportWriter = (*Client)(nil)
	_ ports.AlertWriter  = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg.ServiceAccountFile, cfg.ServiceAccountJSON)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.AlertsSheet), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, alertsSheet string) *Client {
	if strings.TrimSpace(alertsSheet) == "" {
		alertsSheet = DefaultAlertsSheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		alertsSheet:   alertsSheet,
		known:         map[string]bool{},
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file; GOOGLE_APPLICATION_CREDENTIALS is the last fallback.
func newSheetsService(ctx context.Context, file, inline string) (*gsheet.Service, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(inline)
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// AppendReport implements ports.ReportWriter. The sheet is created with the
// header row when it does not exist yet.
func (c *Client) AppendReport(ctx context.Context, sheetName string, header []string, rows [][]string) (string, error) {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		return "", errors.New("empty sheet name")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	created, err := c.ensureSheet(ctx, sheetName)
	if err != nil {
		return "", err
	}
	values := make([][]any, 0, len(rows)+1)
	if created && len(header) > 0 {
		values = append(values, toRow(header))
	}
	for _, r := range rows {
		values = append(values, toRow(r))
	}
	if len(values) == 0 {
		return a1(sheetName, "A1"), nil
	}
	return c.append(ctx, sheetName, values)
}

// AppendAlert implements ports.AlertWriter
func (c *Client) AppendAlert(ctx context.Context, alert core.BudgetAlert) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	created, err := c.ensureSheet(ctx, c.alertsSheet)
	if err != nil {
		return err
	}
	var values [][]any
	if created {
		values = append(values, toRow(alertHeader))
	}
	values = append(values, toRow(alertRow(alert)))
	_, err = c.append(ctx, c.alertsSheet, values)
	return err
}

func (c *Client) append(ctx context.Context, sheetName string, values [][]any) (string, error) {
	vr := &gsheet.ValueRange{Values: values}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(sheetName, "A1"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}
	if resp.Updates == nil {
		return a1(sheetName, "A1"), nil
	}
	return resp.Updates.UpdatedRange, nil
}

// ensureSheet makes sure a tab titled name exists and reports whether it
// had to be created.
func (c *Client) ensureSheet(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.known[name] {
		return false, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.known[sh.Properties.Title] = true
		}
	}
	if c.known[name] {
		return false, nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("add sheet %s: %w", name, err)
	}
	c.known[name] = true
	slog.InfoContext(ctx, "Created spreadsheet tab", "sheet", name)
	return true, nil
}

func alertRow(a core.BudgetAlert) []string {
	return []string{
		a.At.Format("2006-01-02 15:04"),
		a.BudgetID,
		a.CategoryID,
		a.Level,
		core.FormatAmount(a.Spent),
		core.FormatAmount(a.Amount),
		a.Percentage.StringFixed(2),
	}
}

func toRow(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// a1 builds an A1 reference, quoting the sheet title.
func a1(sheetName, cell string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheetName, "'", "''"), cell)
}

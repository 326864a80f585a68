package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/sheets"

	"github.com/gocarina/gocsv"
)

var ErrReportNotFound = errors.New("report not found")

// ReportRow is one CSV line of an exported report.
type ReportRow struct {
	Date     string `csv:"Date"`
	Type     string `csv:"Type"`
	Category string `csv:"Category"`
	Amount   string `csv:"Amount"`
	Notes    string `csv:"Notes"`
}

// reportHeader mirrors the csv tags of ReportRow.
var reportHeader = []string{"Date", "Type", "Category", "Amount", "Notes"}

// notesColumn is always quoted in data rows.
const notesColumn = 4

// GeneratedReport is the outcome of a report request.
type GeneratedReport struct {
	Report      core.Report
	From, To    time.Time
	Rows        int
	Filename    string
	ContentType string
	Data        []byte
	// Pending is set for formats that have no renderer yet; Data is empty.
	Pending bool
	Message string
}

// ReportService filters the ledger by reporting period and renders exports.
type ReportService struct {
	ledger *ledger.Manager
	sheets sheets.ReportWriter
	loc    *time.Location
}

// NewReportService creates a report service. sheetsWriter may be nil; dates
// are rendered in loc (time.Local when nil).
func NewReportService(l *ledger.Manager, sheetsWriter sheets.ReportWriter, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{ledger: l, sheets: sheetsWriter, loc: loc}
}

// Generate records a report entry for the period ending at now and renders it.
func (s *ReportService) Generate(ctx context.Context, format core.ReportFormat, period core.RepetitionTypes, now time.Time) (GeneratedReport, error) {
	if !format.Valid() {
		return GeneratedReport{}, fmt.Errorf("format %q: %w", format, core.ErrInvalidFormat)
	}
	if _, err := core.ReportWindowStart(period, now); err != nil {
		return GeneratedReport{}, err
	}

	report, err := s.ledger.AddReport(ctx, core.Report{
		Name:      ReportName(period, now),
		Type:      core.ReportScopeAll,
		Period:    period,
		Format:    format,
		CreatedAt: now,
	})
	if err != nil {
		// The entry is kept in memory; rendering can still proceed.
		slog.ErrorContext(ctx, "Failed to persist report entry", "report_id", report.ID, "error", err)
	}

	out, renderErr := s.render(ctx, report, now)
	if renderErr != nil {
		return out, renderErr
	}
	return out, err
}

// Regenerate renders a stored report for the window of its period ending at
// now. Unlike Generate it records no new history entry: downloading a report
// again leaves the report list unchanged.
func (s *ReportService) Regenerate(ctx context.Context, id string, now time.Time) (GeneratedReport, error) {
	report, ok := s.ledger.Report(id)
	if !ok {
		return GeneratedReport{}, fmt.Errorf("report %s: %w", id, ErrReportNotFound)
	}
	return s.render(ctx, report, now)
}

// Delete removes report metadata.
func (s *ReportService) Delete(ctx context.Context, id string) (bool, error) {
	return s.ledger.DeleteReport(ctx, id)
}

func (s *ReportService) render(ctx context.Context, report core.Report, now time.Time) (GeneratedReport, error) {
	from, err := core.ReportWindowStart(report.Period, now.In(s.loc))
	if err != nil {
		return GeneratedReport{}, err
	}
	snap := s.ledger.Snapshot()
	txs := ledger.FilterByDate(snap.Transactions, &from, &now)

	out := GeneratedReport{
		Report: report,
		From:   from,
		To:     now,
		Rows:   len(txs),
	}

	switch report.Format {
	case core.FormatPDF:
		out.Pending = true
		out.Message = "PDF export is not available yet; the report entry was recorded"
		slog.InfoContext(ctx, "PDF report requested", "report_id", report.ID, "period", report.Period)
		return out, nil
	case core.FormatCSV:
	default:
		return GeneratedReport{}, fmt.Errorf("format %q: %w", report.Format, core.ErrInvalidFormat)
	}

	rows := BuildReportRows(txs, snap.Categories, s.loc)
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, rows); err != nil {
		return GeneratedReport{}, fmt.Errorf("render csv: %w", err)
	}
	out.Data = buf.Bytes()
	out.ContentType = "text/csv; charset=utf-8"
	out.Filename = fmt.Sprintf("smartspend-%s-report-%s.csv", report.Period, now.In(s.loc).Format("2006-01-02"))

	if s.sheets != nil {
		if ref, err := s.sheets.AppendReport(ctx, report.Name, reportHeader, rowValues(rows)); err != nil {
			slog.ErrorContext(ctx, "Failed to export report to spreadsheet", "report_id", report.ID, "error", err)
		} else {
			slog.InfoContext(ctx, "Report exported to spreadsheet", "report_id", report.ID, "range", ref)
		}
	}

	slog.InfoContext(ctx, "Report generated",
		"report_id", report.ID,
		"period", report.Period,
		"rows", len(rows),
		"from", from.Format("2006-01-02"))
	return out, nil
}

// ReportName is the display name of a report generated at now.
func ReportName(period core.RepetitionTypes, now time.Time) string {
	p := string(period)
	if p != "" {
		p = strings.ToUpper(p[:1]) + p[1:]
	}
	return fmt.Sprintf("%s Report - %s", p, now.Format("Jan 2, 2006"))
}

// BuildReportRows converts transactions to report rows, resolving category
// names and formatting dates as M/D/YYYY in loc.
func BuildReportRows(txs []core.Transaction, cats []core.Category, loc *time.Location) []ReportRow {
	rows := make([]ReportRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, ReportRow{
			Date:     t.Date.In(loc).Format("1/2/2006"),
			Type:     string(t.Type),
			Category: ledger.CategoryName(cats, t.Category),
			Amount:   core.FormatAmount(t.Amount),
			Notes:    t.Notes,
		})
	}
	return rows
}

// WriteReportCSV writes the header and rows. Notes are always quoted with
// embedded quotes doubled; other fields are quoted only when needed.
func WriteReportCSV(w io.Writer, rows []ReportRow) error {
	return gocsv.MarshalCSV(rows, newQuotingWriter(w, notesColumn))
}

func rowValues(rows []ReportRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Date, r.Type, r.Category, r.Amount, r.Notes}
	}
	return out
}

// quotingWriter is a gocsv.CSVWriter that forces quotes on selected columns
// of every record after the header.
type quotingWriter struct {
	w       *bufio.Writer
	forced  map[int]bool
	records int
	err     error
}

func newQuotingWriter(w io.Writer, forcedColumns ...int) *quotingWriter {
	forced := make(map[int]bool, len(forcedColumns))
	for _, c := range forcedColumns {
		forced[c] = true
	}
	return &quotingWriter{w: bufio.NewWriter(w), forced: forced}
}

func (q *quotingWriter) Write(row []string) error {
	if q.err != nil {
		return q.err
	}
	header := q.records == 0
	q.records++
	for i, field := range row {
		if i > 0 {
			q.w.WriteByte(',')
		}
		if (!header && q.forced[i]) || needsQuotes(field) {
			q.w.WriteByte('"')
			q.w.WriteString(strings.ReplaceAll(field, `"`, `""`))
			q.w.WriteByte('"')
		} else {
			q.w.WriteString(field)
		}
	}
	_, q.err = q.w.WriteString("\n")
	return q.err
}

func (q *quotingWriter) Flush() {
	if err := q.w.Flush(); err != nil && q.err == nil {
		q.err = err
	}
}

func (q *quotingWriter) Error() error {
	return q.err
}

func needsQuotes(field string) bool {
	if field == "" {
		return false
	}
	return strings.ContainsAny(field, ",\"\r\n") || field[0] == ' ' || field[len(field)-1] == ' '
}

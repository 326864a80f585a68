package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartspend/internal/core"

	"github.com/shopspring/decimal"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

const dateLayout = "2006-01-02"

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return badRequest("content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		case errors.As(err, &maxErr):
			return badRequest("request body too large")
		}
		return badRequest("invalid JSON: %v", err)
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// parseDate accepts YYYY-MM-DD (midnight in loc) or RFC 3339. Empty input
// yields the zero time.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, badRequest("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	t, err := parseDate(s, loc)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

// DateRange holds the optional bounds of a list query.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// parseDateRange reads start and end query values. A date-only end bound
// covers its whole day.
func parseDateRange(r *http.Request, loc *time.Location) (DateRange, error) {
	q := r.URL.Query()
	start, err := parseOptionalDate(q.Get("start"), loc)
	if err != nil {
		return DateRange{}, err
	}
	endRaw := strings.TrimSpace(q.Get("end"))
	end, err := parseOptionalDate(endRaw, loc)
	if err != nil {
		return DateRange{}, err
	}
	if end != nil && len(endRaw) == len(dateLayout) {
		eod := end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &eod
	}
	if start != nil && end != nil && end.Before(*start) {
		return DateRange{}, badRequest("end must not be before start")
	}
	return DateRange{Start: start, End: end}, nil
}

type transactionInput struct {
	Amount          decimal.Decimal      `json:"amount"`
	Type            core.TransactionKind `json:"type"`
	Category        string               `json:"category"`
	Date            string               `json:"date"`
	Notes           string               `json:"notes"`
	IsRecurring     bool                 `json:"isRecurring"`
	RecurringPeriod core.RepetitionTypes `json:"recurringPeriod"`
	NextOccurrence  string               `json:"nextOccurrence"`
}

func (in transactionInput) toTransaction(id string, loc *time.Location) (core.Transaction, error) {
	date, err := parseDate(in.Date, loc)
	if err != nil {
		return core.Transaction{}, err
	}
	next, err := parseOptionalDate(in.NextOccurrence, loc)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:              id,
		Amount:          in.Amount,
		Type:            core.TransactionKind(strings.ToLower(string(in.Type))),
		Category:        strings.TrimSpace(in.Category),
		Date:            date,
		Notes:           in.Notes,
		IsRecurring:     in.IsRecurring,
		RecurringPeriod: core.RepetitionTypes(strings.ToLower(string(in.RecurringPeriod))),
		NextOccurrence:  next,
	}, nil
}

type categoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (in categoryInput) toCategory(id string) core.Category {
	return core.Category{ID: id, Name: in.Name, Color: in.Color, Icon: in.Icon}
}

type budgetInput struct {
	CategoryID string               `json:"categoryId"`
	Amount     decimal.Decimal      `json:"amount"`
	Period     core.RepetitionTypes `json:"period"`
	StartDate  string               `json:"startDate"`
	EndDate    string               `json:"endDate"`
}

func (in budgetInput) toBudget(id string, loc *time.Location) (core.Budget, error) {
	start, err := parseDate(in.StartDate, loc)
	if err != nil {
		return core.Budget{}, err
	}
	end, err := parseOptionalDate(in.EndDate, loc)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		ID:         id,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Amount:     in.Amount,
		Period:     core.RepetitionTypes(strings.ToLower(string(in.Period))),
		StartDate:  start,
		EndDate:    end,
	}, nil
}

type reportInput struct {
	Format core.ReportFormat    `json:"format"`
	Period core.RepetitionTypes `json:"period"`
}

func (in reportInput) normalized() (core.ReportFormat, core.RepetitionTypes, error) {
	format := core.ReportFormat(strings.ToLower(string(in.Format)))
	if format == "" {
		format = core.FormatCSV
	}
	period := core.RepetitionTypes(strings.ToLower(string(in.Period)))
	if period == "" {
		period = core.Monthly
	}
	if !format.Valid() {
		return "", "", fmt.Errorf("format %q: %w", in.Format, core.ErrInvalidFormat)
	}
	return format, period, nil
}

// parseTimeframe reads the analytics timeframe; empty means month.
func parseTimeframe(s string) (core.Timeframe, error) {
	switch tf := core.Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case "":
		return core.TimeframeMonth, nil
	case core.TimeframeWeek, core.TimeframeMonth, core.TimeframeYear:
		return tf, nil
	}
	return "", badRequest("unknown timeframe %q, expected week, month or year", s)
}

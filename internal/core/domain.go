package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Monthly RepetitionTypes = "monthly"
	Yearly  RepetitionTypes = "yearly"
	Weekly  RepetitionTypes = "weekly"
	Daily   RepetitionTypes = "daily"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// ReportScopeAll is the only transaction-kind scope generated reports use.
const ReportScopeAll = "all"

type (
	RepetitionTypes string
	TransactionKind string
	ReportFormat    string

	Transaction struct {
		ID              string          `json:"id"`
		Amount          decimal.Decimal `json:"amount"`
		Type            TransactionKind `json:"type"`
		Category        string          `json:"category"`
		Date            time.Time       `json:"date"`
		Notes           string          `json:"notes"`
		IsRecurring     bool            `json:"isRecurring,omitempty"`
		RecurringPeriod RepetitionTypes `json:"recurringPeriod,omitempty"`
		NextOccurrence  *time.Time      `json:"nextOccurrence,omitempty"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}

	Budget struct {
		ID         string          `json:"id"`
		CategoryID string          `json:"categoryId"`
		Amount     decimal.Decimal `json:"amount"`
		Period     RepetitionTypes `json:"period"`
		StartDate  time.Time       `json:"startDate"`
		EndDate    *time.Time      `json:"endDate,omitempty"`
		Spent      decimal.Decimal `json:"spent"`
		Remaining  decimal.Decimal `json:"remaining"`
	}

	Report struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Type      string          `json:"type"`
		Period    RepetitionTypes `json:"period"`
		Format    ReportFormat    `json:"format"`
		CreatedAt time.Time       `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction type")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidFormat   = errors.New("invalid report format")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrMissingDate     = errors.New("date cannot be zero")
	ErrNotesTooLong    = errors.New("notes too long (max 500 characters)")
	ErrDateRange       = errors.New("end date must be after start date")
	ErrDefaultCategory = errors.New("default categories cannot be modified")
)

var validationErrors = []error{
	ErrInvalidAmount, ErrInvalidKind, ErrInvalidPeriod, ErrInvalidFormat,
	ErrEmptyCategory, ErrEmptyName, ErrMissingDate, ErrNotesTooLong, ErrDateRange,
}

// IsValidation reports whether err stems from rejected input rather than a
// storage or runtime failure.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Valid reports whether r is one of the four supported periods.
func (r RepetitionTypes) Valid() bool {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (f ReportFormat) Valid() bool {
	return f == FormatCSV || f == FormatPDF
}

func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if len(t.Notes) > 500 {
		return ErrNotesTooLong
	}
	if t.IsRecurring {
		if !t.RecurringPeriod.Valid() {
			return fmt.Errorf("recurring period: %w", ErrInvalidPeriod)
		}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IsDefault reports whether the category is one of the seeded defaults.
func (c Category) IsDefault() bool {
	return IsDefaultCategoryID(c.ID)
}

func (b Budget) Validate() error {
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if b.StartDate.IsZero() {
		return fmt.Errorf("invalid start date: %w", ErrMissingDate)
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return ErrDateRange
	}
	return nil
}

// Window returns the inclusive date range a budget covers. Without an end
// date the window spans one period unit from the start date.
func (b Budget) Window() (time.Time, time.Time) {
	if b.EndDate != nil {
		return b.StartDate, *b.EndDate
	}
	return b.StartDate, AdvancePeriod(b.StartDate, b.Period)
}

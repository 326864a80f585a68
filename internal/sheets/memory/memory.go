package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"smartspend/internal/core"
)

// Store records appended reports and alerts in memory. It backs tests and
// runs without spreadsheet credentials.
type Store struct {
	mu      sync.Mutex
	reports map[string][][]string
	alerts  []core.BudgetAlert
}

func New() *Store {
	return &Store{reports: map[string][][]string{}}
}

// AppendReport stores header and rows under sheetName and returns a synthetic range reference.
func (s *Store) AppendReport(_ context.Context, sheetName string, header []string, rows [][]string) (string, error) {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		return "", fmt.Errorf("empty sheet name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.reports[sheetName]
	if len(existing) == 0 && len(header) > 0 {
		existing = append(existing, append([]string(nil), header...))
	}
	start := len(existing) + 1
	for _, r := range rows {
		existing = append(existing, append([]string(nil), r...))
	}
	s.reports[sheetName] = existing
	return fmt.Sprintf("mem:%s!A%d:E%d", sheetName, start, len(existing)), nil
}

// AppendAlert records an alert.
func (s *Store) AppendAlert(_ context.Context, alert core.BudgetAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

// Sheet returns a copy of the rows written to sheetName, header included.
func (s *Store) Sheet(sheetName string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.reports[sheetName]))
	for i, r := range s.reports[sheetName] {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Alerts returns the recorded alerts.
func (s *Store) Alerts() []core.BudgetAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetAlert(nil), s.alerts...)
}

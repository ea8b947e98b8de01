// Package memory keeps reports in process for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "fintrack/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []ports.MonthlyReport
}

var _ ports.ReportStore = (*Store)(nil)

func New() *Store { return &Store{} }

func (s *Store) UpsertReport(_ context.Context, r ports.MonthlyReport) (string, error) {
	if r.UserID == "" || r.Month.IsZero() {
		return "", errors.New("report requires a user and a month")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.rows {
		if existing.UserID == r.UserID && existing.Month == r.Month {
			s.rows[i] = r
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.rows = append(s.rows, r)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) ListReports(_ context.Context, year int) ([]ports.MonthlyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ports.MonthlyReport
	for _, r := range s.rows {
		if r.Month.Year == year {
			out = append(out, r)
		}
	}
	return out, nil
}

package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// Service tracks employee clock-ins and clock-outs.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ClockIn opens an attendance entry. An employee can have at most one open
// entry at a time.
func (s *Service) ClockIn(ctx context.Context, employeeID, storeID int64) (Entry, error) {
	if employeeID <= 0 || storeID <= 0 {
		return Entry{}, shared.NewValidationError("employee and store are required")
	}

	_, open, err := s.repo.GetOpenEntry(ctx, employeeID)
	if err != nil {
		return Entry{}, shared.NewPersistenceError("attendance: check open entry", err)
	}
	if open {
		return Entry{}, shared.NewValidationError("employee already clocked in")
	}

	entry, err := s.repo.Insert(ctx, Entry{
		EmployeeID: employeeID,
		StoreID:    storeID,
		ClockInAt:  time.Now(),
	})
	if err != nil {
		return Entry{}, shared.NewPersistenceError("attendance: clock in", err)
	}
	return entry, nil
}

// ClockOut closes the employee's open entry.
func (s *Service) ClockOut(ctx context.Context, employeeID int64) (Entry, error) {
	if employeeID <= 0 {
		return Entry{}, shared.NewValidationError("employee is required")
	}

	entry, open, err := s.repo.GetOpenEntry(ctx, employeeID)
	if err != nil {
		return Entry{}, shared.NewPersistenceError("attendance: check open entry", err)
	}
	if !open {
		return Entry{}, shared.NewValidationError("employee is not clocked in")
	}

	now := time.Now()
	if err := s.repo.CloseEntry(ctx, entry.ID, now); err != nil {
		return Entry{}, shared.NewPersistenceError("attendance: clock out", err)
	}
	entry.ClockOutAt = &now
	return entry, nil
}

// List returns attendance entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.NewPersistenceError("attendance: list", err)
	}
	return entries, nil
}

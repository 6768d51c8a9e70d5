package attendance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

type memAttendanceRepo struct {
	entries map[int64]Entry
	nextID  int64
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{entries: make(map[int64]Entry)}
}

func (r *memAttendanceRepo) GetOpenEntry(ctx context.Context, employeeID int64) (Entry, bool, error) {
	for _, e := range r.entries {
		if e.EmployeeID == employeeID && e.ClockOutAt == nil {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func (r *memAttendanceRepo) Insert(ctx context.Context, e Entry) (Entry, error) {
	r.nextID++
	e.ID = r.nextID
	r.entries[e.ID] = e
	return e, nil
}

func (r *memAttendanceRepo) CloseEntry(ctx context.Context, id int64, clockOutAt time.Time) error {
	e, ok := r.entries[id]
	if !ok || e.ClockOutAt != nil {
		return shared.NewNotFoundError("attendance entry", id)
	}
	e.ClockOutAt = &clockOutAt
	r.entries[id] = e
	return nil
}

func (r *memAttendanceRepo) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if filter.EmployeeID != nil && e.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func TestClockInRejectsMissingIDs(t *testing.T) {
	svc := NewService(newMemAttendanceRepo(), slog.Default())

	_, err := svc.ClockIn(context.Background(), 0, 1)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.ClockIn(context.Background(), 1, 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestClockInRejectsDoubleClockIn(t *testing.T) {
	repo := newMemAttendanceRepo()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	entry, err := svc.ClockIn(ctx, 1, 2)
	require.NoError(t, err)
	require.NotZero(t, entry.ID)
	require.Nil(t, entry.ClockOutAt)

	_, err = svc.ClockIn(ctx, 1, 2)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Len(t, repo.entries, 1)
}

func TestClockOutClosesOpenEntry(t *testing.T) {
	repo := newMemAttendanceRepo()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	opened, err := svc.ClockIn(ctx, 1, 2)
	require.NoError(t, err)

	closed, err := svc.ClockOut(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, opened.ID, closed.ID)
	require.NotNil(t, closed.ClockOutAt)

	// The employee can start a fresh entry afterwards.
	again, err := svc.ClockIn(ctx, 1, 2)
	require.NoError(t, err)
	require.NotEqual(t, opened.ID, again.ID)
}

func TestClockOutWithoutOpenEntry(t *testing.T) {
	svc := NewService(newMemAttendanceRepo(), slog.Default())

	_, err := svc.ClockOut(context.Background(), 1)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListFiltersByEmployee(t *testing.T) {
	repo := newMemAttendanceRepo()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, 2, 2)
	require.NoError(t, err)

	emp := int64(1)
	entries, err := svc.List(ctx, ListFilter{EmployeeID: &emp})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, emp, entries[0].EmployeeID)
}

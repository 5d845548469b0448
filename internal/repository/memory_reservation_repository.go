package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/kiosk-table-reservation/internal/clock"
	"github.com/iliyamo/kiosk-table-reservation/internal/model"
	"github.com/iliyamo/kiosk-table-reservation/internal/occupancy"
)

// MemoryReservationRepo keeps reservations in process memory.  It backs the
// "memory" storage driver used for local demos and for service tests; data
// does not survive a restart.
type MemoryReservationRepo struct {
	mu     sync.RWMutex
	rows   []model.Reservation
	nextID int64
}

// NewMemoryReservationRepo returns an empty in-memory repository.
func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{}
}

// Create runs guard against the rows of the same store and table and
// appends res under a single lock.
func (m *MemoryReservationRepo) Create(ctx context.Context, res *model.Reservation, guard Guard) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if guard != nil {
		var existing []model.Reservation
		for _, row := range m.rows {
			if row.StoreID == res.StoreID && row.TableNum == res.TableNum {
				existing = append(existing, row)
			}
		}
		if err := guard(existing); err != nil {
			return 0, err
		}
	}

	m.nextID++
	res.ID = m.nextID
	m.rows = append(m.rows, *res)
	return res.ID, nil
}

// Delete removes the row with id and reports whether it existed.
func (m *MemoryReservationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ListByRange mirrors ReservationRepo.ListByRange.
func (m *MemoryReservationRepo) ListByRange(ctx context.Context, storeID int64, startDate, endDate string) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := []model.Reservation{}
	for _, row := range m.rows {
		if row.StoreID == storeID && occupancy.InDateRange(row, startDate, endDate) {
			out = append(out, row)
		}
	}
	m.mu.RUnlock()
	occupancy.SortByStartDesc(out)
	return out, nil
}

// ListActiveCandidates mirrors ReservationRepo.ListActiveCandidates.
func (m *MemoryReservationRepo) ListActiveCandidates(ctx context.Context, storeID int64, day string) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Reservation{}
	for _, row := range m.rows {
		if row.StoreID != storeID {
			continue
		}
		end, err := clock.Normalize(row.EndTime)
		if err != nil || end.Format(clock.DateLayout) >= day {
			out = append(out, row)
			continue
		}
		if _, err := clock.Normalize(row.StartTime); err != nil {
			out = append(out, row)
		}
	}
	return out, nil
}

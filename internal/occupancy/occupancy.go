// Package occupancy computes which tables of a store are inside an active
// reservation interval and for how much longer.  Intervals are half-open:
// a reservation is active from its start (inclusive) until its end
// (exclusive).  Timestamps are normalized through the clock package, so rows
// may mix the space and T separated shapes freely.
package occupancy

import (
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/kiosk-table-reservation/internal/clock"
	"github.com/iliyamo/kiosk-table-reservation/internal/model"
)

// Occupant describes the reservation currently holding a table.
type Occupant struct {
	ReservationID int64     `json:"reservation_id"`
	TableNum      int       `json:"table_num"`
	Remaining     int       `json:"remaining_minutes"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

// Result is the outcome of ActiveTables.  Skipped counts rows of the store
// whose start or end timestamp could not be normalized; such rows are left
// out instead of failing the whole computation.
type Result struct {
	Tables  map[int]Occupant
	Skipped int
}

// Minutes projects the result onto table number -> remaining minutes.
func (r Result) Minutes() map[int]int {
	out := make(map[int]int, len(r.Tables))
	for table, occ := range r.Tables {
		out[table] = occ.Remaining
	}
	return out
}

// ActiveTables returns the active tables of storeID at now.  Rows belonging
// to other stores are ignored.  When several rows of one table are active at
// once the row with the latest start wins, and equal starts are decided by
// the highest reservation id.
func ActiveTables(storeID int64, rows []model.Reservation, now time.Time) Result {
	res := Result{Tables: make(map[int]Occupant)}
	nowUnix := now.Unix()
	for _, row := range rows {
		if row.StoreID != storeID {
			continue
		}
		start, end, err := bounds(row)
		if err != nil {
			res.Skipped++
			continue
		}
		if now.Before(start) || !now.Before(end) {
			continue
		}
		occ := Occupant{
			ReservationID: row.ID,
			TableNum:      row.TableNum,
			Remaining:     int((end.Unix() - nowUnix) / 60),
			Start:         start,
			End:           end,
		}
		if cur, ok := res.Tables[row.TableNum]; ok && !supersedes(occ, cur) {
			continue
		}
		res.Tables[row.TableNum] = occ
	}
	return res
}

func supersedes(candidate, current Occupant) bool {
	if !candidate.Start.Equal(current.Start) {
		return candidate.Start.After(current.Start)
	}
	return candidate.ReservationID > current.ReservationID
}

func bounds(row model.Reservation) (time.Time, time.Time, error) {
	start, err := clock.Normalize(row.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("reservation %d start: %w", row.ID, err)
	}
	end, err := clock.Normalize(row.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("reservation %d end: %w", row.ID, err)
	}
	return start, end, nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflict returns the first existing row on the candidate's store and
// table whose interval overlaps the candidate.  Existing rows with malformed
// timestamps cannot be compared and are ignored.  The candidate itself must
// be well formed.
func FindConflict(candidate model.Reservation, existing []model.Reservation) (*model.Reservation, error) {
	start, end, err := bounds(candidate)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		row := existing[i]
		if row.StoreID != candidate.StoreID || row.TableNum != candidate.TableNum {
			continue
		}
		rs, re, err := bounds(row)
		if err != nil {
			continue
		}
		if Overlaps(start, end, rs, re) {
			return &row, nil
		}
	}
	return nil, nil
}

// StartDate returns the calendar date portion of the row's normalized start.
func StartDate(row model.Reservation) (string, bool) {
	start, err := clock.Normalize(row.StartTime)
	if err != nil {
		return "", false
	}
	return start.Format(clock.DateLayout), true
}

// InDateRange reports whether the row's start date lies within
// [startDate, endDate] inclusive.  Only the date is compared, so a row
// starting late on endDate is included even if it ends the next day.
func InDateRange(row model.Reservation, startDate, endDate string) bool {
	d, ok := StartDate(row)
	if !ok {
		return false
	}
	return d >= startDate && d <= endDate
}

// SortByStartDesc orders rows by normalized start, most recent first, with
// the highest id first among equal starts.  Rows that fail to normalize sort
// last.
func SortByStartDesc(rows []model.Reservation) {
	type keyed struct {
		start time.Time
		ok    bool
	}
	keys := make(map[int64]keyed, len(rows))
	for _, r := range rows {
		s, err := clock.Normalize(r.StartTime)
		keys[r.ID] = keyed{start: s, ok: err == nil}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := keys[rows[i].ID], keys[rows[j].ID]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.start.Equal(b.start) {
			return a.start.After(b.start)
		}
		return rows[i].ID > rows[j].ID
	})
}

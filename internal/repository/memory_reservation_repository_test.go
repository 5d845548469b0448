package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/kiosk-table-reservation/internal/model"
)

func TestMemoryReservationRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReservationRepo()

	mk := func(store int64, table int, start, end string) *model.Reservation {
		return &model.Reservation{StoreID: store, TableNum: table, StartTime: start, EndTime: end}
	}

	id1, err := repo.Create(ctx, mk(1, 1, "2025-01-01 10:00:00", "2025-01-01 11:00:00"), nil)
	if err != nil || id1 != 1 {
		t.Fatalf("expected id 1, got %d (%v)", id1, err)
	}
	if _, err := repo.Create(ctx, mk(1, 2, "2025-01-03T09:00:00", "2025-01-03T10:00:00"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Create(ctx, mk(2, 1, "2025-01-02 09:00:00", "2025-01-02 10:00:00"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("guard sees only same table", func(t *testing.T) {
		var seen []model.Reservation
		_, err := repo.Create(ctx, mk(1, 1, "x", "y"), func(existing []model.Reservation) error {
			seen = existing
			return ErrOverlap
		})
		if !errors.Is(err, ErrOverlap) {
			t.Fatalf("expected ErrOverlap, got %v", err)
		}
		if len(seen) != 1 || seen[0].ID != id1 {
			t.Fatalf("expected guard to see only reservation %d, got %+v", id1, seen)
		}
	})

	t.Run("range is store scoped and ordered", func(t *testing.T) {
		rows, err := repo.ListByRange(ctx, 1, "1900-01-01", "2100-01-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0].ID != 2 || rows[1].ID != 1 {
			t.Fatalf("expected ids [2 1], got %+v", rows)
		}
	})

	t.Run("active candidates drop finished days", func(t *testing.T) {
		rows, err := repo.ListActiveCandidates(ctx, 1, "2025-01-02")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 || rows[0].ID != 2 {
			t.Fatalf("expected only reservation 2, got %+v", rows)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if ok, _ := repo.Delete(ctx, id1); !ok {
			t.Fatalf("expected first delete to remove the row")
		}
		if ok, _ := repo.Delete(ctx, id1); ok {
			t.Fatalf("expected second delete to report nothing removed")
		}
	})
}

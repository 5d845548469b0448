// Package service implements the reservation boundary operations used by the
// HTTP handlers: add, delete, range listing, active tables and the table
// board.  Persistence is reached through the ReservationStore interface so
// that the MySQL and in-memory drivers are interchangeable.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/kiosk-table-reservation/internal/clock"
	"github.com/iliyamo/kiosk-table-reservation/internal/model"
	"github.com/iliyamo/kiosk-table-reservation/internal/occupancy"
	"github.com/iliyamo/kiosk-table-reservation/internal/queue"
	"github.com/iliyamo/kiosk-table-reservation/internal/repository"
)

var (
	ErrInvalidInterval = errors.New("invalid reservation interval")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTable    = errors.New("invalid table number")
	ErrInvalidStore    = errors.New("invalid store")
)

// ReservationStore is the persistence collaborator.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation, guard repository.Guard) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListByRange(ctx context.Context, storeID int64, startDate, endDate string) ([]model.Reservation, error)
	ListActiveCandidates(ctx context.Context, storeID int64, day string) ([]model.Reservation, error)
}

// StoreReader resolves store metadata for the table board.
type StoreReader interface {
	GetByID(ctx context.Context, id int64) (model.Store, error)
}

// ConnectionStatus reports which tables currently have a device channel.
type ConnectionStatus interface {
	Connected(storeID int64) []int
}

// EventPublisher receives reservation lifecycle events.
type EventPublisher interface {
	PublishReservation(ctx context.Context, ev queue.ReservationEvent) error
}

// AddInput carries the caller-supplied fields of a new reservation.
type AddInput struct {
	StoreID   int64  `json:"store_id" form:"store_id"`
	TableNum  int    `json:"table_num" form:"table_num"`
	Phone     string `json:"phone" form:"phone"`
	MenuName  string `json:"menu_name" form:"menu_name"`
	Price     int64  `json:"price" form:"price"`
	StartTime string `json:"start_time" form:"start_time"`
	EndTime   string `json:"end_time" form:"end_time"`
	AuthNo    string `json:"auth_no" form:"auth_no"`
}

// TableStatus is one cell of the table board.
type TableStatus struct {
	TableNum         int   `json:"table_num"`
	Active           bool  `json:"active"`
	RemainingMinutes int   `json:"remaining_minutes"`
	ReservationID    int64 `json:"reservation_id,omitempty"`
	DeviceConnected  bool  `json:"device_connected"`
}

// Board is the status of every table of a store.
type Board struct {
	StoreID   int64         `json:"store_id"`
	StoreName string        `json:"store_name"`
	Now       string        `json:"now"`
	Tables    []TableStatus `json:"tables"`
	Skipped   int           `json:"skipped_rows"`
}

// ReservationService bundles the collaborators of the reservation engine.
type ReservationService struct {
	store     ReservationStore
	clock     clock.Clock
	stores    StoreReader
	devices   ConnectionStatus
	publisher EventPublisher
}

// Option configures a ReservationService.
type Option func(*ReservationService)

func WithStoreReader(r StoreReader) Option { return func(s *ReservationService) { s.stores = r } }

func WithConnectionStatus(c ConnectionStatus) Option {
	return func(s *ReservationService) { s.devices = c }
}

func WithPublisher(p EventPublisher) Option { return func(s *ReservationService) { s.publisher = p } }

func NewReservationService(store ReservationStore, clk clock.Clock, opts ...Option) *ReservationService {
	if store == nil || clk == nil {
		panic("nil dependency passed to NewReservationService")
	}
	s := &ReservationService{store: store, clock: clk}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates and stores a reservation and returns its id.  Timestamps are
// stored verbatim; they must normalize and start must precede end.  A
// reservation overlapping another on the same table is rejected with
// repository.ErrOverlap.
func (s *ReservationService) Add(ctx context.Context, in AddInput) (int64, error) {
	if in.StoreID <= model.AdminStoreID {
		return 0, fmt.Errorf("%w: store %d owns no tables", ErrInvalidStore, in.StoreID)
	}
	if in.TableNum < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTable, in.TableNum)
	}
	start, err := clock.Normalize(in.StartTime)
	if err != nil {
		return 0, fmt.Errorf("%w: start: %w", ErrInvalidInterval, err)
	}
	end, err := clock.Normalize(in.EndTime)
	if err != nil {
		return 0, fmt.Errorf("%w: end: %w", ErrInvalidInterval, err)
	}
	if !start.Before(end) {
		return 0, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidInterval, clock.Format(start), clock.Format(end))
	}

	res := &model.Reservation{
		StoreID:   in.StoreID,
		TableNum:  in.TableNum,
		Phone:     in.Phone,
		MenuName:  in.MenuName,
		Price:     in.Price,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		AuthNo:    in.AuthNo,
	}
	id, err := s.store.Create(ctx, res, func(existing []model.Reservation) error {
		conflict, err := occupancy.FindConflict(*res, existing)
		if err != nil {
			return err
		}
		if conflict != nil {
			return fmt.Errorf("%w: reservation %d (%s - %s)", repository.ErrOverlap, conflict.ID, conflict.StartTime, conflict.EndTime)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, queue.ReservationEvent{
		Type:          queue.TypeReservationCreated,
		ReservationID: id,
		StoreID:       res.StoreID,
		TableNum:      res.TableNum,
		MenuName:      res.MenuName,
		Price:         res.Price,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
	})
	return id, nil
}

// Delete removes a reservation.  Deleting a missing id succeeds silently.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if removed {
		s.publish(ctx, queue.ReservationEvent{Type: queue.TypeReservationDeleted, ReservationID: id})
	}
	return nil
}

// ListByRange returns the reservations of storeID that start on a date in
// [startDate, endDate], most recent first.
func (s *ReservationService) ListByRange(ctx context.Context, storeID int64, startDate, endDate string) ([]model.Reservation, error) {
	from, err := clock.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %w", ErrInvalidDate, err)
	}
	to, err := clock.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %w", ErrInvalidDate, err)
	}
	return s.store.ListByRange(ctx, storeID, from, to)
}

// ActiveTables computes the active tables of storeID at the clock's now.
func (s *ReservationService) ActiveTables(ctx context.Context, storeID int64) (occupancy.Result, error) {
	now := s.clock.Now()
	rows, err := s.store.ListActiveCandidates(ctx, storeID, now.Format(clock.DateLayout))
	if err != nil {
		return occupancy.Result{}, err
	}
	res := occupancy.ActiveTables(storeID, rows, now)
	if res.Skipped > 0 {
		log.Printf("occupancy: store=%d skipped %d reservation rows with malformed timestamps", storeID, res.Skipped)
	}
	return res, nil
}

// TableBoard lists every table of the store with its occupancy and device
// connection state.  Tables numbered beyond the store's table count still
// appear when they are active or connected.
func (s *ReservationService) TableBoard(ctx context.Context, storeID int64) (Board, error) {
	board := Board{StoreID: storeID, Now: clock.Format(s.clock.Now())}
	tableCount := model.DefaultTableCount
	if s.stores != nil {
		st, err := s.stores.GetByID(ctx, storeID)
		switch {
		case err == nil:
			board.StoreName = st.Name
			tableCount = st.TableCount
		case errors.Is(err, repository.ErrNotFound):
			return Board{}, fmt.Errorf("%w: %d", ErrInvalidStore, storeID)
		default:
			return Board{}, err
		}
	}

	active, err := s.ActiveTables(ctx, storeID)
	if err != nil {
		return Board{}, err
	}
	board.Skipped = active.Skipped

	connected := map[int]bool{}
	if s.devices != nil {
		for _, t := range s.devices.Connected(storeID) {
			connected[t] = true
		}
	}

	seen := map[int]bool{}
	add := func(table int) {
		if seen[table] {
			return
		}
		seen[table] = true
		st := TableStatus{TableNum: table, DeviceConnected: connected[table]}
		if occ, ok := active.Tables[table]; ok {
			st.Active = true
			st.RemainingMinutes = occ.Remaining
			st.ReservationID = occ.ReservationID
		}
		board.Tables = append(board.Tables, st)
	}
	for t := 1; t <= tableCount; t++ {
		add(t)
	}
	extra := make([]int, 0)
	for t := range active.Tables {
		extra = append(extra, t)
	}
	for t := range connected {
		extra = append(extra, t)
	}
	sort.Ints(extra)
	for _, t := range extra {
		add(t)
	}
	return board, nil
}

func (s *ReservationService) publish(ctx context.Context, ev queue.ReservationEvent) {
	if s.publisher == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = clock.Format(s.clock.Now())
	if err := s.publisher.PublishReservation(ctx, ev); err != nil {
		log.Printf("reservation: publish %s id=%d failed: %v", ev.Type, ev.ReservationID, err)
	}
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInterval) || errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTable) || errors.Is(err, ErrInvalidStore)
}

package repository

import (
    "context"
    "database/sql"
    "fmt"

    "github.com/iliyamo/kiosk-table-reservation/internal/model"
    "github.com/iliyamo/kiosk-table-reservation/internal/occupancy"
)

// ReservationRepo provides persistence for reservations on MySQL.  Start
// and end timestamps are stored as text exactly as supplied by the caller;
// queries that need an instant normalize the T separator and keep the
// first 19 characters, mirroring clock.Normalize.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `SELECT id, store_id, table_num, phone, menu_name, price, start_time, end_time, auth_no
               FROM reservations`

// normalized start/end expressions used for date filtering and ordering
const (
    startExpr = `SUBSTRING(REPLACE(start_time, 'T', ' '), 1, 19)`
    endExpr   = `SUBSTRING(REPLACE(end_time, 'T', ' '), 1, 19)`
)

// Create inserts res and returns its generated id.  The existing rows of the
// same store and table are locked with SELECT ... FOR UPDATE and handed to
// guard before the insert, so two concurrent creates for one table cannot
// both pass an overlap check.  A guard error aborts the transaction and is
// returned unchanged.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation, guard Guard) (int64, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    defer func() { _ = tx.Rollback() }()

    rows, err := tx.QueryContext(ctx,
        reservationColumns+` WHERE store_id = ? AND table_num = ? FOR UPDATE`,
        res.StoreID, res.TableNum)
    if err != nil {
        return 0, err
    }
    existing, err := scanReservations(rows)
    if err != nil {
        return 0, err
    }
    if guard != nil {
        if err := guard(existing); err != nil {
            return 0, err
        }
    }

    const q = `INSERT INTO reservations (store_id, table_num, phone, menu_name, price, start_time, end_time, auth_no)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q,
        res.StoreID, res.TableNum, res.Phone, res.MenuName, res.Price, res.StartTime, res.EndTime, res.AuthNo)
    if err != nil {
        return 0, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    res.ID = id
    return id, nil
}

// Delete removes a reservation by id and reports whether a row existed.
func (r *ReservationRepo) Delete(ctx context.Context, id int64) (bool, error) {
    result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
    if err != nil {
        return false, err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// ListByRange returns the reservations of storeID whose start date falls
// within [startDate, endDate] inclusive, most recent start first.  Dates are
// YYYY-MM-DD; only the date portion of start_time is compared.
func (r *ReservationRepo) ListByRange(ctx context.Context, storeID int64, startDate, endDate string) ([]model.Reservation, error) {
    q := reservationColumns + `
               WHERE store_id = ?
                 AND SUBSTRING(` + startExpr + `, 1, 10) BETWEEN ? AND ?
               ORDER BY ` + startExpr + ` DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, storeID, startDate, endDate)
    if err != nil {
        return nil, err
    }
    all, err := scanReservations(rows)
    if err != nil {
        return nil, err
    }
    // The SQL prefilter accepts date-only text the strict parser rejects.
    out := all[:0]
    for _, res := range all {
        if occupancy.InDateRange(res, startDate, endDate) {
            out = append(out, res)
        }
    }
    occupancy.SortByStartDesc(out)
    return out, nil
}

// ListActiveCandidates returns the reservations of storeID that may be active
// on day (YYYY-MM-DD): rows ending on or after day, plus rows whose
// timestamps are too short to be normalized so that the occupancy
// calculator can count them as skipped.
func (r *ReservationRepo) ListActiveCandidates(ctx context.Context, storeID int64, day string) ([]model.Reservation, error) {
    q := reservationColumns + `
               WHERE store_id = ?
                 AND (SUBSTRING(` + endExpr + `, 1, 10) >= ?
                      OR CHAR_LENGTH(start_time) < 19
                      OR CHAR_LENGTH(end_time) < 19)`
    rows, err := r.db.QueryContext(ctx, q, storeID, day)
    if err != nil {
        return nil, err
    }
    return scanReservations(rows)
}

// scanReservations drains rows into reservations and closes rows.
func scanReservations(rows *sql.Rows) ([]model.Reservation, error) {
    defer rows.Close()
    out := []model.Reservation{}
    for rows.Next() {
        var res model.Reservation
        if err := rows.Scan(&res.ID, &res.StoreID, &res.TableNum, &res.Phone, &res.MenuName,
            &res.Price, &res.StartTime, &res.EndTime, &res.AuthNo); err != nil {
            return nil, fmt.Errorf("scan reservation: %w", err)
        }
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

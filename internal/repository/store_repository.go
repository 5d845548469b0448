package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/kiosk-table-reservation/internal/model"
)

// StoreRepo gives read access to stores and their menus.  Administrative
// writes on these tables belong to the back-office application.
type StoreRepo struct {
    db *sql.DB
}

// NewStoreRepo returns a new StoreRepo bound to the given database.
func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{db: db} }

// GetByID loads a store.  It returns ErrNotFound when no such store exists.
// A missing or non-positive table_count falls back to model.DefaultTableCount.
func (r *StoreRepo) GetByID(ctx context.Context, id int64) (model.Store, error) {
    var (
        s          model.Store
        location   sql.NullString
        tableCount sql.NullInt64
    )
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, location, table_count FROM stores WHERE id = ? LIMIT 1`, id,
    ).Scan(&s.ID, &s.Name, &location, &tableCount)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Store{}, ErrNotFound
    }
    if err != nil {
        return model.Store{}, err
    }
    s.Location = location.String
    s.TableCount = model.DefaultTableCount
    if tableCount.Valid && tableCount.Int64 > 0 {
        s.TableCount = int(tableCount.Int64)
    }
    return s, nil
}

// ListMenus returns the menus of a store, shortest first.
func (r *StoreRepo) ListMenus(ctx context.Context, storeID int64) ([]model.StoreMenu, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, store_id, menu_name, price, minutes FROM store_menus WHERE store_id = ? ORDER BY minutes, id`,
        storeID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    menus := []model.StoreMenu{}
    for rows.Next() {
        var m model.StoreMenu
        if err := rows.Scan(&m.ID, &m.StoreID, &m.MenuName, &m.Price, &m.Minutes); err != nil {
            return nil, err
        }
        menus = append(menus, m)
    }
    return menus, rows.Err()
}

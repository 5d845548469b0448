package model

// AdminStoreID is the administrative tenant.  It owns no real tables and
// its users may act on behalf of any store.
const AdminStoreID int64 = 0

// DefaultTableCount is used when a store row does not carry a table count.
const DefaultTableCount = 4

// Store is a tenant location with its own tables, menus and reservations.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name.
//  Location   – free-form address string.
//  TableCount – number of physical tables, numbered from 1.
type Store struct {
    ID         int64  `json:"id"`          // stores.id
    Name       string `json:"name"`        // stores.name
    Location   string `json:"location"`    // stores.location
    TableCount int    `json:"table_count"` // stores.table_count
}

// StoreMenu is a priced, timed offering scoped to a store.  Kiosks read it
// to prefill a reservation's price and duration; reservations carry their
// own materialized interval afterwards.
type StoreMenu struct {
    ID       int64  `json:"id"`        // store_menus.id
    StoreID  int64  `json:"store_id"`  // store_menus.store_id
    MenuName string `json:"menu_name"` // store_menus.menu_name
    Price    int64  `json:"price"`     // store_menus.price
    Minutes  int    `json:"minutes"`   // store_menus.minutes
}

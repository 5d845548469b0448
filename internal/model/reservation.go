package model

// Reservation records one booked interval on a store's table.  Start and
// end are kept exactly as the caller supplied them; they may use either the
// space or the T separated timestamp shape and are normalized on read.
// Reservations are never updated in place: they are created and deleted.
//
// Fields:
//  ID        – primary key identifier assigned on insert.
//  StoreID   – store that owns the table.
//  TableNum  – table number, unique only within a store.
//  Phone     – contact string of the customer.
//  MenuName  – label of the purchased menu item.
//  Price     – price in whole currency units.
//  StartTime – interval start as text.
//  EndTime   – interval end as text (exclusive).
//  AuthNo    – opaque payment authorization code.
type Reservation struct {
    ID        int64  `json:"id"`         // reservations.id
    StoreID   int64  `json:"store_id"`   // reservations.store_id
    TableNum  int    `json:"table_num"`  // reservations.table_num
    Phone     string `json:"phone"`      // reservations.phone
    MenuName  string `json:"menu_name"`  // reservations.menu_name
    Price     int64  `json:"price"`      // reservations.price
    StartTime string `json:"start_time"` // reservations.start_time
    EndTime   string `json:"end_time"`   // reservations.end_time
    AuthNo    string `json:"auth_no"`    // reservations.auth_no
}

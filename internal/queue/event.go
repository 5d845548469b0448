// Package queue defines message payloads exchanged over the message broker
// and the background consumer that writes them to the audit log.
package queue

// Routing keys (queue names) used by the publisher and the consumer.
const (
    ReservationEventsQueue = "kiosk.reservation"
    ControlEventsQueue     = "kiosk.control"
)

// Event types carried in the envelope.
const (
    TypeReservationCreated = "reservation.created"
    TypeReservationDeleted = "reservation.deleted"
    TypeControlCommand     = "control.command"
)

// ReservationEvent is published when a reservation is created or deleted.
// Deleted events only carry the identifier.
type ReservationEvent struct {
    EventID       string `json:"event_id"`
    Type          string `json:"type"`
    ReservationID int64  `json:"reservation_id"`
    StoreID       int64  `json:"store_id,omitempty"`
    TableNum      int    `json:"table_num,omitempty"`
    MenuName      string `json:"menu_name,omitempty"`
    Price         int64  `json:"price,omitempty"`
    StartTime     string `json:"start_time,omitempty"`
    EndTime       string `json:"end_time,omitempty"`
    OccurredAt    string `json:"occurred_at"`
}

// ControlCommandEvent records every attempt to drive a table device,
// including attempts that found no connected channel.
type ControlCommandEvent struct {
    EventID    string `json:"event_id"`
    Type       string `json:"type"`
    StoreID    int64  `json:"store_id"`
    TableNum   int    `json:"table_num"`
    Command    string `json:"command"`
    Outcome    string `json:"outcome"`
    Error      string `json:"error,omitempty"`
    OccurredAt string `json:"occurred_at"`
}

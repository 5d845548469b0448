// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
    "errors"

    "github.com/iliyamo/kiosk-table-reservation/internal/model"
)

// ErrNotFound is returned when a row addressed by id does not exist.
// Deletes never surface it; lookups do.
var ErrNotFound = errors.New("not found")

// ErrOverlap is returned when a new reservation would share an instant with
// an existing reservation on the same store and table.  Handlers should
// translate this into an HTTP 409 response.
var ErrOverlap = errors.New("reservation overlaps an existing reservation")

// Guard inspects the existing reservations of the (store, table) a new row
// is about to be inserted into and vetoes the insert by returning an error.
// Drivers run it inside the same critical section as the insert.
type Guard func(existing []model.Reservation) error

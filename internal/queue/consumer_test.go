package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestFormatLine(t *testing.T) {
    created, _ := json.Marshal(ReservationEvent{
        Type: TypeReservationCreated, ReservationID: 7, StoreID: 2, TableNum: 3,
        MenuName: "1 hour", Price: 12000, StartTime: "2025-01-01 10:00:00", EndTime: "2025-01-01 11:00:00",
        OccurredAt: "2025-01-01 09:59:00",
    })
    deleted, _ := json.Marshal(ReservationEvent{Type: TypeReservationDeleted, ReservationID: 7, OccurredAt: "2025-01-01 12:00:00"})
    blind, _ := json.Marshal(ControlCommandEvent{
        Type: TypeControlCommand, StoreID: 2, TableNum: 3, Command: "open", Outcome: "failed",
        Error: "write: broken pipe", OccurredAt: "2025-01-01 10:01:00",
    })

    tests := []struct {
        name  string
        queue string
        body  []byte
        want  string
    }{
        {"created", ReservationEventsQueue, created,
            "[2025-01-01 09:59:00] Reservation created | reservation_id=7 | store_id=2 | table=3 | menu=\"1 hour\" | price=12000 | start=2025-01-01 10:00:00 | end=2025-01-01 11:00:00\n"},
        {"deleted", ReservationEventsQueue, deleted, "[2025-01-01 12:00:00] Reservation deleted | reservation_id=7\n"},
        {"blind", ControlEventsQueue, blind,
            "[2025-01-01 10:01:00] Blind open | store_id=2 | table=3 | outcome=failed | error=\"write: broken pipe\"\n"},
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            got, err := formatLine(tc.queue, tc.body)
            if err != nil {
                t.Fatalf("expected no error, got %v", err)
            }
            if got != tc.want {
                t.Fatalf("expected %q, got %q", tc.want, got)
            }
        })
    }
}

func TestFormatLineRejectsGarbage(t *testing.T) {
    if _, err := formatLine(ReservationEventsQueue, []byte("{")); err == nil {
        t.Fatalf("expected unmarshal error")
    }
    if _, err := formatLine("other", []byte("{}")); err == nil {
        t.Fatalf("expected error for unknown queue")
    }
}

func TestHandleMessageAppends(t *testing.T) {
    dir := t.TempDir()
    body, _ := json.Marshal(ReservationEvent{Type: TypeReservationDeleted, ReservationID: 1, OccurredAt: "x"})
    for i := 0; i < 2; i++ {
        if err := handleMessage(dir, ReservationEventsQueue, body); err != nil {
            t.Fatalf("expected no error, got %v", err)
        }
    }
    data, err := os.ReadFile(filepath.Join(dir, AuditLogName))
    if err != nil {
        t.Fatalf("read log: %v", err)
    }
    if n := strings.Count(string(data), "\n"); n != 2 {
        t.Fatalf("expected 2 lines, got %d", n)
    }
}

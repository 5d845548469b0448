package control

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/kiosk-table-reservation/internal/clock"
	"github.com/iliyamo/kiosk-table-reservation/internal/queue"
	"github.com/iliyamo/kiosk-table-reservation/internal/registry"
)

type recordingChannel struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (c *recordingChannel) Send(_ context.Context, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *recordingChannel) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

type fakeAuditor struct {
	events []queue.ControlCommandEvent
	err    error
}

func (a *fakeAuditor) PublishControlCommand(_ context.Context, ev queue.ControlCommandEvent) error {
	a.events = append(a.events, ev)
	return a.err
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		raw  string
		want Command
		err  bool
	}{
		{"open", Open, false},
		{" CLOSE ", Close, false},
		{"toggle", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ParseCommand(tc.raw)
		if tc.err {
			if !errors.Is(err, ErrUnknownCommand) {
				t.Fatalf("ParseCommand(%q): expected ErrUnknownCommand, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseCommand(%q): expected %q, got %q (%v)", tc.raw, tc.want, got, err)
		}
	}
}

func TestSendCommand(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("delivers to the latest channel only", func(t *testing.T) {
		reg := registry.New()
		chanA, chanB := &recordingChannel{}, &recordingChannel{}
		reg.Register(2, 5, chanA)
		reg.Register(2, 5, chanB)
		auditor := &fakeAuditor{}
		d := NewDispatcher(reg, WithAuditor(auditor), WithClock(clock.NewFixed(now)))

		outcome, err := d.SendCommand(context.Background(), 2, 5, Open)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != Delivered {
			t.Fatalf("expected %s, got %s", Delivered, outcome)
		}
		if got := chanB.messages(); len(got) != 1 || got[0] != "open" {
			t.Fatalf("expected chanB to receive open, got %v", got)
		}
		if got := chanA.messages(); len(got) != 0 {
			t.Fatalf("expected chanA to receive nothing, got %v", got)
		}
		if len(auditor.events) != 1 || auditor.events[0].Outcome != string(Delivered) || auditor.events[0].OccurredAt != "2025-01-01 10:00:00" {
			t.Fatalf("unexpected audit events: %+v", auditor.events)
		}
	})

	t.Run("missing channel is a silent no-op", func(t *testing.T) {
		reg := registry.New()
		other := &recordingChannel{}
		reg.Register(1, 1, other)
		d := NewDispatcher(reg)

		outcome, err := d.SendCommand(context.Background(), 1, 2, Close)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != NoChannel {
			t.Fatalf("expected %s, got %s", NoChannel, outcome)
		}
		if len(other.messages()) != 0 {
			t.Fatalf("expected no side effect on other channels")
		}
		if reg.Len() != 1 {
			t.Fatalf("expected registry to be untouched")
		}
	})

	t.Run("transport failure is reported", func(t *testing.T) {
		reg := registry.New()
		boom := errors.New("broken pipe")
		reg.Register(1, 1, &recordingChannel{err: boom})
		auditor := &fakeAuditor{err: errors.New("broker down")}
		d := NewDispatcher(reg, WithAuditor(auditor))

		_, err := d.SendCommand(context.Background(), 1, 1, Close)
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped transport error, got %v", err)
		}
		if len(auditor.events) != 1 || auditor.events[0].Outcome != "failed" {
			t.Fatalf("expected failed audit event, got %+v", auditor.events)
		}
	})

	t.Run("rejects unknown command", func(t *testing.T) {
		d := NewDispatcher(registry.New())
		if _, err := d.SendCommand(context.Background(), 1, 1, Command("toggle")); !errors.Is(err, ErrUnknownCommand) {
			t.Fatalf("expected ErrUnknownCommand, got %v", err)
		}
	})
}

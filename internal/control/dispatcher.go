// Package control routes blind commands to the device channel registered for
// a table.  Dispatch never consults occupancy: staff may open or close a
// blind on a table without an active reservation.
package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/kiosk-table-reservation/internal/clock"
	"github.com/iliyamo/kiosk-table-reservation/internal/queue"
	"github.com/iliyamo/kiosk-table-reservation/internal/registry"
)

// Command is a literal token understood by table devices.
type Command string

const (
	Open  Command = "open"
	Close Command = "close"
)

// ErrUnknownCommand is returned by ParseCommand for anything but open/close.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand maps user input onto a Command.
func ParseCommand(raw string) (Command, error) {
	switch Command(strings.ToLower(strings.TrimSpace(raw))) {
	case Open:
		return Open, nil
	case Close:
		return Close, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, raw)
}

// Outcome of a dispatch attempt.
type Outcome string

const (
	Delivered Outcome = "delivered"
	NoChannel Outcome = "no_channel"
)

// ChannelLookup is the read side of the registry.
type ChannelLookup interface {
	Lookup(storeID int64, tableNum int) (registry.Channel, bool)
}

// Auditor receives a record of every dispatch attempt.
type Auditor interface {
	PublishControlCommand(ctx context.Context, ev queue.ControlCommandEvent) error
}

// Dispatcher forwards commands to registered table channels.
type Dispatcher struct {
	channels    ChannelLookup
	auditor     Auditor
	clock       clock.Clock
	sendTimeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAuditor publishes an audit event per dispatch attempt.
func WithAuditor(a Auditor) Option {
	return func(d *Dispatcher) { d.auditor = a }
}

// WithClock sets the clock used to stamp audit events.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithSendTimeout bounds a single send when the caller's context has no
// earlier deadline.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

func NewDispatcher(channels ChannelLookup, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		channels:    channels,
		clock:       clock.NewLocal(0),
		sendTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendCommand delivers cmd to the device of (storeID, tableNum).  A missing
// device is not an error: the outcome is NoChannel and nothing is sent.  A
// transport failure is returned as an error.
func (d *Dispatcher) SendCommand(ctx context.Context, storeID int64, tableNum int, cmd Command) (Outcome, error) {
	if cmd != Open && cmd != Close {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	ch, ok := d.channels.Lookup(storeID, tableNum)
	if !ok {
		d.audit(ctx, storeID, tableNum, cmd, NoChannel, nil)
		return NoChannel, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := ch.Send(sendCtx, string(cmd)); err != nil {
		d.audit(ctx, storeID, tableNum, cmd, "", err)
		return "", fmt.Errorf("send %s to store=%d table=%d: %w", cmd, storeID, tableNum, err)
	}
	d.audit(ctx, storeID, tableNum, cmd, Delivered, nil)
	return Delivered, nil
}

func (d *Dispatcher) audit(ctx context.Context, storeID int64, tableNum int, cmd Command, outcome Outcome, sendErr error) {
	if d.auditor == nil {
		return
	}
	ev := queue.ControlCommandEvent{
		EventID:    uuid.NewString(),
		Type:       queue.TypeControlCommand,
		StoreID:    storeID,
		TableNum:   tableNum,
		Command:    string(cmd),
		Outcome:    string(outcome),
		OccurredAt: clock.Format(d.clock.Now()),
	}
	if sendErr != nil {
		ev.Outcome = "failed"
		ev.Error = sendErr.Error()
	}
	if err := d.auditor.PublishControlCommand(ctx, ev); err != nil {
		log.Printf("control: audit publish failed store=%d table=%d: %v", storeID, tableNum, err)
	}
}

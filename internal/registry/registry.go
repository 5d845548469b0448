// Package registry keeps the live control channel of every connected table
// device.  Each (store, table) identity holds at most one channel.  A newer
// registration replaces the previous one without notifying it, and
// removal is keyed on the generation handed out at registration so that a
// late disconnect of a replaced connection cannot evict its successor.
package registry

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// Channel is a live, addressable connection to a table's device.
type Channel interface {
	Send(ctx context.Context, msg string) error
}

// Key identifies a table within a store.
type Key struct {
	StoreID  int64
	TableNum int
}

// Lease is returned by Register and proves ownership of the entry when
// deregistering.
type Lease struct {
	Key        Key
	Generation uint64
}

type entry struct {
	ch  Channel
	gen uint64
}

// Registry maps table identities to their current channel.  The zero value
// is not usable; construct with New.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]entry
	gen     atomic.Uint64
}

func New() *Registry {
	return &Registry{entries: make(map[Key]entry)}
}

// Register installs ch as the current channel of (storeID, tableNum),
// replacing any previous channel.
func (r *Registry) Register(storeID int64, tableNum int, ch Channel) Lease {
	key := Key{StoreID: storeID, TableNum: tableNum}
	gen := r.gen.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = entry{ch: ch, gen: gen}
	return Lease{Key: key, Generation: gen}
}

// Deregister removes the entry only when it still belongs to lease.  It
// reports whether an entry was removed.
func (r *Registry) Deregister(lease Lease) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[lease.Key]
	if !ok || cur.gen != lease.Generation {
		return false
	}
	delete(r.entries, lease.Key)
	return true
}

// Lookup returns the current channel of (storeID, tableNum).
func (r *Registry) Lookup(storeID int64, tableNum int) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[Key{StoreID: storeID, TableNum: tableNum}]
	if !ok {
		return nil, false
	}
	return e.ch, true
}

// Connected lists the table numbers of storeID that currently have a channel.
func (r *Registry) Connected(storeID int64) []int {
	r.mu.RLock()
	tables := make([]int, 0)
	for key := range r.entries {
		if key.StoreID == storeID {
			tables = append(tables, key.TableNum)
		}
	}
	r.mu.RUnlock()
	sort.Ints(tables)
	return tables
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Package live implements the in-process subscription hub behind the
// checklist's real-time views.
//
// A subscription is registered with a Filter and a deliver callback and
// returns a first-class cancel handle. The initial snapshot is delivered
// by Subscribe itself, before any broadcast can reach the subscriber.
// Publishing names the scope a mutation touched; the hub fans out to
// every matching subscriber by fetching a fresh snapshot for that
// subscriber's own filter. Delivery and cancellation are serialized per
// subscriber, so once a cancel returns the callback is guaranteed never
// to run again.
package live

import (
	"log/slog"
	"sync"

	"budgetbook/internal/models"
)

// Filter describes the set of checklist items a subscriber watches:
// one owner, optionally narrowed to a period and a group. Month and
// Year are checked independently, so a zero field widens only that
// dimension.
type Filter struct {
	OwnerID string
	Month   int    // 0 means any month
	Year    int    // 0 means any year
	Group   string // "" means all groups
}

// Matches reports whether a mutation in the given scope is visible to
// this filter.
func (f Filter) Matches(ownerID string, month, year int, group string) bool {
	if f.OwnerID != ownerID {
		return false
	}
	if f.Month != 0 && f.Month != month {
		return false
	}
	if f.Year != 0 && f.Year != year {
		return false
	}
	if f.Group != "" && f.Group != group {
		return false
	}
	return true
}

// FetchFunc loads the current snapshot for a subscriber's filter.
type FetchFunc func(Filter) ([]models.ChecklistItem, error)

type subscriber struct {
	filter  Filter
	deliver func([]models.ChecklistItem)

	// mu serializes delivery against cancellation. Cancel takes the
	// same lock before setting closed, which is what guarantees no
	// delivery after cancel returns.
	mu     sync.Mutex
	closed bool
}

func (s *subscriber) send(items []models.ChecklistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.deliver(items)
}

// Hub fans checklist snapshots out to subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[int64]*subscriber
	nextID int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int64]*subscriber)}
}

// Subscribe registers a deliver callback for the filter, pushes the
// initial snapshot, and returns the subscription's cancel handle.
//
// The subscriber's delivery lock is held from registration until the
// initial snapshot has been delivered, so a broadcast landing in that
// window queues behind it: the first delivery is always the initial
// snapshot, and every later one was fetched at least as recently.
func (h *Hub) Subscribe(filter Filter, deliver func([]models.ChecklistItem), fetch FetchFunc) (cancel func(), err error) {
	sub := &subscriber{filter: filter, deliver: deliver}
	sub.mu.Lock()

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	h.mu.Unlock()

	items, err := fetch(filter)
	if err != nil {
		sub.closed = true
		sub.mu.Unlock()

		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		return nil, err
	}
	sub.deliver(items)
	sub.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()

		// Block until any in-flight delivery drains, then seal.
		sub.mu.Lock()
		sub.closed = true
		sub.mu.Unlock()
	}, nil
}

// Broadcast notifies every subscriber whose filter matches the mutated
// scope, fetching a snapshot per subscriber so each receives exactly the
// set its own filter selects. A fetch failure skips that subscriber and
// is logged; it never blocks the others.
func (h *Hub) Broadcast(ownerID string, month, year int, group string, fetch FetchFunc) {
	h.mu.Lock()
	matched := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.filter.Matches(ownerID, month, year, group) {
			matched = append(matched, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range matched {
		items, err := fetch(sub.filter)
		if err != nil {
			slog.Error("live snapshot fetch failed",
				"owner_id", ownerID, "month", month, "year", year, "error", err)
			continue
		}
		sub.send(items)
	}
}

// Len reports the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

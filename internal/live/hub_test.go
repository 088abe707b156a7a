package live

import (
	"errors"
	"sync"
	"testing"
	"time"

	"budgetbook/internal/models"
)

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		owner  string
		month  int
		year   int
		group  string
		want   bool
	}{
		{"owner only", Filter{OwnerID: "u1"}, "u1", 3, 2026, "general", true},
		{"wrong owner", Filter{OwnerID: "u1"}, "u2", 3, 2026, "general", false},
		{"period match", Filter{OwnerID: "u1", Month: 3, Year: 2026}, "u1", 3, 2026, "general", true},
		{"period mismatch", Filter{OwnerID: "u1", Month: 3, Year: 2026}, "u1", 4, 2026, "general", false},
		{"year mismatch", Filter{OwnerID: "u1", Month: 3, Year: 2026}, "u1", 3, 2025, "general", false},
		{"month-only filter narrows", Filter{OwnerID: "u1", Month: 3}, "u1", 4, 2026, "general", false},
		{"month-only filter matches any year", Filter{OwnerID: "u1", Month: 3}, "u1", 3, 2025, "general", true},
		{"year-only filter narrows", Filter{OwnerID: "u1", Year: 2026}, "u1", 3, 2025, "general", false},
		{"group match", Filter{OwnerID: "u1", Group: "trip"}, "u1", 3, 2026, "trip", true},
		{"group mismatch", Filter{OwnerID: "u1", Group: "trip"}, "u1", 3, 2026, "general", false},
		{"all groups", Filter{OwnerID: "u1", Month: 3, Year: 2026}, "u1", 3, 2026, "trip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Matches(tt.owner, tt.month, tt.year, tt.group)
			if got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func emptyFetch(Filter) ([]models.ChecklistItem, error) { return nil, nil }

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()

	var snapshots [][]models.ChecklistItem
	cancel, err := hub.Subscribe(Filter{OwnerID: "u1", Month: 3, Year: 2026}, func(items []models.ChecklistItem) {
		snapshots = append(snapshots, items)
	}, emptyFetch)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	if len(snapshots) != 1 {
		t.Fatalf("Expected the initial snapshot, got %d deliveries", len(snapshots))
	}

	snapshot := []models.ChecklistItem{{ID: "i1", Name: "Pay rent"}}
	hub.Broadcast("u1", 3, 2026, "general", func(f Filter) ([]models.ChecklistItem, error) {
		if f.OwnerID != "u1" {
			t.Errorf("fetch called with filter owner %q, want u1", f.OwnerID)
		}
		return snapshot, nil
	})

	if len(snapshots) != 2 || snapshots[1][0].ID != "i1" {
		t.Fatalf("Expected broadcast snapshot delivered, got %v", snapshots)
	}

	// A mutation in another owner's scope must not reach this subscriber.
	hub.Broadcast("u2", 3, 2026, "general", func(Filter) ([]models.ChecklistItem, error) {
		return []models.ChecklistItem{{ID: "other"}}, nil
	})
	if len(snapshots) != 2 {
		t.Errorf("Received a snapshot for a non-matching scope: %d deliveries", len(snapshots))
	}
}

func TestHubNoDeliveryAfterCancel(t *testing.T) {
	hub := NewHub()

	delivered := 0
	cancel, err := hub.Subscribe(Filter{OwnerID: "u1"}, func([]models.ChecklistItem) {
		delivered++
	}, emptyFetch)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	hub.Broadcast("u1", 3, 2026, "general", emptyFetch)
	if delivered != 2 {
		t.Fatalf("Expected initial + broadcast deliveries before cancel, got %d", delivered)
	}

	cancel()
	hub.Broadcast("u1", 3, 2026, "general", emptyFetch)
	if delivered != 2 {
		t.Errorf("Delivery after cancel: got %d deliveries", delivered)
	}
	if hub.Len() != 0 {
		t.Errorf("Expected 0 subscribers after cancel, got %d", hub.Len())
	}
}

func TestHubSubscribeFetchError(t *testing.T) {
	hub := NewHub()

	_, err := hub.Subscribe(Filter{OwnerID: "u1"}, func([]models.ChecklistItem) {
		t.Error("no delivery expected when the initial fetch fails")
	}, func(Filter) ([]models.ChecklistItem, error) {
		return nil, errFetch
	})
	if !errors.Is(err, errFetch) {
		t.Fatalf("Subscribe error = %v, want errFetch", err)
	}
	if hub.Len() != 0 {
		t.Errorf("Failed subscription left %d subscribers registered", hub.Len())
	}
}

func TestHubInitialSnapshotDeliveredFirst(t *testing.T) {
	hub := NewHub()

	var mu sync.Mutex
	var order []string

	registered := make(chan struct{})
	releaseInitial := make(chan struct{})

	subscribed := make(chan func())
	go func() {
		cancel, err := hub.Subscribe(Filter{OwnerID: "u1"}, func(items []models.ChecklistItem) {
			mu.Lock()
			order = append(order, items[0].ID)
			mu.Unlock()
		}, func(Filter) ([]models.ChecklistItem, error) {
			close(registered)
			<-releaseInitial
			return []models.ChecklistItem{{ID: "initial"}}, nil
		})
		if err != nil {
			t.Errorf("Subscribe failed: %v", err)
		}
		subscribed <- cancel
	}()

	// The subscriber is registered and its initial fetch is in flight;
	// a broadcast landing now must queue behind the initial delivery.
	<-registered
	broadcastDone := make(chan struct{})
	go func() {
		hub.Broadcast("u1", 3, 2026, "general", func(Filter) ([]models.ChecklistItem, error) {
			return []models.ChecklistItem{{ID: "fresh"}}, nil
		})
		close(broadcastDone)
	}()

	close(releaseInitial)
	cancel := <-subscribed

	select {
	case <-broadcastDone:
	case <-time.After(time.Second):
		t.Fatal("broadcast did not complete")
	}
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "initial" || order[1] != "fresh" {
		t.Fatalf("Delivery order = %v, want [initial fresh]", order)
	}
}

func TestHubCancelWaitsForInFlightDelivery(t *testing.T) {
	hub := NewHub()

	started := make(chan struct{})
	release := make(chan struct{})
	cancel, err := hub.Subscribe(Filter{OwnerID: "u1"}, func(items []models.ChecklistItem) {
		// The initial snapshot is nil; only broadcast deliveries block.
		if items != nil {
			close(started)
			<-release
		}
	}, emptyFetch)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	go hub.Broadcast("u1", 3, 2026, "general", func(Filter) ([]models.ChecklistItem, error) {
		return []models.ChecklistItem{{ID: "i1"}}, nil
	})
	<-started

	canceled := make(chan struct{})
	go func() {
		cancel()
		close(canceled)
	}()

	select {
	case <-canceled:
		t.Fatal("cancel returned while a delivery was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("cancel did not return after the delivery drained")
	}
}

func TestHubFetchErrorSkipsSubscriber(t *testing.T) {
	hub := NewHub()

	failingDeliveries := 0
	okDeliveries := 0
	cancelA, err := hub.Subscribe(Filter{OwnerID: "u1", Group: "a"}, func([]models.ChecklistItem) {
		failingDeliveries++
	}, emptyFetch)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancelA()
	cancelB, err := hub.Subscribe(Filter{OwnerID: "u1", Group: ""}, func([]models.ChecklistItem) {
		okDeliveries++
	}, emptyFetch)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancelB()

	hub.Broadcast("u1", 3, 2026, "a", func(f Filter) ([]models.ChecklistItem, error) {
		if f.Group == "a" {
			return nil, errFetch
		}
		return nil, nil
	})

	if failingDeliveries != 1 {
		t.Errorf("Subscriber with failing fetch: %d deliveries, want just the initial one", failingDeliveries)
	}
	if okDeliveries != 2 {
		t.Errorf("Healthy subscriber: %d deliveries, want initial + broadcast", okDeliveries)
	}
}

var errFetch = errors.New("fetch failed")

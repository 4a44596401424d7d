package session

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/lcouturier/earshot/internal/engine"
)

func TestAddListener_DeliversOneSnapshotSynchronously(t *testing.T) {
	s, _, _ := newTestSession(t)

	var snapshots []Status
	unsub := s.AddListener(func(ev Event) {
		if st, ok := ev.(Status); ok {
			snapshots = append(snapshots, st)
		}
	})
	defer unsub()

	// Delivered before AddListener returned, not on the next tick.
	if len(snapshots) != 1 {
		t.Fatalf("got %d snapshots on subscribe, want exactly 1", len(snapshots))
	}
	if snapshots[0].Loaded {
		t.Error("snapshot.Loaded = true with nothing loaded")
	}
}

func TestAddListener_SnapshotReflectsCurrentState(t *testing.T) {
	s, _, _ := newTestSession(t)
	_ = s.Load(context.Background(), episode("ep1"))
	s.Play()

	var snap Status
	unsub := s.AddListener(func(ev Event) {
		if st, ok := ev.(Status); ok && snap.EpisodeID == "" {
			snap = st
		}
	})
	defer unsub()

	if snap.EpisodeID != "ep1" || !snap.Playing {
		t.Errorf("snapshot = %+v, want playing ep1", snap)
	}
}

func TestListeners_RegistrationOrder(t *testing.T) {
	s, _, _ := newTestSession(t)
	_ = s.Load(context.Background(), episode("ep1"))

	var order []string
	add := func(name string) func() {
		return s.AddListener(func(ev Event) {
			if _, ok := ev.(Paused); ok {
				order = append(order, name)
			}
		})
	}
	defer add("first")()
	defer add("second")()
	defer add("third")()

	s.Play()
	s.Pause()

	want := []string{"first", "second", "third"}
	if len(order) != 3 {
		t.Fatalf("got %d deliveries, want 3", len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("delivery order = %v, want %v", order, want)
		}
	}
}

func TestListeners_PanicDoesNotStopFanOut(t *testing.T) {
	s, _, _ := newTestSession(t)
	_ = s.Load(context.Background(), episode("ep1"))

	defer s.AddListener(func(Event) { panic("listener bug") })()

	delivered := false
	defer s.AddListener(func(ev Event) {
		if _, ok := ev.(Paused); ok {
			delivered = true
		}
	})()

	s.Play()
	s.Pause()

	if !delivered {
		t.Error("second listener starved by a panicking first listener")
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	s, _, _ := newTestSession(t)
	_ = s.Load(context.Background(), episode("ep1"))

	calls := 0
	unsub := s.AddListener(func(ev Event) {
		if _, ok := ev.(Paused); ok {
			calls++
		}
	})

	unsub()
	unsub() // second call must be safe

	s.Play()
	s.Pause()

	if calls != 0 {
		t.Errorf("unsubscribed listener called %d times", calls)
	}
}

func TestUnsubscribe_OnlyRemovesOwnListener(t *testing.T) {
	mock := engine.NewMock()
	s := New(mock, newTestStore(t), nil, zap.NewNop())
	s.Setup()
	defer s.Close()
	_ = s.Load(context.Background(), episode("ep1"))

	aCalls, bCalls := 0, 0
	unsubA := s.AddListener(func(ev Event) {
		if _, ok := ev.(Paused); ok {
			aCalls++
		}
	})
	defer s.AddListener(func(ev Event) {
		if _, ok := ev.(Paused); ok {
			bCalls++
		}
	})()

	unsubA()
	s.Play()
	s.Pause()

	if aCalls != 0 {
		t.Errorf("removed listener called %d times", aCalls)
	}
	if bCalls != 1 {
		t.Errorf("surviving listener called %d times, want 1", bCalls)
	}
}

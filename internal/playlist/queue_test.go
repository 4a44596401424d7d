package playlist

import (
	"testing"

	"github.com/lcouturier/earshot/internal/podcast"
)

func episodes(ids ...string) []podcast.Episode {
	eps := make([]podcast.Episode, len(ids))
	for i, id := range ids {
		eps[i] = podcast.Episode{ID: id}
	}
	return eps
}

func TestNewEpisodeQueue_Empty(t *testing.T) {
	q := NewEpisodeQueue()

	if !q.IsEmpty() {
		t.Error("IsEmpty() = false for new queue")
	}
	if q.Current() != nil {
		t.Error("Current() != nil for new queue")
	}
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
}

func TestReplace_SetsCursor(t *testing.T) {
	q := NewEpisodeQueue()
	q.Replace(episodes("a", "b", "c"), 1)

	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
	cur := q.Current()
	if cur == nil || cur.ID != "b" {
		t.Errorf("Current() = %v, want b", cur)
	}
}

func TestReplace_OutOfRangeIndexClears(t *testing.T) {
	q := NewEpisodeQueue()
	q.Replace(episodes("a", "b"), 5)

	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
}

func TestNext_FromNoCursorStartsAtFirst(t *testing.T) {
	q := NewEpisodeQueue()
	q.Replace(episodes("a", "b"), -1)

	if !q.HasNext() {
		t.Fatal("HasNext() = false with no cursor and a non-empty queue")
	}
	ep, ok := q.Next()
	if !ok || ep.ID != "a" {
		t.Errorf("Next() = %v, %v; want a, true", ep, ok)
	}
}

func TestNext_EmptyQueueFails(t *testing.T) {
	q := NewEpisodeQueue()

	if q.HasNext() {
		t.Error("HasNext() = true on empty queue")
	}
	if ep, ok := q.Next(); ok || ep != nil {
		t.Errorf("Next() = %v, %v; want nil, false", ep, ok)
	}
}

func TestNext_AdvancesUntilEnd(t *testing.T) {
	q := NewEpisodeQueue()
	q.Replace(episodes("a", "b"), 0)

	ep, ok := q.Next()
	if !ok || ep.ID != "b" {
		t.Fatalf("Next() = %v, %v; want b, true", ep, ok)
	}

	// At the last index: failure, cursor untouched, no wraparound.
	ep, ok = q.Next()
	if ok || ep != nil {
		t.Errorf("Next() at end = %v, %v; want nil, false", ep, ok)
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d after failed Next, want 1", q.CurrentIndex())
	}
}

func TestPrevious_MovesBackUntilStart(t *testing.T) {
	q := NewEpisodeQueue()
	q.Replace(episodes("a", "b"), 1)

	ep, ok := q.Previous()
	if !ok || ep.ID != "a" {
		t.Fatalf("Previous() = %v, %v; want a, true", ep, ok)
	}

	ep, ok = q.Previous()
	if ok || ep != nil {
		t.Errorf("Previous() at start = %v, %v; want nil, false", ep, ok)
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d after failed Previous, want 0", q.CurrentIndex())
	}
}

func TestJumpTo_Bounds(t *testing.T) {
	q := NewEpisodeQueue()
	q.Replace(episodes("a", "b"), 0)

	if ep := q.JumpTo(1); ep == nil || ep.ID != "b" {
		t.Errorf("JumpTo(1) = %v, want b", ep)
	}
	if ep := q.JumpTo(2); ep != nil {
		t.Errorf("JumpTo(2) = %v, want nil", ep)
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d after failed JumpTo, want 1", q.CurrentIndex())
	}
}

func TestEpisodes_ReturnsCopy(t *testing.T) {
	q := NewEpisodeQueue()
	q.Replace(episodes("a", "b"), 0)

	out := q.Episodes()
	out[0].ID = "mutated"

	if cur := q.Current(); cur.ID != "a" {
		t.Errorf("Current() = %v after mutating the copy, want a", cur)
	}
}

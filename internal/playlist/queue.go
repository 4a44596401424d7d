// Package playlist holds the ordered episode list used by skip navigation.
package playlist

import "github.com/lcouturier/earshot/internal/podcast"

// EpisodeQueue is an ordered list of episodes with a cursor.
// The cursor is independent of which episode is actually loaded.
type EpisodeQueue struct {
	episodes     []podcast.Episode
	currentIndex int // -1 if no current episode
}

// NewEpisodeQueue creates a new empty queue.
func NewEpisodeQueue() *EpisodeQueue {
	return &EpisodeQueue{currentIndex: -1}
}

// Replace swaps the queue contents and positions the cursor at index, or -1
// when index is out of range.
func (q *EpisodeQueue) Replace(episodes []podcast.Episode, index int) {
	q.episodes = make([]podcast.Episode, len(episodes))
	copy(q.episodes, episodes)
	if index < 0 || index >= len(q.episodes) {
		index = -1
	}
	q.currentIndex = index
}

// Current returns the episode under the cursor, or nil if none.
func (q *EpisodeQueue) Current() *podcast.Episode {
	if q.currentIndex < 0 || q.currentIndex >= len(q.episodes) {
		return nil
	}
	ep := q.episodes[q.currentIndex]
	return &ep
}

// CurrentIndex returns the cursor position (-1 if none).
func (q *EpisodeQueue) CurrentIndex() int {
	return q.currentIndex
}

// Next advances the cursor and returns the episode there; from the
// no-cursor state it lands on the first episode.
// At the last index it returns (nil, false) and leaves the cursor untouched.
func (q *EpisodeQueue) Next() (*podcast.Episode, bool) {
	if !q.HasNext() {
		return nil, false
	}
	q.currentIndex++
	return q.Current(), true
}

// Previous moves the cursor back and returns the episode there.
// At the first index it returns (nil, false) and leaves the cursor untouched.
func (q *EpisodeQueue) Previous() (*podcast.Episode, bool) {
	if !q.HasPrevious() {
		return nil, false
	}
	q.currentIndex--
	return q.Current(), true
}

// JumpTo sets the cursor to the given index.
// Returns nil if the index is out of range; the cursor is left untouched.
func (q *EpisodeQueue) JumpTo(index int) *podcast.Episode {
	if index < 0 || index >= len(q.episodes) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// HasNext returns true if there is an episode after the cursor.
func (q *EpisodeQueue) HasNext() bool {
	return q.currentIndex < len(q.episodes)-1
}

// HasPrevious returns true if there is an episode before the cursor.
func (q *EpisodeQueue) HasPrevious() bool {
	return q.currentIndex > 0
}

// Len returns the number of episodes in the queue.
func (q *EpisodeQueue) Len() int {
	return len(q.episodes)
}

// IsEmpty returns true if the queue has no episodes.
func (q *EpisodeQueue) IsEmpty() bool {
	return len(q.episodes) == 0
}

// Episodes returns a copy of the queue contents.
func (q *EpisodeQueue) Episodes() []podcast.Episode {
	out := make([]podcast.Episode, len(q.episodes))
	copy(out, q.episodes)
	return out
}

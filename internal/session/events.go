package session

import (
	"time"

	"github.com/lcouturier/earshot/internal/podcast"
)

// Event is the closed set of notifications fanned out to listeners.
// Every state-changing operation ends by delivering one or more events to
// all registered listeners, synchronously, in registration order.
type Event interface {
	isEvent()
}

// Status is a snapshot of the transport. It is the dominant event: emitted
// after every operation and on every progress tick while playing.
type Status struct {
	EpisodeID string // "" when nothing is loaded
	Position  time.Duration
	Duration  time.Duration
	Playing   bool
	Buffering bool
	Loaded    bool
}

// Loaded is emitted once a new episode is ready, with its resolved duration.
type Loaded struct {
	Episode  podcast.Episode
	Duration time.Duration
}

// Paused is emitted on an explicit pause.
type Paused struct {
	EpisodeID string
}

// Finished is emitted at natural end of an episode, or when a relative seek
// lands close enough to the end to be treated as one.
type Finished struct {
	EpisodeID string
}

// Unloaded is emitted when the current episode is cleared.
type Unloaded struct{}

// Error carries a playback error message for UI display.
type Error struct {
	Operation string // e.g. "load", "seek"
	Message   string
}

// RemoteNext is the raw skip-forward signal from the OS remote-control
// surface, forwarded for navigation purposes.
type RemoteNext struct{}

// RemotePrevious is the raw skip-back signal from the OS remote-control
// surface, forwarded for navigation purposes.
type RemotePrevious struct{}

// NotificationTap is emitted when the user activates the playback
// notification.
type NotificationTap struct {
	EpisodeID string
}

func (Status) isEvent()          {}
func (Loaded) isEvent()          {}
func (Paused) isEvent()          {}
func (Finished) isEvent()        {}
func (Unloaded) isEvent()        {}
func (Error) isEvent()           {}
func (RemoteNext) isEvent()      {}
func (RemotePrevious) isEvent()  {}
func (NotificationTap) isEvent() {}

// Package engine wraps the audio output layer behind a small transport
// interface: load a source, start/stop the transport, read and move the
// position.
package engine

import "time"

// Interface defines the engine contract for dependency injection and testing.
type Interface interface {
	// Load decodes the source (local path or http(s) URL) and parks the
	// transport paused at position zero.
	Load(source string) error
	Play()
	Pause()
	Stop()
	State() State
	Position() time.Duration
	Duration() time.Duration
	SeekTo(pos time.Duration) error
	// FinishedChan signals natural end of the loaded track.
	FinishedChan() <-chan struct{}
	Close() error
}

// Verify implementations at compile time.
var (
	_ Interface = (*Engine)(nil)
	_ Interface = (*Mock)(nil)
)

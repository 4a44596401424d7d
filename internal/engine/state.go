package engine

// State represents the engine transport state.
//
// Valid transitions:
//   - Idle    → Ready   (via Load)
//   - Ready   → Playing (via Play)
//   - Playing → Ready   (via Pause, or track finish)
//   - any     → Idle    (via Stop)
//
// Load on a non-idle engine stops the current track first; there is no
// queueing inside the engine.
type State int

const (
	Idle State = iota
	Ready
	Playing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Loaded returns true if a track is loaded (Ready or Playing).
func (s State) Loaded() bool {
	return s == Ready || s == Playing
}

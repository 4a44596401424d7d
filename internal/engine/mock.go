package engine

import (
	"time"
)

// Mock is a test double for Engine.
type Mock struct {
	state      State
	position   time.Duration
	duration   time.Duration
	loadErr    error
	seekErr    error
	loadCalls  []string
	playCalls  int
	pauseCalls int
	stopCalls  int
	seekCalls  []time.Duration
	finishedCh chan struct{}
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{
		state:      Idle,
		finishedCh: make(chan struct{}, 1),
	}
}

func (m *Mock) Load(source string) error {
	m.loadCalls = append(m.loadCalls, source)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.state = Ready
	m.position = 0
	return nil
}

func (m *Mock) Play() {
	m.playCalls++
	if m.state == Ready {
		m.state = Playing
	}
}

func (m *Mock) Pause() {
	m.pauseCalls++
	if m.state == Playing {
		m.state = Ready
	}
}

func (m *Mock) Stop() {
	m.stopCalls++
	m.state = Idle
	m.position = 0
	m.duration = 0
}

func (m *Mock) State() State { return m.state }

func (m *Mock) Position() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) SeekTo(pos time.Duration) error {
	m.seekCalls = append(m.seekCalls, pos)
	if m.seekErr != nil {
		return m.seekErr
	}
	pos = max(pos, 0)
	if m.duration > 0 {
		pos = min(pos, m.duration)
	}
	m.position = pos
	return nil
}

func (m *Mock) FinishedChan() <-chan struct{} { return m.finishedCh }

func (m *Mock) Close() error {
	m.Stop()
	return nil
}

// Test helpers

func (m *Mock) SetState(s State) { m.state = s }

func (m *Mock) SetPosition(d time.Duration) { m.position = d }

func (m *Mock) SetDuration(d time.Duration) { m.duration = d }

func (m *Mock) SetLoadError(err error) { m.loadErr = err }

func (m *Mock) SetSeekError(err error) { m.seekErr = err }

func (m *Mock) LoadCalls() []string { return m.loadCalls }

func (m *Mock) SeekCalls() []time.Duration { return m.seekCalls }

func (m *Mock) StopCalls() int { return m.stopCalls }

func (m *Mock) PauseCalls() int { return m.pauseCalls }

func (m *Mock) PlayCalls() int { return m.playCalls }

// SimulateFinished signals natural end of the loaded track.
func (m *Mock) SimulateFinished() {
	m.state = Ready
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}

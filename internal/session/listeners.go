package session

import (
	"go.uber.org/zap"
)

// Listener receives session events. Listeners run synchronously on the
// goroutine that triggered the event and must not call back into the
// session.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// AddListener registers a listener and immediately delivers one Status
// snapshot so new subscribers do not wait for the next tick.
// The returned function unsubscribes; calling it more than once is safe.
func (s *Session) AddListener(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	s.invoke(fn, s.statusLocked())

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// notifyLocked delivers events to every listener in registration order.
// A panicking listener is logged and never prevents delivery to the rest.
func (s *Session) notifyLocked(events ...Event) {
	for _, ev := range events {
		for _, e := range s.listeners {
			s.invoke(e.fn, ev)
		}
	}
}

func (s *Session) invoke(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("listener panicked", zap.Any("event", ev), zap.Any("panic", r))
		}
	}()
	fn(ev)
}

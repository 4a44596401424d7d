package session

import (
	"context"

	"go.uber.org/zap"
)

// Remote-control handlers, wired to the OS media-control surface
// (hardware keys, the playback notification). Each maps to the matching
// session operation; RemotePlay carries the one piece of policy in the
// system.

// RemotePlay honors a remote "resume" signal only when the last pause was
// not user-initiated and an episode is loaded. A stray hardware or
// notification play press must not override a deliberate pause (e.g. after
// an interrupting phone call ends).
func (s *Session) RemotePlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	if s.explicitPause {
		s.log.Debug("remote play ignored after explicit pause",
			zap.String("episode", s.current.ID))
		return
	}
	s.playLocked()
}

// RemotePause maps a remote pause signal to Pause.
func (s *Session) RemotePause() {
	s.Pause()
}

// RemoteStop maps a remote stop signal to StopAll.
func (s *Session) RemoteStop() {
	s.StopAll()
}

// RemoteSeek maps a remote absolute-seek signal to SeekTo.
func (s *Session) RemoteSeek(pos int64) error {
	return s.SeekTo(millisToDuration(pos))
}

// RemoteNext forwards the raw signal to listeners and skips forward.
func (s *Session) RemoteNext(ctx context.Context) error {
	s.mu.Lock()
	s.notifyLocked(RemoteNext{})
	s.mu.Unlock()
	return s.SkipToNext(ctx)
}

// RemotePrevious forwards the raw signal to listeners and skips back.
func (s *Session) RemotePrevious(ctx context.Context) error {
	s.mu.Lock()
	s.notifyLocked(RemotePrevious{})
	s.mu.Unlock()
	return s.SkipToPrevious(ctx)
}

// NotifyNotificationTap forwards a notification interaction to listeners.
// The native layer emits this directly; there is no polling.
func (s *Session) NotifyNotificationTap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := ""
	if s.current != nil {
		id = s.current.ID
	}
	s.notifyLocked(NotificationTap{EpisodeID: id})
}

// Package session coordinates playback: it is the single authoritative
// in-process handle to "what is playing", translating UI intent into engine
// commands and engine events into listener-observable state, while keeping
// playback position durable across loads and restarts.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lcouturier/earshot/internal/engine"
	"github.com/lcouturier/earshot/internal/playlist"
	"github.com/lcouturier/earshot/internal/podcast"
	"github.com/lcouturier/earshot/internal/remote"
	"github.com/lcouturier/earshot/internal/store"
)

var (
	// ErrNoAudioSource is returned by Load when the episode has neither a
	// local path nor a remote URL.
	ErrNoAudioSource = errors.New("episode has no audio source")
	// ErrNoNextEpisode is returned by SkipToNext at the end of the queue.
	ErrNoNextEpisode = errors.New("no next episode")
	// ErrNoPreviousEpisode is returned by SkipToPrevious at the start of the
	// queue.
	ErrNoPreviousEpisode = errors.New("no previous episode")
)

const (
	// finishThreshold: a relative seek landing this close to the end is
	// treated as natural end of the episode.
	finishThreshold = 1500 * time.Millisecond
	// seekSettleDelay lets the engine settle after a load before the
	// initial-position seek.
	seekSettleDelay = 100 * time.Millisecond
	// defaultProgressInterval is how often Status ticks are emitted while
	// playing.
	defaultProgressInterval = time.Second
	// remoteSyncTimeout bounds the fire-and-forget progress upserts.
	remoteSyncTimeout = 10 * time.Second
)

// Session coordinates one engine, one local store and one optional sync
// client. Build exactly one per running app.
//
// Every operation is serialized by an internal mutex; concurrent Load calls
// cannot interleave engine commands.
type Session struct {
	mu sync.Mutex

	engine engine.Interface
	cache  *store.Manager
	sync   *remote.Client // nil when sync is not configured
	queue  *playlist.EpisodeQueue
	log    *zap.Logger

	current       *podcast.Episode
	position      time.Duration
	duration      time.Duration
	playing       bool
	buffering     bool
	explicitPause bool

	listeners      []listenerEntry
	nextListenerID int

	progressInterval time.Duration

	ready      bool
	settingUp  bool
	done       chan struct{}
	loopClosed bool
}

// New creates a session. syncClient may be nil.
func New(eng engine.Interface, cache *store.Manager, syncClient *remote.Client, log *zap.Logger) *Session {
	return &Session{
		engine:           eng,
		cache:            cache,
		sync:             syncClient,
		queue:            playlist.NewEpisodeQueue(),
		log:              log,
		progressInterval: defaultProgressInterval,
		done:             make(chan struct{}),
	}
}

// SetProgressInterval overrides the Status tick interval. Call before Setup.
func (s *Session) SetProgressInterval(d time.Duration) {
	if d > 0 {
		s.progressInterval = d
	}
}

// Setup initializes the session. Idempotent; a call arriving while another
// Setup is in progress is a no-op, not a retry.
func (s *Session) Setup() {
	s.mu.Lock()
	if s.ready || s.settingUp {
		s.mu.Unlock()
		return
	}
	s.settingUp = true
	s.mu.Unlock()

	go s.loop()

	s.mu.Lock()
	s.settingUp = false
	s.ready = true
	s.mu.Unlock()
}

// Ready reports whether Setup has completed.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Load loads an episode, resolving its start position from the local cache
// and, failing that, the remote backend.
func (s *Session) Load(ctx context.Context, ep podcast.Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.resolveStartPosition(ctx, ep.ID)
	return s.loadLocked(ep, start)
}

// LoadAt loads an episode and seeks to an explicit start position.
func (s *Session) LoadAt(_ context.Context, ep podcast.Episode, startAt time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ep, startAt)
}

// loadLocked implements the load contract: persist the previous episode's
// position, reset the engine, load the new source, seek to the start
// position. Exactly one episode is current at a time; a load always
// supersedes the previous episode, there is no queueing of loads.
func (s *Session) loadLocked(ep podcast.Episode, startAt time.Duration) error {
	if !s.ready {
		s.log.Warn("load before setup, ignored", zap.String("episode", ep.ID))
		return nil
	}
	if !ep.HasSource() {
		return ErrNoAudioSource
	}

	s.persistCurrentLocked(false)

	s.current = &ep
	s.playing = false
	s.buffering = true
	// Loading is a deliberate user action; a pause latch from the previous
	// episode must not suppress resume signals for this one.
	s.explicitPause = false
	s.position = startAt
	s.duration = ep.Duration
	s.notifyLocked(s.statusLocked())

	if err := s.engine.Load(ep.Source()); err != nil {
		s.log.Error("engine load failed", zap.String("episode", ep.ID), zap.Error(err))
		s.current = nil
		s.buffering = false
		s.position = 0
		s.duration = 0
		s.notifyLocked(Error{Operation: "load", Message: err.Error()}, s.statusLocked())
		return err
	}

	if d := s.engine.Duration(); d > 0 {
		s.duration = d
	}

	if startAt > 0 {
		time.Sleep(seekSettleDelay)
		if err := s.engine.SeekTo(startAt); err != nil {
			s.log.Warn("initial seek failed", zap.String("episode", ep.ID), zap.Error(err))
			s.position = 0
		}
	}

	if err := s.cache.SetCurrentEpisode(ep.ID); err != nil {
		s.log.Debug("current episode not recorded", zap.Error(err))
	}

	s.buffering = false
	s.notifyLocked(Loaded{Episode: ep, Duration: s.duration}, s.statusLocked())
	return nil
}

// Play starts or resumes playback and clears the explicit-pause flag.
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playLocked()
}

func (s *Session) playLocked() {
	if !s.ready || s.current == nil {
		return
	}
	s.engine.Play()
	s.playing = true
	s.explicitPause = false
	s.notifyLocked(s.statusLocked())
}

// Pause pauses playback and records the pause as user-initiated, which
// suppresses remote resume signals until the next explicit Play.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || s.current == nil {
		return
	}
	s.engine.Pause()
	s.playing = false
	s.explicitPause = true
	s.notifyLocked(Paused{EpisodeID: s.current.ID}, s.statusLocked())
}

// SeekTo moves to an absolute position. Bounds are left to the engine.
func (s *Session) SeekTo(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || s.current == nil {
		return nil
	}
	if err := s.engine.SeekTo(pos); err != nil {
		s.log.Error("seek failed", zap.Duration("pos", pos), zap.Error(err))
		s.notifyLocked(Error{Operation: "seek", Message: err.Error()})
		return err
	}
	s.position = s.engine.Position()
	s.notifyLocked(s.statusLocked())
	return nil
}

// SeekBy moves by a relative offset, clamped to [0, duration]. An offset
// landing within 1.5s of the end is treated as natural end of the episode:
// a Finished event is emitted and the transport stops.
func (s *Session) SeekBy(offset time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || s.current == nil {
		return nil
	}

	pos := s.engine.Position()
	dur := s.engine.Duration()
	if dur <= 0 {
		dur = s.duration
	}

	newPos := pos + offset
	newPos = max(newPos, 0)
	// With an unknown duration there is nothing to clamp against and no end
	// to detect; let the engine bound the seek itself.
	if dur > 0 {
		newPos = min(newPos, dur)
		if newPos >= dur-finishThreshold {
			s.finishLocked()
			return nil
		}
	}

	if err := s.engine.SeekTo(newPos); err != nil {
		s.log.Error("seek failed", zap.Duration("pos", newPos), zap.Error(err))
		s.notifyLocked(Error{Operation: "seek", Message: err.Error()})
		return err
	}
	s.position = newPos
	s.notifyLocked(s.statusLocked())
	return nil
}

// SetQueue replaces the episode list used by skip navigation. The cursor is
// independent of what is currently loaded.
func (s *Session) SetQueue(episodes []podcast.Episode, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Replace(episodes, index)
}

// QueueIndex returns the skip cursor (-1 if none).
func (s *Session) QueueIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.CurrentIndex()
}

// QueueHasNext reports whether SkipToNext can succeed.
func (s *Session) QueueHasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.HasNext()
}

// QueueHasPrevious reports whether SkipToPrevious can succeed.
func (s *Session) QueueHasPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.HasPrevious()
}

// Current returns a copy of the loaded episode, or nil if none.
func (s *Session) Current() *podcast.Episode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	ep := *s.current
	return &ep
}

// SkipToNext moves to the next queued episode, loads it at its saved
// position and plays. At the last index it returns ErrNoNextEpisode and
// leaves the cursor unchanged.
func (s *Session) SkipToNext(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ep, ok := s.queue.Next()
	if !ok {
		return ErrNoNextEpisode
	}
	return s.loadAndPlayLocked(ctx, *ep)
}

// SkipToPrevious moves to the previous queued episode, loads it at its
// saved position and plays. At the first index it returns
// ErrNoPreviousEpisode and leaves the cursor unchanged.
func (s *Session) SkipToPrevious(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ep, ok := s.queue.Previous()
	if !ok {
		return ErrNoPreviousEpisode
	}
	return s.loadAndPlayLocked(ctx, *ep)
}

func (s *Session) loadAndPlayLocked(ctx context.Context, ep podcast.Episode) error {
	start := s.resolveStartPosition(ctx, ep.ID)
	if err := s.loadLocked(ep, start); err != nil {
		return err
	}
	s.playLocked()
	return nil
}

// ResumeLastPlayed reloads the episode that was current at the previous
// shutdown, paused at its saved position. A no-op when nothing was saved or
// the episode is no longer in the queue.
func (s *Session) ResumeLastPlayed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lp, err := s.cache.GetLastPlayed()
	if err != nil || lp == nil {
		return err
	}
	for i, ep := range s.queue.Episodes() {
		if ep.ID == lp.EpisodeID {
			s.queue.JumpTo(i)
			return s.loadLocked(ep, lp.Position)
		}
	}
	return nil
}

// Status returns a snapshot of the current state. Before Setup it is the
// not-loaded zero state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	if s.current == nil {
		return Status{}
	}
	if s.playing && !s.buffering {
		s.position = s.engine.Position()
	}
	return Status{
		EpisodeID: s.current.ID,
		Position:  s.position,
		Duration:  s.duration,
		Playing:   s.playing,
		Buffering: s.buffering,
		Loaded:    !s.buffering,
	}
}

// Unload stops the engine and clears the current episode and transport
// state. Saved positions stay in the cache.
func (s *Session) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloadLocked()
}

// StopAll is the best-effort variant of Unload used at teardown: engine
// errors are swallowed.
func (s *Session) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("engine stop panicked", zap.Any("panic", r))
		}
	}()
	s.unloadLocked()
}

func (s *Session) unloadLocked() {
	s.engine.Stop()
	s.current = nil
	s.playing = false
	s.buffering = false
	s.explicitPause = false
	s.position = 0
	s.duration = 0
	if err := s.cache.ClearCurrentEpisode(); err != nil {
		s.log.Debug("current episode not cleared", zap.Error(err))
	}
	s.notifyLocked(Unloaded{}, s.statusLocked())
}

// Close tears the session down: persists the current position, unloads,
// clears the listener set and marks the session not ready.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loopClosed {
		close(s.done)
		s.loopClosed = true
	}

	s.persistCurrentLocked(false)
	s.engine.Stop()
	s.current = nil
	s.playing = false
	s.buffering = false
	s.listeners = nil
	s.ready = false
	return s.engine.Close()
}

// persistCurrentLocked saves the current episode's engine position to the
// local cache and fires a best-effort remote upsert. All failures are
// swallowed: position durability is an enhancement, not a correctness
// requirement.
func (s *Session) persistCurrentLocked(finished bool) {
	if s.current == nil {
		return
	}
	id := s.current.ID

	pos := s.engine.Position()
	if finished {
		pos = s.duration
	}

	if err := s.cache.SaveSnapshot(id, pos, s.playing); err != nil {
		s.log.Debug("position not saved", zap.String("episode", id), zap.Error(err))
	}

	if s.sync.Enabled() {
		go func() {
			if !s.sync.Online() {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), remoteSyncTimeout)
			defer cancel()
			if err := s.sync.Upsert(ctx, id, pos, finished); err != nil {
				s.log.Debug("remote progress not synced", zap.String("episode", id), zap.Error(err))
			}
		}()
	}
}

// finishLocked handles natural (or seek-triggered) end of the current
// episode: park the transport at the end, persist a finished record, and
// notify.
func (s *Session) finishLocked() {
	if s.current == nil {
		return
	}
	s.engine.Pause()
	s.playing = false
	if d := s.engine.Duration(); d > 0 {
		s.duration = d
	}
	s.position = s.duration
	s.persistCurrentLocked(true)
	s.notifyLocked(Finished{EpisodeID: s.current.ID}, s.statusLocked())
}

// loop watches engine signals and emits progress ticks while playing.
func (s *Session) loop() {
	ticker := time.NewTicker(s.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.engine.FinishedChan():
			s.mu.Lock()
			s.finishLocked()
			s.mu.Unlock()
		case <-ticker.C:
			s.mu.Lock()
			if s.playing && s.current != nil {
				s.notifyLocked(s.statusLocked())
			}
			s.mu.Unlock()
		}
	}
}

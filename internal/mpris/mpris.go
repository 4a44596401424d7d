//go:build linux

package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/lcouturier/earshot/internal/session"
)

// Adapter exposes the session on the OS remote-control surface (MPRIS over
// D-Bus): hardware media keys and desktop players drive the session through
// it, and the Play path goes through the session's explicit-pause gate.
type Adapter struct {
	session *session.Session
	server  *server.Server
	done    chan struct{}
}

// New creates and starts a new MPRIS adapter.
func New(s *session.Session) (*Adapter, error) {
	a := &Adapter{
		session: s,
		done:    make(chan struct{}),
	}

	rootAdapter := &rootAdapter{session: s}
	playerAdapter := &playerAdapter{session: s}

	a.server = server.NewServer("earshot", rootAdapter, playerAdapter)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	session *session.Session
}

// Raise is the desktop equivalent of tapping the playback notification:
// there is no window to raise, so forward the interaction to listeners.
func (r *rootAdapter) Raise() error {
	r.session.NotifyNotificationTap()
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Earshot", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	session *session.Session
}

func (p *playerAdapter) Next() error {
	return p.session.RemoteNext(context.Background())
}

func (p *playerAdapter) Previous() error {
	return p.session.RemotePrevious(context.Background())
}

func (p *playerAdapter) Pause() error {
	p.session.RemotePause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	if p.session.Status().Playing {
		p.session.RemotePause()
	} else {
		// PlayPause is a deliberate user action, not a stray resume signal.
		p.session.Play()
	}
	return nil
}

func (p *playerAdapter) Stop() error {
	p.session.RemoteStop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.session.RemotePlay()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.session.SeekBy(time.Duration(offset) * time.Microsecond)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	// The session's remote-control surface speaks milliseconds.
	return p.session.RemoteSeek(session.DurationMillis(time.Duration(position) * time.Microsecond))
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	st := p.session.Status()
	switch {
	case st.Playing:
		return types.PlaybackStatusPlaying, nil
	case st.Loaded:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	ep := p.session.Current()
	if ep == nil {
		return types.Metadata{}, nil
	}

	st := p.session.Status()
	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(ep.ID)),
		Length:  types.Microseconds(st.Duration.Microseconds()),
		Title:   ep.Title,
		Artist:  []string{ep.FeedTitle},
		Album:   ep.FeedTitle,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume control not exposed via session
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.session.Status().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.session.QueueHasNext(), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.session.QueueHasPrevious(), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.session.Current() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

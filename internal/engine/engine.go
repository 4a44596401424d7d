package engine

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

var (
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

const downloadTimeout = 5 * time.Minute

// Engine plays MP3 audio through the default output device.
type Engine struct {
	state      State
	ctrl       *beep.Ctrl
	streamer   beep.StreamSeekCloser
	format     beep.Format
	tempFile   string // non-empty when the source was downloaded
	finishedCh chan struct{}
	httpClient *http.Client
}

// New creates an idle engine.
func New() *Engine {
	return &Engine{
		state:      Idle,
		finishedCh: make(chan struct{}, 1),
		httpClient: &http.Client{Timeout: downloadTimeout},
	}
}

// Load decodes the source and parks the transport paused at position zero.
// Remote sources are downloaded to a temp file first so the streamer stays
// seekable.
func (e *Engine) Load(source string) error {
	e.Stop()

	// Drain any stale finish signal from the previous track.
	select {
	case <-e.finishedCh:
	default:
	}

	f, temp, err := e.openSource(source)
	if err != nil {
		return err
	}

	streamer, format, err := decodeMP3(f)
	if err != nil {
		f.Close()
		e.removeTemp(temp)
		return fmt.Errorf("decode %s: %w", source, err)
	}

	if !speakerInitialized {
		speakerSampleRate = format.SampleRate
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			e.removeTemp(temp)
			return fmt.Errorf("init speaker: %w", err)
		}
		speakerInitialized = true
	}

	e.streamer = streamer
	e.format = format
	e.tempFile = temp

	var playStreamer beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		playStreamer = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}
	e.ctrl = &beep.Ctrl{Streamer: playStreamer, Paused: true}
	e.state = Ready

	speaker.Play(beep.Seq(e.ctrl, beep.Callback(func() {
		select {
		case e.finishedCh <- struct{}{}:
		default:
		}
	})))

	return nil
}

// Play resumes the transport.
func (e *Engine) Play() {
	if e.ctrl == nil || e.state != Ready {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	e.state = Playing
}

// Pause pauses the transport, keeping the track loaded.
func (e *Engine) Pause() {
	if e.ctrl == nil || e.state != Playing {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	e.state = Ready
}

// Stop unloads the current track and releases its resources.
func (e *Engine) Stop() {
	if e.state == Idle {
		return
	}

	speaker.Clear()

	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	e.removeTemp(e.tempFile)
	e.tempFile = ""
	e.ctrl = nil
	e.state = Idle
}

// State returns the current transport state.
func (e *Engine) State() State { return e.state }

// Position returns the current playback position.
func (e *Engine) Position() time.Duration {
	if e.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := e.format.SampleRate.D(e.streamer.Position())
	speaker.Unlock()
	return pos
}

// Duration returns the loaded track's duration, 0 when idle.
func (e *Engine) Duration() time.Duration {
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len())
}

// SeekTo moves the transport to an absolute position, clamped to the track.
func (e *Engine) SeekTo(pos time.Duration) error {
	if e.streamer == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()

	n := e.format.SampleRate.N(pos)
	n = max(n, 0)
	n = min(n, e.streamer.Len())
	return e.streamer.Seek(n)
}

// FinishedChan signals natural end of the loaded track.
func (e *Engine) FinishedChan() <-chan struct{} {
	return e.finishedCh
}

// Close stops playback and releases the engine.
func (e *Engine) Close() error {
	e.Stop()
	return nil
}

// openSource opens a local file directly, or downloads a remote URL to a
// temp file. Returns the open file and the temp path (empty for local).
func (e *Engine) openSource(source string) (*os.File, string, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", source, err)
		}
		return f, "", nil
	}

	resp, err := e.httpClient.Get(source)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
	}

	tmp, err := os.CreateTemp("", "earshot-*.mp3")
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, "", fmt.Errorf("download %s: %w", source, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, "", err
	}
	return tmp, tmp.Name(), nil
}

func (e *Engine) removeTemp(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

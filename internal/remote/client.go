// Package remote provides a client for the progress-sync backend, used to
// resume playback across devices. All calls are best-effort: the session
// treats every failure here as "no remote position".
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when no progress record exists for the episode.
var ErrNotFound = errors.New("progress not found")

const (
	requestTimeout = 10 * time.Second
	probeTimeout   = 2 * time.Second
)

// Progress is one row of the backend's per-(user, episode) progress table.
type Progress struct {
	UserID    string        `json:"user_id"`
	EpisodeID string        `json:"episode_id"`
	Position  time.Duration `json:"-"`
	Finished  bool          `json:"finished"`
	DeviceID  string        `json:"device_id,omitempty"`
}

// progressWire carries position as seconds on the wire.
type progressWire struct {
	UserID          string  `json:"user_id"`
	EpisodeID       string  `json:"episode_id"`
	PositionSeconds float64 `json:"playback_position"`
	Finished        bool    `json:"finished"`
	DeviceID        string  `json:"device_id,omitempty"`
}

// Prober reports whether the network is reachable. Injectable for tests.
type Prober interface {
	Online() bool
}

// Client talks to the progress-sync backend.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	deviceID   string
	httpClient *http.Client
	prober     Prober
}

// New creates a progress-sync client. An empty baseURL or userID yields a
// disabled client; callers check Enabled before resolving remotely.
func New(baseURL, apiKey, userID, deviceID string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userID:     userID,
		deviceID:   deviceID,
		httpClient: &http.Client{Timeout: requestTimeout},
		prober:     &dialProber{target: baseURL},
	}
}

// SetProber replaces the reachability prober.
func (c *Client) SetProber(p Prober) {
	c.prober = p
}

// Enabled returns true when a backend and an authenticated user are configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != "" && c.userID != ""
}

// Online returns true when the backend host is reachable.
func (c *Client) Online() bool {
	return c.prober.Online()
}

// Get fetches the progress record for an episode.
// Returns ErrNotFound when the backend has no row for (user, episode).
func (c *Client) Get(ctx context.Context, episodeID string) (*Progress, error) {
	if !c.Enabled() {
		return nil, ErrNotFound
	}

	reqURL := fmt.Sprintf("%s/progress?user_id=%s&episode_id=%s",
		c.baseURL, url.QueryEscape(c.userID), url.QueryEscape(episodeID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get progress: unexpected status %s", resp.Status)
	}

	var wire progressWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}

	return &Progress{
		UserID:    wire.UserID,
		EpisodeID: wire.EpisodeID,
		Position:  time.Duration(wire.PositionSeconds * float64(time.Second)),
		Finished:  wire.Finished,
		DeviceID:  wire.DeviceID,
	}, nil
}

// Upsert writes the progress record for an episode, replacing any existing
// row for the same (user, episode) pair.
func (c *Client) Upsert(ctx context.Context, episodeID string, pos time.Duration, finished bool) error {
	if !c.Enabled() {
		return nil
	}

	wire := progressWire{
		UserID:          c.userID,
		EpisodeID:       episodeID,
		PositionSeconds: pos.Seconds(),
		Finished:        finished,
		DeviceID:        c.deviceID,
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/progress", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("upsert progress: unexpected status %s", resp.Status)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// dialProber checks reachability with a short TCP dial to the backend host.
type dialProber struct {
	target string
}

func (p *dialProber) Online() bool {
	u, err := url.Parse(p.target)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	conn, err := net.DialTimeout("tcp", host, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Disabled(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		userID  string
	}{
		{"no backend", "", "user-1"},
		{"no user", "https://sync.example.com", ""},
		{"nothing", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.baseURL, "key", tt.userID, "dev-1")
			if c.Enabled() {
				t.Error("Enabled() = true, want false")
			}
			if _, err := c.Get(context.Background(), "ep1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
			if err := c.Upsert(context.Background(), "ep1", time.Minute, false); err != nil {
				t.Errorf("Upsert() error = %v, want silent nil", err)
			}
		})
	}
}

func TestClient_NilEnabled(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Error("nil client Enabled() = true")
	}
}

func TestGet_ParsesProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q, want Bearer key", got)
		}
		q := r.URL.Query()
		if q.Get("user_id") != "user-1" || q.Get("episode_id") != "ep1" {
			t.Errorf("query = %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id":           "user-1",
			"episode_id":        "ep1",
			"playback_position": 321.5,
			"finished":          false,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "user-1", "dev-1")

	prog, err := c.Get(context.Background(), "ep1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if prog.Position != 321500*time.Millisecond {
		t.Errorf("Position = %v, want 5m21.5s", prog.Position)
	}
	if prog.Finished {
		t.Error("Finished = true, want false")
	}
}

func TestGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "user-1", "dev-1")

	_, err := c.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestGet_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "user-1", "dev-1")

	_, err := c.Get(context.Background(), "ep1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want a non-NotFound error", err)
	}
}

func TestUpsert_SendsRecord(t *testing.T) {
	var got progressWire
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "user-1", "dev-1")

	err := c.Upsert(context.Background(), "ep1", 90*time.Second, true)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.UserID != "user-1" || got.EpisodeID != "ep1" {
		t.Errorf("key = (%q, %q), want (user-1, ep1)", got.UserID, got.EpisodeID)
	}
	if got.PositionSeconds != 90 {
		t.Errorf("playback_position = %v, want 90", got.PositionSeconds)
	}
	if !got.Finished {
		t.Error("finished = false, want true")
	}
	if got.DeviceID != "dev-1" {
		t.Errorf("device_id = %q, want dev-1", got.DeviceID)
	}
}

func TestUpsert_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "user-1", "dev-1")

	if err := c.Upsert(context.Background(), "ep1", time.Minute, false); err == nil {
		t.Error("Upsert() error = nil, want error on 403")
	}
}

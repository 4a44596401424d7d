package store

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lcouturier/earshot/internal/db"
)

// Single-value keys.
const (
	keyCurrentEpisode    = "current_episode_id"
	keyLastPlayedID      = "last_played_id"
	keyLastPlayedPos     = "last_played_position_seconds"
	keyLastPlayedPlaying = "last_played_playing"
	keyPushToken         = "push_token"
	keyDeviceID          = "device_id"
)

// LastPlayed is a restart snapshot of what was playing.
type LastPlayed struct {
	EpisodeID string
	Position  time.Duration
	Playing   bool
}

// SetCurrentEpisode records which episode is currently loaded.
func (m *Manager) SetCurrentEpisode(episodeID string) error {
	return m.set(keyCurrentEpisode, episodeID)
}

// CurrentEpisode returns the currently loaded episode id, "" if none.
func (m *Manager) CurrentEpisode() (string, error) {
	v, _, err := m.get(keyCurrentEpisode)
	return v, err
}

// ClearCurrentEpisode removes the current-episode marker.
func (m *Manager) ClearCurrentEpisode() error {
	_, err := m.db.Exec(`DELETE FROM kv WHERE key = ?`, keyCurrentEpisode)
	return err
}

// SaveSnapshot persists an episode position together with the last-played
// keys in one transaction, so a crash cannot leave them disagreeing.
func (m *Manager) SaveSnapshot(episodeID string, pos time.Duration, playing bool) error {
	now := time.Now().UnixMilli()
	return db.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO positions (episode_id, position_seconds, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(episode_id) DO UPDATE SET
				position_seconds = excluded.position_seconds,
				updated_at = excluded.updated_at
		`, episodeID, pos.Seconds(), now); err != nil {
			return err
		}
		for key, value := range map[string]string{
			keyLastPlayedID:      episodeID,
			keyLastPlayedPos:     strconv.FormatFloat(pos.Seconds(), 'f', -1, 64),
			keyLastPlayedPlaying: strconv.FormatBool(playing),
		} {
			if _, err := tx.Exec(`
				INSERT INTO kv (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetLastPlayed returns the restart snapshot, or nil if none was saved.
func (m *Manager) GetLastPlayed() (*LastPlayed, error) {
	id, ok, err := m.get(keyLastPlayedID)
	if err != nil || !ok {
		return nil, err
	}

	lp := &LastPlayed{EpisodeID: id}

	if v, ok, err := m.get(keyLastPlayedPos); err == nil && ok {
		if secs, perr := strconv.ParseFloat(v, 64); perr == nil {
			lp.Position = time.Duration(secs * float64(time.Second))
		}
	}
	if v, ok, err := m.get(keyLastPlayedPlaying); err == nil && ok {
		lp.Playing, _ = strconv.ParseBool(v)
	}
	return lp, nil
}

// SetPushToken stores the push-notification token.
func (m *Manager) SetPushToken(token string) error {
	return m.set(keyPushToken, token)
}

// PushToken returns the stored push-notification token, "" if none.
func (m *Manager) PushToken() (string, error) {
	v, _, err := m.get(keyPushToken)
	return v, err
}

// DeviceID returns the stable device identifier, generating and persisting
// one on first use.
func (m *Manager) DeviceID() (string, error) {
	if v, ok, err := m.get(keyDeviceID); err != nil {
		return "", err
	} else if ok {
		return v, nil
	}

	id := uuid.NewString()
	if err := m.set(keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Manager) set(key, value string) error {
	_, err := m.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (m *Manager) get(key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

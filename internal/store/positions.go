package store

import (
	"database/sql"
	"time"
)

// Position is the last-known playback position for one episode.
// At most one record per episode id; last write wins.
type Position struct {
	EpisodeID string
	Position  time.Duration
	UpdatedAt time.Time
}

// SavePosition upserts the playback position for an episode.
// Stored as seconds; callers work in time.Duration.
func (m *Manager) SavePosition(episodeID string, pos time.Duration) error {
	_, err := m.db.Exec(`
		INSERT INTO positions (episode_id, position_seconds, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(episode_id) DO UPDATE SET
			position_seconds = excluded.position_seconds,
			updated_at = excluded.updated_at
	`, episodeID, pos.Seconds(), time.Now().UnixMilli())
	return err
}

// GetPosition returns the saved position for an episode, or nil if none.
func (m *Manager) GetPosition(episodeID string) (*Position, error) {
	var secs float64
	var updatedAt int64

	err := m.db.QueryRow(`
		SELECT position_seconds, updated_at FROM positions WHERE episode_id = ?
	`, episodeID).Scan(&secs, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil //nolint:nilnil // nil record means no saved position, not an error
	}
	if err != nil {
		return nil, err
	}

	return &Position{
		EpisodeID: episodeID,
		Position:  time.Duration(secs * float64(time.Second)),
		UpdatedAt: time.UnixMilli(updatedAt),
	}, nil
}

// DeletePosition removes the saved position for an episode.
func (m *Manager) DeletePosition(episodeID string) error {
	_, err := m.db.Exec(`DELETE FROM positions WHERE episode_id = ?`, episodeID)
	return err
}

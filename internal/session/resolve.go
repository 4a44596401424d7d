package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lcouturier/earshot/internal/remote"
)

// resolveStartPosition finds where an episode should resume: local cache
// first, then the remote backend — but only when sync is configured, the
// network is reachable and a user is authenticated. A remote record marked
// finished resumes from the start. All failures resolve to zero.
func (s *Session) resolveStartPosition(ctx context.Context, episodeID string) time.Duration {
	rec, err := s.cache.GetPosition(episodeID)
	if err != nil {
		s.log.Debug("local position not read", zap.String("episode", episodeID), zap.Error(err))
	}
	if rec != nil {
		return rec.Position
	}

	if !s.sync.Enabled() || !s.sync.Online() {
		return 0
	}

	prog, err := s.sync.Get(ctx, episodeID)
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			s.log.Debug("remote position not read", zap.String("episode", episodeID), zap.Error(err))
		}
		return 0
	}
	if prog.Finished {
		return 0
	}
	return prog.Position
}

package podcast

import "time"

// Episode describes one playable item: where its audio lives and what to
// show for it. A local file path, when present, takes precedence over the
// remote URL as the playback source.
type Episode struct {
	ID          string
	Title       string
	FeedTitle   string
	AudioURL    string
	LocalPath   string
	Duration    time.Duration // nominal, as declared by the feed; 0 if unknown
	PublishedAt time.Time
	Description string
}

// HasSource returns true if the episode has at least one audio source.
func (e Episode) HasSource() bool {
	return e.LocalPath != "" || e.AudioURL != ""
}

// Source returns the playback source, preferring the local file.
func (e Episode) Source() string {
	if e.LocalPath != "" {
		return e.LocalPath
	}
	return e.AudioURL
}

// Feed is a subscribed podcast feed and its fetched episodes.
type Feed struct {
	URL      string
	Title    string
	Episodes []Episode
}

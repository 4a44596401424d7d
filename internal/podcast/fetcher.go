// Package podcast provides the content layer: feed fetching and episode
// descriptors.
package podcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const (
	defaultCacheTTL     = 30 * time.Minute
	defaultFetchTimeout = 15 * time.Second
	cacheFileName       = "feed_cache.json"
)

// Fetcher retrieves podcast feeds and caches parsed episodes on disk so the
// app can list subscriptions without hitting the network on every start.
type Fetcher struct {
	mu        sync.RWMutex
	cachePath string
	cache     map[string]cachedFeed // key: feed URL
	cacheTTL  time.Duration
	parser    *gofeed.Parser
	client    *http.Client
	log       *zap.Logger
}

type cachedFeed struct {
	FetchedAt time.Time `json:"fetched_at"`
	Feed      Feed      `json:"feed"`
}

// NewFetcher creates a feed fetcher that persists its cache under dataDir.
func NewFetcher(dataDir string, ttl time.Duration, log *zap.Logger) *Fetcher {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	f := &Fetcher{
		cachePath: filepath.Join(dataDir, cacheFileName),
		cache:     make(map[string]cachedFeed),
		cacheTTL:  ttl,
		parser:    gofeed.NewParser(),
		client:    &http.Client{Timeout: defaultFetchTimeout},
		log:       log,
	}
	if err := f.loadCache(); err != nil {
		// A missing or corrupt cache file just means a cold start.
		f.log.Debug("feed cache not loaded", zap.Error(err))
	}
	return f
}

// Fetch returns the feed at url, from cache when fresh enough.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Feed, error) {
	f.mu.RLock()
	cached, ok := f.cache[url]
	f.mu.RUnlock()
	if ok && time.Since(cached.FetchedAt) < f.cacheTTL {
		feed := cached.Feed
		return &feed, nil
	}

	feed, err := f.fetchRemote(ctx, url)
	if err != nil {
		// Serve stale cache rather than nothing when the network fails.
		if ok {
			f.log.Warn("feed refresh failed, serving stale cache",
				zap.String("url", url), zap.Error(err))
			stale := cached.Feed
			return &stale, nil
		}
		return nil, err
	}

	f.mu.Lock()
	f.cache[url] = cachedFeed{FetchedAt: time.Now(), Feed: *feed}
	f.mu.Unlock()
	if err := f.saveCache(); err != nil {
		f.log.Debug("feed cache not saved", zap.Error(err))
	}
	return feed, nil
}

// Refresh fetches all given feed URLs, skipping ones that fail.
func (f *Fetcher) Refresh(ctx context.Context, urls []string) []Feed {
	feeds := make([]Feed, 0, len(urls))
	for _, url := range urls {
		feed, err := f.Fetch(ctx, url)
		if err != nil {
			f.log.Warn("feed fetch failed", zap.String("url", url), zap.Error(err))
			continue
		}
		feeds = append(feeds, *feed)
	}
	return feeds
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %s", resp.Status)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	feed := &Feed{
		URL:      url,
		Title:    parsed.Title,
		Episodes: make([]Episode, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		ep := itemToEpisode(item, parsed.Title)
		if ep.AudioURL == "" {
			continue // not a playable item
		}
		feed.Episodes = append(feed.Episodes, ep)
	}
	return feed, nil
}

func itemToEpisode(item *gofeed.Item, feedTitle string) Episode {
	ep := Episode{
		Title:       item.Title,
		FeedTitle:   feedTitle,
		Description: item.Description,
	}

	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "audio/") || enc.Type == "" {
			ep.AudioURL = enc.URL
			break
		}
	}

	ep.ID = item.GUID
	if ep.ID == "" {
		ep.ID = ep.AudioURL
	}

	if item.PublishedParsed != nil {
		ep.PublishedAt = *item.PublishedParsed
	}

	if item.ITunesExt != nil {
		ep.Duration = parseITunesDuration(item.ITunesExt.Duration)
	}

	return ep
}

// parseITunesDuration handles the three shapes seen in the wild:
// plain seconds, MM:SS, and HH:MM:SS.
func parseITunesDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) == 1 {
		secs, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

func (f *Fetcher) loadCache() error {
	data, err := os.ReadFile(f.cachePath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return json.Unmarshal(data, &f.cache)
}

func (f *Fetcher) saveCache() error {
	f.mu.RLock()
	data, err := json.Marshal(f.cache)
	f.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.cachePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.cachePath, data, 0o644)
}

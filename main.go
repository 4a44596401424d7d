package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/lcouturier/earshot/internal/config"
	"github.com/lcouturier/earshot/internal/engine"
	"github.com/lcouturier/earshot/internal/logging"
	"github.com/lcouturier/earshot/internal/mpris"
	"github.com/lcouturier/earshot/internal/podcast"
	"github.com/lcouturier/earshot/internal/remote"
	"github.com/lcouturier/earshot/internal/session"
	"github.com/lcouturier/earshot/internal/store"
)

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	cache    *store.Manager
	session  *session.Session
	fetcher  *podcast.Fetcher
	episodes []podcast.Episode
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, "earshot")
	}

	cache, err := store.OpenPath(filepath.Join(dataDir, "earshot.db"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var syncClient *remote.Client
	if cfg.HasSyncConfig() {
		deviceID, err := cache.DeviceID()
		if err != nil {
			log.Warn("device id unavailable, sync disabled", zap.Error(err))
		} else {
			syncClient = remote.New(cfg.Sync.URL, cfg.Sync.APIKey, cfg.Sync.UserID, deviceID)
		}
	}

	sess := session.New(engine.New(), cache, syncClient, log)
	sess.SetProgressInterval(cfg.ProgressInterval())
	sess.Setup()

	return &app{
		cfg:     cfg,
		log:     log,
		cache:   cache,
		session: sess,
		fetcher: podcast.NewFetcher(dataDir, cfg.FeedCacheTTL(), log),
	}, nil
}

func (a *app) refresh(ctx context.Context) {
	feeds := a.fetcher.Refresh(ctx, a.cfg.Feeds)

	// Keep locally added files; only feed entries are rebuilt.
	var eps []podcast.Episode
	for _, ep := range a.episodes {
		if ep.LocalPath != "" {
			eps = append(eps, ep)
		}
	}
	for _, f := range feeds {
		eps = append(eps, f.Episodes...)
	}
	a.episodes = eps

	a.session.SetQueue(a.episodes, a.findEpisode(a.currentID()))
}

// currentID returns the loaded episode's id, "" if none.
func (a *app) currentID() string {
	if cur := a.session.Current(); cur != nil {
		return cur.ID
	}
	return ""
}

// findEpisode returns the index of the episode with the given id, -1 if
// absent.
func (a *app) findEpisode(id string) int {
	if id == "" {
		return -1
	}
	for i, ep := range a.episodes {
		if ep.ID == id {
			return i
		}
	}
	return -1
}

func (a *app) list() {
	if len(a.episodes) == 0 {
		fmt.Println("no episodes; check the feeds list in config.toml")
		return
	}
	for i, ep := range a.episodes {
		published := ""
		if !ep.PublishedAt.IsZero() {
			published = humanize.Time(ep.PublishedAt)
		}
		fmt.Printf("%3d  %-50.50s  %-20.20s  %s\n", i, ep.Title, ep.FeedTitle, published)
	}
}

func (a *app) play(ctx context.Context, arg string) {
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 0 || idx >= len(a.episodes) {
		fmt.Println("usage: play <episode index>")
		return
	}
	a.session.SetQueue(a.episodes, idx)
	if err := a.session.Load(ctx, a.episodes[idx]); err != nil {
		fmt.Printf("load failed: %v\n", err)
		return
	}
	a.session.Play()
}

// playLocal plays an audio file from disk, reading missing descriptor
// fields from its tags.
func (a *app) playLocal(ctx context.Context, path string) {
	ep := podcast.Episode{ID: path, LocalPath: path}
	if err := podcast.FillFromFile(&ep); err != nil {
		a.log.Debug("local file tags not read", zap.String("path", path), zap.Error(err))
	}
	if ep.Title == "" {
		ep.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if idx := a.findEpisode(ep.ID); idx >= 0 {
		a.episodes[idx] = ep
	} else {
		a.episodes = append(a.episodes, ep)
	}
	a.session.SetQueue(a.episodes, a.findEpisode(ep.ID))

	if err := a.session.Load(ctx, ep); err != nil {
		fmt.Printf("load failed: %v\n", err)
		return
	}
	a.session.Play()
}

func (a *app) status() {
	st := a.session.Status()
	if !st.Loaded && !st.Buffering {
		fmt.Println("nothing loaded")
		return
	}
	state := "paused"
	switch {
	case st.Buffering:
		state = "buffering"
	case st.Playing:
		state = "playing"
	}
	fmt.Printf("%s  %s / %s  [%s]\n",
		state, fmtDuration(st.Position), fmtDuration(st.Duration), st.EpisodeID)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func (a *app) run() error {
	ctx := context.Background()
	a.refresh(ctx)

	if err := a.session.ResumeLastPlayed(ctx); err != nil {
		a.log.Warn("last-played episode not resumed", zap.Error(err))
	} else if st := a.session.Status(); st.Loaded {
		fmt.Printf("resumed %s at %s (paused)\n", st.EpisodeID, fmtDuration(st.Position))
	}

	mprisAdapter, err := mpris.New(a.session)
	if err != nil {
		a.log.Warn("mpris unavailable", zap.Error(err))
	} else {
		defer mprisAdapter.Close()
	}

	unsubscribe := a.session.AddListener(func(ev session.Event) {
		switch e := ev.(type) {
		case session.Finished:
			fmt.Printf("\nfinished: %s\n> ", e.EpisodeID)
		case session.Error:
			fmt.Printf("\nplayback error (%s): %s\n> ", e.Operation, e.Message)
		}
	})
	defer unsubscribe()

	seekStep := a.cfg.SeekStep()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}
		cmd, arg := fields[0], ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		switch cmd {
		case "list", "ls":
			a.list()
		case "refresh":
			a.refresh(ctx)
			a.list()
		case "play", "p":
			if arg == "" {
				a.session.Play()
			} else {
				a.play(ctx, arg)
			}
		case "local":
			if arg == "" {
				fmt.Println("usage: local <audio file path>")
			} else {
				a.playLocal(ctx, arg)
			}
		case "pause":
			a.session.Pause()
		case "next", "n":
			if err := a.session.SkipToNext(ctx); err != nil {
				fmt.Println(err)
			}
		case "prev":
			if err := a.session.SkipToPrevious(ctx); err != nil {
				fmt.Println(err)
			}
		case "fwd", "f":
			_ = a.session.SeekBy(seekStep)
		case "back", "b":
			_ = a.session.SeekBy(-seekStep)
		case "status", "st":
			a.status()
		case "stop":
			a.session.Unload()
		case "quit", "q":
			return nil
		default:
			fmt.Println("commands: list refresh play <n> local <file> pause next prev fwd back status stop quit")
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func main() {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.log.Sync() //nolint:errcheck // best-effort flush on exit
	defer a.cache.Close()
	defer a.session.Close()

	if err := a.run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

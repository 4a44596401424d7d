package podcast

import (
	"os"

	"github.com/dhowden/tag"
)

// FillFromFile fills missing descriptor fields from the local file's tags.
// Episodes downloaded out-of-band often arrive with no feed metadata.
func FillFromFile(ep *Episode) error {
	if ep.LocalPath == "" {
		return nil
	}

	f, err := os.Open(ep.LocalPath)
	if err != nil {
		return err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return err
	}

	if ep.Title == "" {
		ep.Title = meta.Title()
	}
	if ep.FeedTitle == "" {
		ep.FeedTitle = meta.Album()
	}
	return nil
}

// Package feed publishes the reconciled registry and the fetched video
// batch as the website's flat JSON data files.
package feed

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/observability"
)

const (
	stocksFile = "stocks.json"
	videosFile = "youtube_videos.json"
)

// Publisher writes the published feed files into the website data
// directory. Writes are atomic so the site never serves a half-written
// document.
type Publisher struct {
	dir    string
	logger *log.Logger
}

// NewPublisher creates a publisher targeting the given data directory.
func NewPublisher(dir string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{dir: dir, logger: logger}
}

// PublishStocks writes the registry feed.
func (p *Publisher) PublishStocks(entries []domain.StockEntry) error {
	if entries == nil {
		entries = []domain.StockEntry{}
	}
	if err := p.write(stocksFile, entries); err != nil {
		return err
	}
	observability.RecordFeedPublished()
	p.logger.Printf("[feed] published %d entries to %s", len(entries), filepath.Join(p.dir, stocksFile))
	return nil
}

// PublishVideos writes the video feed.
func (p *Publisher) PublishVideos(videos []domain.VideoRecord) error {
	if videos == nil {
		videos = []domain.VideoRecord{}
	}
	if err := p.write(videosFile, videos); err != nil {
		return err
	}
	observability.RecordFeedPublished()
	p.logger.Printf("[feed] published %d videos to %s", len(videos), filepath.Join(p.dir, videosFile))
	return nil
}

// write stores v as pretty-printed JSON under the data directory, via a
// temp file renamed into place.
func (p *Publisher) write(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", p.dir, err)
	}

	path := filepath.Join(p.dir, name)
	tmp, err := os.CreateTemp(p.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

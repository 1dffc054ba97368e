package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/extract"
	"influencer-stock-lab/internal/observability"
)

// maxBoughtFromTitle caps how many tickers a buying-flavored title may
// mark as bought. Titles name at most a couple of positions; anything
// past that is noise from the description.
const maxBoughtFromTitle = 2

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// Sources in priority order; the first one that returns a video
	// list for a channel wins.
	Sources []Source

	// Extractor maps text to tickers. Nil uses the default allow-list.
	Extractor *extract.Extractor

	Config ChannelConfig

	Logger *log.Logger

	// Now supplies the clock; tests override it.
	Now func() time.Time
}

// Fetcher pulls recent videos from every enabled channel and tags them
// with tickers.
type Fetcher struct {
	sources   []Source
	extractor *extract.Extractor
	config    ChannelConfig
	logger    *log.Logger
	now       func() time.Time
}

// NewFetcher creates a fetcher from the given options.
func NewFetcher(opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		sources:   opts.Sources,
		extractor: opts.Extractor,
		config:    opts.Config,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if f.extractor == nil {
		f.extractor = extract.New(nil)
	}
	if f.logger == nil {
		f.logger = log.Default()
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// FetchAll fetches recent videos from all enabled channels, newest
// first. A channel that fails is skipped with a warning; the run only
// fails when no source is configured at all.
func (f *Fetcher) FetchAll(ctx context.Context) ([]domain.VideoRecord, error) {
	if len(f.sources) == 0 {
		return nil, fmt.Errorf("ingest: no video sources configured")
	}

	channels := f.config.Enabled()
	if len(channels) == 0 {
		f.logger.Printf("[ingest] no enabled channels configured")
		return nil, nil
	}

	var all []domain.VideoRecord
	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		videos := f.fetchChannel(ctx, ch)
		observability.RecordVideosFetched(ch.Name, len(videos))
		f.logger.Printf("[ingest] %s: %d videos", ch.Name, len(videos))
		all = append(all, videos...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt > all[j].PublishedAt
	})
	return all, nil
}

// fetchChannel lists one channel's videos through the source chain and
// builds tagged records.
func (f *Fetcher) fetchChannel(ctx context.Context, ch Channel) []domain.VideoRecord {
	max := f.config.Settings.MaxVideosPerChannel

	var stubs []VideoStub
	var source Source
	for _, s := range f.sources {
		list, err := s.ChannelVideos(ctx, ch, max)
		if err != nil {
			observability.RecordFetchError(s.Name())
			f.logger.Printf("[ingest] %s via %s failed: %v", ch.Name, s.Name(), err)
			continue
		}
		stubs, source = list, s
		break
	}
	if source == nil {
		return nil
	}

	records := make([]domain.VideoRecord, 0, len(stubs))
	for _, stub := range stubs {
		records = append(records, f.buildRecord(ctx, ch, source, stub))
	}
	return records
}

// buildRecord assembles one video record, fetching details when enabled.
func (f *Fetcher) buildRecord(ctx context.Context, ch Channel, source Source, stub VideoStub) domain.VideoRecord {
	tickers := f.extractor.Extract(stub.Title)
	date := ""

	if f.config.Settings.FetchDetails && stub.ID != "" {
		details, err := source.VideoDetails(ctx, stub.ID)
		if err != nil {
			f.logger.Printf("[ingest] details for %s failed: %v", stub.ID, err)
		} else {
			tickers = mergeTickers(tickers, f.extractor.Extract(details.Description))
			date = normalizeDate(details.UploadDate)
		}
	}
	if date == "" {
		date = f.now().Format("2006-01-02")
		f.logger.Printf("[ingest] no upload date for %s, using today", stub.ID)
	}

	var bought []string
	if titleSuggestsBuying(stub.Title) && len(tickers) > 0 {
		bought = tickers
		if len(bought) > maxBoughtFromTitle {
			bought = bought[:maxBoughtFromTitle]
		}
	}

	return domain.VideoRecord{
		VideoID:          stub.ID,
		Title:            stub.Title,
		PublishedAt:      date,
		Thumbnail:        fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", stub.ID),
		ChannelID:        ch.ID,
		ChannelName:      ch.Name,
		TickersMentioned: tickers,
		TickersBought:    bought,
		// Recommendations and sentiment come from transcript analysis,
		// never from title heuristics.
		TickersRecommended: []string{},
		TickersCautioned:   []string{},
		Sentiment:          "pending",
		Summary:            summarizeTitle(stub.Title, tickers, ch.Name),
		KeyInsights:        keyInsights(bought, tickers),
	}
}

// normalizeDate converts YYYYMMDD or ISO timestamps to YYYY-MM-DD and
// rejects implausible years.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	var date string
	switch {
	case len(raw) == 8 && isDigits(raw):
		date = raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
	case len(raw) >= 10:
		date = raw[:10]
	default:
		return ""
	}

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	// Sanity window: scraped dates outside it are corrupt.
	if parsed.Year() < 2020 || parsed.Year() > 2030 {
		return ""
	}
	return date
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// mergeTickers unions two sorted ticker lists.
func mergeTickers(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, t := range append(append([]string{}, a...), b...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

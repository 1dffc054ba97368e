package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// userAgent makes YouTube serve the full HTML shell instead of a
// consent interstitial.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	// videoEntryRe pulls (videoId, title) pairs out of the ytInitialData
	// blob embedded in the channel page.
	videoEntryRe = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"[^}]*?"title":\{"runs":\[\{"text":("(?:[^"\\]|\\.)*")`)

	// shortDescriptionRe and uploadDateRe pull details out of a watch page.
	shortDescriptionRe = regexp.MustCompile(`"shortDescription":("(?:[^"\\]|\\.)*")`)
	uploadDateRe       = regexp.MustCompile(`"uploadDate":"(\d{4}-\d{2}-\d{2})`)
)

// Scraper lists channel videos by scraping the public channel page.
// Fallback source when no Data API key is configured; depends on
// YouTube's embedded page data and breaks when that layout changes.
type Scraper struct {
	client *http.Client
}

// NewScraper creates the scrape source.
func NewScraper() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Name returns the source name.
func (s *Scraper) Name() string { return "scrape" }

// ChannelVideos scrapes the channel videos page for recent uploads.
func (s *Scraper) ChannelVideos(ctx context.Context, ch Channel, max int) ([]VideoStub, error) {
	if ch.URL == "" {
		return nil, fmt.Errorf("channel %s has no URL", ch.Name)
	}

	html, err := s.fetch(ctx, ch.URL)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", ch.Name, err)
	}

	data := embeddedPageData(html)
	if data == "" {
		return nil, fmt.Errorf("scrape %s: no embedded page data", ch.Name)
	}

	seen := make(map[string]struct{})
	var stubs []VideoStub
	for _, m := range videoEntryRe.FindAllStringSubmatch(data, -1) {
		id := m[1]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		var title string
		if err := json.Unmarshal([]byte(m[2]), &title); err != nil {
			continue
		}
		stubs = append(stubs, VideoStub{ID: id, Title: title})
		if len(stubs) >= max {
			break
		}
	}
	if len(stubs) == 0 {
		return nil, fmt.Errorf("scrape %s: no videos found", ch.Name)
	}
	return stubs, nil
}

// VideoDetails scrapes the watch page for description and upload date.
func (s *Scraper) VideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	html, err := s.fetch(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("scrape video %s: %w", videoID, err)
	}

	details := &VideoDetails{}
	if m := shortDescriptionRe.FindStringSubmatch(html); m != nil {
		var desc string
		if err := json.Unmarshal([]byte(m[1]), &desc); err == nil {
			details.Description = desc
		}
	}
	if m := uploadDateRe.FindStringSubmatch(html); m != nil {
		details.UploadDate = m[1]
	}
	return details, nil
}

// fetch downloads a page as a string.
func (s *Scraper) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// embeddedPageData extracts the script body carrying ytInitialData.
func embeddedPageData(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var data string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, "ytInitialData") {
			data = text
			return false
		}
		return true
	})
	return data
}

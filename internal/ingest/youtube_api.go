package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultDataAPIURL = "https://www.googleapis.com/youtube/v3"

// DataAPI lists channel videos through the YouTube Data API v3.
// Primary source; needs an API key with youtube.readonly scope.
type DataAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client

	// uploads playlist IDs by channel handle, resolved once per run
	playlists map[string]string
}

// NewDataAPI creates the Data API source.
func NewDataAPI(apiKey string) *DataAPI {
	return &DataAPI{
		apiKey:    apiKey,
		baseURL:   defaultDataAPIURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		playlists: make(map[string]string),
	}
}

// Name returns the source name.
func (d *DataAPI) Name() string { return "youtube-api" }

type channelListResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title      string `json:"title"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		Snippet struct {
			PublishedAt string `json:"publishedAt"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

// ChannelVideos lists the channel's most recent uploads.
func (d *DataAPI) ChannelVideos(ctx context.Context, ch Channel, max int) ([]VideoStub, error) {
	playlist, err := d.uploadsPlaylist(ctx, ch)
	if err != nil {
		return nil, err
	}

	var resp playlistItemsResponse
	params := url.Values{
		"part":       {"snippet"},
		"playlistId": {playlist},
		"maxResults": {fmt.Sprintf("%d", max)},
	}
	if err := d.get(ctx, "/playlistItems", params, &resp); err != nil {
		return nil, fmt.Errorf("list uploads for %s: %w", ch.Name, err)
	}

	stubs := make([]VideoStub, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet.ResourceID.VideoID == "" {
			continue
		}
		stubs = append(stubs, VideoStub{
			ID:    item.Snippet.ResourceID.VideoID,
			Title: item.Snippet.Title,
		})
	}
	return stubs, nil
}

// VideoDetails fetches the description and upload date for one video.
func (d *DataAPI) VideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	var resp videoListResponse
	params := url.Values{
		"part": {"snippet"},
		"id":   {videoID},
	}
	if err := d.get(ctx, "/videos", params, &resp); err != nil {
		return nil, fmt.Errorf("video details %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video details %s: not found", videoID)
	}

	snippet := resp.Items[0].Snippet
	date := snippet.PublishedAt
	if len(date) >= 10 {
		date = date[:10]
	}
	return &VideoDetails{
		Description: snippet.Description,
		UploadDate:  date,
	}, nil
}

// uploadsPlaylist resolves and caches the channel's uploads playlist ID.
func (d *DataAPI) uploadsPlaylist(ctx context.Context, ch Channel) (string, error) {
	handle := strings.TrimPrefix(ch.Handle, "@")
	if handle == "" {
		return "", fmt.Errorf("channel %s has no handle", ch.Name)
	}
	if id, ok := d.playlists[handle]; ok {
		return id, nil
	}

	var resp channelListResponse
	params := url.Values{
		"part":      {"contentDetails"},
		"forHandle": {handle},
	}
	if err := d.get(ctx, "/channels", params, &resp); err != nil {
		return "", fmt.Errorf("resolve channel %s: %w", ch.Name, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("resolve channel %s: no such handle %q", ch.Name, ch.Handle)
	}

	id := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if id == "" {
		return "", fmt.Errorf("resolve channel %s: no uploads playlist", ch.Name)
	}
	d.playlists[handle] = id
	return id, nil
}

// get performs an authenticated GET against the Data API.
func (d *DataAPI) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	params.Set("key", d.apiKey)
	endpoint := d.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

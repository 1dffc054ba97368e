package ingest

import "context"

// VideoStub is a video list entry before details are fetched.
type VideoStub struct {
	ID    string
	Title string
}

// VideoDetails carries the per-video fields the list endpoints omit.
type VideoDetails struct {
	Description string
	// UploadDate is YYYY-MM-DD, YYYYMMDD, or empty when unknown.
	UploadDate string
}

// Source lists a channel's recent videos and fetches per-video details.
type Source interface {
	Name() string
	ChannelVideos(ctx context.Context, ch Channel, max int) ([]VideoStub, error)
	VideoDetails(ctx context.Context, videoID string) (*VideoDetails, error)
}

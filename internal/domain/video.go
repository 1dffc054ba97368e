package domain

// VideoRecord is one fetched video with its extracted ticker hints.
// Corresponds to one element of youtube_videos.json. Input only: the
// registry core never persists videos beyond the companion feed file.
type VideoRecord struct {
	VideoID            string   `json:"videoId"`
	Title              string   `json:"title"`
	PublishedAt        string   `json:"publishedAt"` // ISO date, YYYY-MM-DD
	Thumbnail          string   `json:"thumbnail,omitempty"`
	ChannelID          string   `json:"channelId"`
	ChannelName        string   `json:"channelName"`
	TickersMentioned   []string `json:"tickersMentioned"`
	TickersBought      []string `json:"tickersBought"`
	TickersRecommended []string `json:"tickersRecommended"`
	TickersCautioned   []string `json:"tickersCautioned,omitempty"`
	Sentiment          string   `json:"sentiment,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	KeyInsights        []string `json:"keyInsights,omitempty"`
}

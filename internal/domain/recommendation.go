package domain

// MaxRecommendationVideos bounds the contributing-video titles kept per
// recommendation: the first three unique titles, in discovery order.
const MaxRecommendationVideos = 3

// Recommendation aggregates every mention of a ticker by one channel
// across a video batch. Transient: computed by the discovery engine,
// consumed by registry promotion, never persisted.
type Recommendation struct {
	Ticker         string   `json:"ticker"`
	Channel        string   `json:"channel"`
	ChannelID      string   `json:"channelId"`
	FirstMentioned string   `json:"firstMentioned"` // min publishedAt over contributing videos
	Videos         []string `json:"videos"`
	IsBought       bool     `json:"isBought"`
	IsRecommended  bool     `json:"isRecommended"`
	MentionCount   int      `json:"mentionCount"`
}

// Key returns the recommendation's identity key. The channel name is the
// discovery-side identity and must line up with the registry's source
// field, so both go through the same derivation.
func (r *Recommendation) Key() Key {
	return NewKey(r.Ticker, r.Channel)
}

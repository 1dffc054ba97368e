// Package discovery computes which (ticker, channel) combinations in a video
// batch are not yet tracked by the registry. Pure: no I/O, no clock.
package discovery

import (
	"sort"

	"influencer-stock-lab/internal/domain"
)

// Result partitions a video batch's recommendations against the registry.
type Result struct {
	// NewCandidates are recommendations whose identity key is not tracked
	// and that carry a bought or recommended signal, sorted by mention
	// count descending (ties keep discovery order).
	NewCandidates []*domain.Recommendation

	// ExistingMatches are recommendations whose identity key is already
	// tracked, in discovery order.
	ExistingMatches []*domain.Recommendation
}

// Discover folds the video batch into per-(ticker, channel) recommendations
// and partitions them against the tracked registry.
//
// A ticker that is merely mentioned never becomes a candidate: promotion
// requires an explicit bought or recommended signal from at least one video.
func Discover(videos []domain.VideoRecord, registry []domain.StockEntry) Result {
	tracked := trackedKeys(registry)
	recs := Aggregate(videos)

	var result Result
	for _, rec := range recs {
		if _, exists := tracked[rec.Key()]; exists {
			result.ExistingMatches = append(result.ExistingMatches, rec)
			continue
		}
		if rec.IsBought || rec.IsRecommended {
			result.NewCandidates = append(result.NewCandidates, rec)
		}
	}

	// Most mentioned first; stable so ties keep discovery order.
	sort.SliceStable(result.NewCandidates, func(i, j int) bool {
		return result.NewCandidates[i].MentionCount > result.NewCandidates[j].MentionCount
	})

	return result
}

// Aggregate groups bought/recommended tickers by (ticker, channel) across
// the batch, in first-seen order. Each video contributes at most once to a
// recommendation's mention count even when a ticker appears in both its
// bought and recommended sets.
func Aggregate(videos []domain.VideoRecord) []*domain.Recommendation {
	byKey := make(map[domain.Key]*domain.Recommendation)
	var order []domain.Key

	for _, video := range videos {
		bought := toSet(video.TickersBought)
		recommended := toSet(video.TickersRecommended)

		for _, ticker := range unionOrdered(video.TickersBought, video.TickersRecommended) {
			key := domain.NewKey(ticker, video.ChannelName)
			if !key.IsValid() {
				continue
			}

			rec, exists := byKey[key]
			if !exists {
				rec = &domain.Recommendation{
					Ticker:         key.Ticker,
					Channel:        key.Source,
					ChannelID:      video.ChannelID,
					FirstMentioned: video.PublishedAt,
				}
				byKey[key] = rec
				order = append(order, key)
			}

			if video.Title != "" {
				addTitle(rec, video.Title)
			}
			if _, ok := bought[key.Ticker]; ok {
				rec.IsBought = true
			}
			if _, ok := recommended[key.Ticker]; ok {
				rec.IsRecommended = true
			}
			// Fixed YYYY-MM-DD format makes lexicographic comparison valid.
			if video.PublishedAt != "" && (rec.FirstMentioned == "" || video.PublishedAt < rec.FirstMentioned) {
				rec.FirstMentioned = video.PublishedAt
			}
			rec.MentionCount++
		}
	}

	out := make([]*domain.Recommendation, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// trackedKeys builds the set of identity keys already in the registry.
// Entries without a ticker are skipped.
func trackedKeys(registry []domain.StockEntry) map[domain.Key]struct{} {
	keys := make(map[domain.Key]struct{}, len(registry))
	for i := range registry {
		key := registry[i].Key()
		if key.IsValid() {
			keys[key] = struct{}{}
		}
	}
	return keys
}

// addTitle appends a contributing video title, deduplicated and capped.
func addTitle(rec *domain.Recommendation, title string) {
	if len(rec.Videos) >= domain.MaxRecommendationVideos {
		return
	}
	for _, existing := range rec.Videos {
		if existing == title {
			return
		}
	}
	rec.Videos = append(rec.Videos, title)
}

// toSet uppercases tickers into a membership set.
func toSet(tickers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		key := domain.NewKey(t, "")
		if key.Ticker != "" {
			set[key.Ticker] = struct{}{}
		}
	}
	return set
}

// unionOrdered returns the union of two ticker lists, uppercased, keeping
// first-appearance order so aggregation stays deterministic.
func unionOrdered(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, t := range append(append([]string{}, a...), b...) {
		key := domain.NewKey(t, "")
		if key.Ticker == "" {
			continue
		}
		if _, ok := seen[key.Ticker]; ok {
			continue
		}
		seen[key.Ticker] = struct{}{}
		out = append(out, key.Ticker)
	}
	return out
}

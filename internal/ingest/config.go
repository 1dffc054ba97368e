// Package ingest fetches recent videos from configured YouTube channels
// and turns them into tagged video records for the discovery engine.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Channel is one configured YouTube channel.
type Channel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Handle  string `json:"handle"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// Settings tune the fetch behavior for all channels.
type Settings struct {
	MaxVideosPerChannel int  `json:"maxVideosPerChannel"`
	FetchDetails        bool `json:"fetchDetails"`
}

// ChannelConfig is the channels.json document.
type ChannelConfig struct {
	Channels []Channel `json:"channels"`
	Settings Settings  `json:"settings"`
}

// DefaultChannelConfig is used when no config file exists.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Channels: []Channel{{
			ID:      "joseph-carlson",
			Name:    "The Joseph Carlson Show",
			Handle:  "@josephcarlsonshow",
			URL:     "https://www.youtube.com/@josephcarlsonshow/videos",
			Enabled: true,
		}},
		Settings: Settings{
			MaxVideosPerChannel: 5,
			FetchDetails:        true,
		},
	}
}

// LoadChannelConfig reads channels.json from the given path. A missing
// file yields the default config; a malformed file is an error.
func LoadChannelConfig(path string) (ChannelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultChannelConfig(), nil
		}
		return ChannelConfig{}, fmt.Errorf("read channel config %s: %w", path, err)
	}

	var cfg ChannelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ChannelConfig{}, fmt.Errorf("parse channel config %s: %w", path, err)
	}
	if cfg.Settings.MaxVideosPerChannel <= 0 {
		cfg.Settings.MaxVideosPerChannel = 5
	}
	return cfg, nil
}

// Enabled returns only the channels marked enabled.
func (c ChannelConfig) Enabled() []Channel {
	var out []Channel
	for _, ch := range c.Channels {
		if ch.Enabled {
			out = append(out, ch)
		}
	}
	return out
}

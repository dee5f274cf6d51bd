package models

import (
	"strconv"
	"strings"
	"time"
)

// FilterLevel limits which messages the filter endpoint delivers
type FilterLevel string

const (
	FilterLevelNone   FilterLevel = "none"
	FilterLevelLow    FilterLevel = "low"
	FilterLevelMedium FilterLevel = "medium"
)

// With selects the messages of a user stream. Values other than the
// constants are sent verbatim.
type With string

const (
	WithUser      With = "user"
	WithFollowing With = "following"
)

// BoundingBox is a south-west / north-east pair of longitude, latitude points
type BoundingBox struct {
	West  float64 `json:"west" yaml:"west"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	North float64 `json:"north" yaml:"north"`
}

// JoinIDs renders user ids as a comma separated list
func JoinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

// JoinBoxes renders boxes as a flat comma separated coordinate list
func JoinBoxes(boxes []BoundingBox) string {
	parts := make([]string, 0, len(boxes)*4)
	for _, b := range boxes {
		for _, c := range [...]float64{b.West, b.South, b.East, b.North} {
			parts = append(parts, strconv.FormatFloat(c, 'f', -1, 64))
		}
	}
	return strings.Join(parts, ",")
}

// StreamConfig describes the stream to consume and its request parameters
type StreamConfig struct {
	Endpoint  StreamEndpoint `json:"endpoint,omitzero" yaml:"endpoint"`
	Method    string         `json:"method,omitzero" yaml:"method"` // custom endpoints only
	URL       string         `json:"url,omitzero" yaml:"url"`       // custom endpoints only
	Timeout   time.Duration  `json:"timeout,omitzero" yaml:"timeout"`
	UserAgent string         `json:"user_agent,omitzero" yaml:"user_agent"`

	StallWarnings bool          `json:"stall_warnings,omitzero" yaml:"stall_warnings"`
	FilterLevel   FilterLevel   `json:"filter_level,omitzero" yaml:"filter_level"`
	Language      string        `json:"language,omitzero" yaml:"language"`
	Follow        []uint64      `json:"follow,omitzero" yaml:"follow"`
	Track         string        `json:"track,omitzero" yaml:"track"`
	Locations     []BoundingBox `json:"locations,omitzero" yaml:"locations"`
	Count         *int          `json:"count,omitzero" yaml:"count"`
	With          With          `json:"with,omitzero" yaml:"with"`
	Replies       bool          `json:"replies,omitzero" yaml:"replies"`

	// SkipHeartbeats drops blank keep-alive lines before they reach the sinks.
	// nil means true.
	SkipHeartbeats *bool `json:"skip_heartbeats,omitzero" yaml:"skip_heartbeats"`
}

// ShouldSkipHeartbeats applies the default for SkipHeartbeats
func (c StreamConfig) ShouldSkipHeartbeats() bool {
	return c.SkipHeartbeats == nil || *c.SkipHeartbeats
}

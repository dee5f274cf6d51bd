package models

import "time"

// RelayConfig controls re-serving the stream to local HTTP subscribers
type RelayConfig struct {
	Enabled           bool          `json:"enabled,omitzero" yaml:"enabled"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval,omitzero" yaml:"heartbeat_interval"`
	SubscriberBuffer  int           `json:"subscriber_buffer,omitzero" yaml:"subscriber_buffer"`
}

package models

// RedisConfig holds the optional Redis sink settings
type RedisConfig struct {
	URL     string `json:"url,omitzero" yaml:"url"`
	ListKey string `json:"list_key,omitzero" yaml:"list_key"` // empty disables RPUSH
	Channel string `json:"channel,omitzero" yaml:"channel"`   // empty disables PUBLISH
	MaxLen  int64  `json:"max_len,omitzero" yaml:"max_len"`   // list is trimmed to this length, 0 keeps everything
}

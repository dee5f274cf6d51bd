package pkg

import "github.com/kp666/twitter-stream/internal/models"

type (
	ServerConfig      = models.ServerConfig
	CredentialsConfig = models.CredentialsConfig
	Token             = models.Token
	StreamConfig      = models.StreamConfig
	StreamEndpoint    = models.StreamEndpoint
	FilterLevel       = models.FilterLevel
	With              = models.With
	BoundingBox       = models.BoundingBox
	RelayConfig       = models.RelayConfig
	RedisConfig       = models.RedisConfig
	DatabaseConfig    = models.DatabaseConfig
	StreamRecord      = models.StreamRecord
)

package builder

import (
	"fmt"

	"github.com/kp666/twitter-stream/internal/config"
)

// FromYAML loads env files and a config file, then builds from it
func FromYAML(path string, envFiles []string) (*Builder, error) {
	if len(envFiles) > 0 {
		config.LoadEnvFiles(envFiles)
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	return FromConfig(cfg)
}

// FromConfig builds from a loaded configuration
func FromConfig(cfg *config.Config) (*Builder, error) {
	target, ok := cfg.Target()
	if !ok {
		return nil, fmt.Errorf("cannot resolve stream endpoint %q", cfg.Stream.Endpoint)
	}

	stream := cfg.Stream
	if stream.UserAgent == "" {
		stream.UserAgent = defaultUserAgent
	}

	return &Builder{
		target:      target,
		credentials: cfg.Credentials,
		stream:      stream,
	}, nil
}

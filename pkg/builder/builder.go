// Package builder connects to a streaming endpoint and returns the line stream.
//
//	stream, err := builder.Filter(consumer, access).
//		Track("golang").
//		Timeout(2 * time.Minute).
//		Listen(ctx)
package builder

import (
	"net/http"
	"time"

	"github.com/kp666/twitter-stream/internal/models"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
)

const defaultUserAgent = "twitter-stream/1.0"

type Builder struct {
	target      models.EndpointTarget
	credentials models.CredentialsConfig
	stream      models.StreamConfig
	client      *http.Client
	clock       contracts.Clock
	sessionID   string
}

func newBuilder(endpoint models.StreamEndpoint, method, url string, consumer, access models.Token) *Builder {
	target, _ := endpoint.Target(method, url)
	return &Builder{
		target: target,
		credentials: models.CredentialsConfig{
			Consumer: consumer,
			Access:   access,
		},
		stream: models.StreamConfig{
			Endpoint:    endpoint,
			Method:      method,
			URL:         url,
			FilterLevel: models.FilterLevelNone,
			UserAgent:   defaultUserAgent,
		},
	}
}

// Filter streams statuses matching Track, Follow or Locations
func Filter(consumer, access models.Token) *Builder {
	return newBuilder(models.EndpointFilter, "", "", consumer, access)
}

// Sample streams a random sample of public statuses
func Sample(consumer, access models.Token) *Builder {
	return newBuilder(models.EndpointSample, "", "", consumer, access)
}

// Firehose streams all public statuses
func Firehose(consumer, access models.Token) *Builder {
	return newBuilder(models.EndpointFirehose, "", "", consumer, access)
}

// User streams messages for the authenticated user
func User(consumer, access models.Token) *Builder {
	return newBuilder(models.EndpointUser, "", "", consumer, access)
}

// Site streams messages for the users in Follow
func Site(consumer, access models.Token) *Builder {
	return newBuilder(models.EndpointSite, "", "", consumer, access)
}

// Custom streams from an arbitrary endpoint. An empty method means GET.
func Custom(method, url string, consumer, access models.Token) *Builder {
	return newBuilder(models.EndpointCustom, method, url, consumer, access)
}

// Connection

// Timeout sets the idle timeout. Zero restores the default of 90 seconds.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.stream.Timeout = d
	return b
}

// UserAgent sets the User-Agent header
func (b *Builder) UserAgent(ua string) *Builder {
	b.stream.UserAgent = ua
	return b
}

// Client sets the HTTP client used as the transport. Its Timeout is not
// applied to the stream.
func (b *Builder) Client(c *http.Client) *Builder {
	b.client = c
	return b
}

// Clock replaces the clock used for idle deadlines
func (b *Builder) Clock(c contracts.Clock) *Builder {
	b.clock = c
	return b
}

// SessionID sets the id used in log lines and stored records
func (b *Builder) SessionID(id string) *Builder {
	b.sessionID = id
	return b
}

// Request parameters

func (b *Builder) StallWarnings(enabled bool) *Builder {
	b.stream.StallWarnings = enabled
	return b
}

func (b *Builder) FilterLevel(level models.FilterLevel) *Builder {
	b.stream.FilterLevel = level
	return b
}

func (b *Builder) Language(lang string) *Builder {
	b.stream.Language = lang
	return b
}

func (b *Builder) Follow(ids ...uint64) *Builder {
	b.stream.Follow = ids
	return b
}

func (b *Builder) Track(keywords string) *Builder {
	b.stream.Track = keywords
	return b
}

func (b *Builder) Locations(boxes ...models.BoundingBox) *Builder {
	b.stream.Locations = boxes
	return b
}

// Count sets the number of backfilled messages
func (b *Builder) Count(n int) *Builder {
	b.stream.Count = &n
	return b
}

func (b *Builder) With(with models.With) *Builder {
	b.stream.With = with
	return b
}

// Replies requests replies=all
func (b *Builder) Replies(enabled bool) *Builder {
	b.stream.Replies = enabled
	return b
}

// Target returns the method and URL the request goes to
func (b *Builder) Target() models.EndpointTarget {
	return b.target
}

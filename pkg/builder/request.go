package builder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kp666/twitter-stream/internal/models"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
	"github.com/kp666/twitter-stream/internal/services/stream/handlers"
	"github.com/kp666/twitter-stream/internal/services/stream/readers"

	"github.com/dghubble/oauth1"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// maxErrorBody bounds how much of a rejected handshake is kept for the error
const maxErrorBody = 4 << 10

// Params returns the encoded request parameters
func (b *Builder) Params() url.Values {
	params := url.Values{}
	s := b.stream

	if s.StallWarnings {
		params.Set("stall_warnings", "true")
	}
	if s.FilterLevel != "" && s.FilterLevel != models.FilterLevelNone {
		params.Set("filter_level", string(s.FilterLevel))
	}
	if s.Language != "" {
		params.Set("language", s.Language)
	}
	if len(s.Follow) > 0 {
		params.Set("follow", models.JoinIDs(s.Follow))
	}
	if s.Track != "" {
		params.Set("track", s.Track)
	}
	if len(s.Locations) > 0 {
		params.Set("locations", models.JoinBoxes(s.Locations))
	}
	if s.Count != nil {
		params.Set("count", strconv.Itoa(*s.Count))
	}
	if s.With != "" {
		params.Set("with", string(s.With))
	}
	if s.Replies {
		params.Set("replies", "all")
	}

	return params
}

// newRequest builds the unsigned request. POST carries the parameters as a
// form body, every other method in the query string.
func (b *Builder) newRequest(ctx context.Context) (*http.Request, error) {
	if b.target.URL == "" {
		return nil, fmt.Errorf("no url for endpoint %q", b.stream.Endpoint)
	}

	params := b.Params()
	method := strings.ToUpper(b.target.Method)

	var req *http.Request
	var err error
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, b.target.URL, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, b.target.URL, nil)
		if err == nil && len(params) > 0 {
			query := req.URL.Query()
			for k, v := range params {
				query[k] = v
			}
			req.URL.RawQuery = query.Encode()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if b.stream.UserAgent != "" {
		req.Header.Set("User-Agent", b.stream.UserAgent)
	}
	return req, nil
}

// httpClient signs every request with OAuth 1.0a HMAC-SHA1
func (b *Builder) httpClient(ctx context.Context) *http.Client {
	if b.client != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, b.client)
	}
	config := oauth1.NewConfig(b.credentials.Consumer.Key, b.credentials.Consumer.Secret)
	token := oauth1.NewToken(b.credentials.Access.Key, b.credentials.Access.Secret)
	return config.Client(ctx, token)
}

// Listen connects and returns the line stream once the endpoint answers 200.
//
// ctx bounds the whole connection: cancelling it aborts the body and the
// stream fails. A non-200 answer is returned as an HTTPStatus
// *contracts.StreamError.
func (b *Builder) Listen(ctx context.Context) (*handlers.Stream, error) {
	sessionID := b.sessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	req, err := b.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	fiberlog.Infof("[%s] Connecting to %s %s", sessionID, req.Method, b.target.URL)

	resp, err := b.httpClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", b.target.URL, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if cerr := resp.Body.Close(); cerr != nil {
			fiberlog.Debugf("[%s] Error closing rejected response: %v", sessionID, cerr)
		}
		fiberlog.Errorf("[%s] Stream rejected with status %d", sessionID, resp.StatusCode)
		return nil, contracts.NewHTTPStatusError(resp.StatusCode, string(body))
	}

	opts := []handlers.StreamOption{handlers.WithSessionID(sessionID)}
	if b.clock != nil {
		opts = append(opts, handlers.WithClock(b.clock))
	}
	stream := handlers.NewStream(readers.NewBodySource(resp.Body, sessionID), b.stream.Timeout, opts...)
	fiberlog.Infof("[%s] Connected, idle timeout %v", sessionID, stream.Timeout())
	return stream, nil
}

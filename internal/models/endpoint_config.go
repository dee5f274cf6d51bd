package models

import "net/http"

// StreamEndpoint names one of the streaming API endpoints
type StreamEndpoint string

const (
	EndpointFilter   StreamEndpoint = "filter"
	EndpointSample   StreamEndpoint = "sample"
	EndpointFirehose StreamEndpoint = "firehose"
	EndpointUser     StreamEndpoint = "user"
	EndpointSite     StreamEndpoint = "site"
	EndpointCustom   StreamEndpoint = "custom"
)

// EndpointTarget is the method and URL a stream request is sent to
type EndpointTarget struct {
	Method string
	URL    string
}

// Endpoints maps the well-known endpoints to their targets
var Endpoints = map[StreamEndpoint]EndpointTarget{
	EndpointFilter:   {Method: http.MethodPost, URL: "https://stream.twitter.com/1.1/statuses/filter.json"},
	EndpointSample:   {Method: http.MethodGet, URL: "https://stream.twitter.com/1.1/statuses/sample.json"},
	EndpointFirehose: {Method: http.MethodGet, URL: "https://stream.twitter.com/1.1/statuses/firehose.json"},
	EndpointUser:     {Method: http.MethodGet, URL: "https://userstream.twitter.com/1.1/user.json"},
	EndpointSite:     {Method: http.MethodGet, URL: "https://sitestream.twitter.com/1.1/site.json"},
}

// Target resolves the endpoint. Custom endpoints take method and url verbatim.
func (e StreamEndpoint) Target(method, url string) (EndpointTarget, bool) {
	if e == EndpointCustom || e == "" {
		if url == "" {
			return EndpointTarget{}, false
		}
		if method == "" {
			method = http.MethodGet
		}
		return EndpointTarget{Method: method, URL: url}, true
	}
	target, ok := Endpoints[e]
	return target, ok
}

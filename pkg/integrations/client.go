package integrations

import (
	"net/http"
	"time"

	"github.com/matzehuels/gremlin/pkg/buildinfo"
	"github.com/matzehuels/gremlin/pkg/observability"
)

// DefaultTimeout bounds a single registry request made through [NewHTTPClient].
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent identifies Gremlin to registries.
var DefaultUserAgent = "gremlin/" + buildinfo.Version

// NewHTTPClient creates an HTTP client for registry requests.
//
// The client applies timeout to every request (0 means no timeout), sets the
// User-Agent header unless the request already carries one, and reports each
// round trip to the registered [observability.HTTPHooks]. It never retries.
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &hooksTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}

// hooksTransport decorates a RoundTripper with standard headers and
// observability events.
type hooksTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *hooksTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

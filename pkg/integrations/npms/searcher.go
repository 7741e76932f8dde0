package npms

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/fetch"
)

// Suggestions is the payload type of a suggestions search.
type Suggestions = []PackageResult

// Searcher runs suggestion searches through a single [fetch.Controller].
// A new Search supersedes the previous one.
type Searcher struct {
	ctrl    *fetch.Controller[Suggestions]
	baseURL string
	size    int
}

// searcherConfig holds configuration during searcher construction.
type searcherConfig struct {
	baseURL string
	size    int
	fetch   []fetch.Option
}

// Option configures a [Searcher].
type Option func(*searcherConfig)

// WithBaseURL sets the npms API base URL.
//
// Default: https://api.npms.io
func WithBaseURL(baseURL string) Option {
	return func(c *searcherConfig) {
		c.baseURL = baseURL
	}
}

// WithPageSize sets how many suggestions each search requests.
//
// Default: 25
func WithPageSize(size int) Option {
	return func(c *searcherConfig) {
		c.size = size
	}
}

// WithDoer sets the HTTP transport.
func WithDoer(d fetch.Doer) Option {
	return func(c *searcherConfig) {
		c.fetch = append(c.fetch, fetch.WithDoer(d))
	}
}

// WithLogger sets the logger passed to the underlying controller.
func WithLogger(l *log.Logger) Option {
	return func(c *searcherConfig) {
		c.fetch = append(c.fetch, fetch.WithLogger(l))
	}
}

// NewSearcher creates an idle searcher.
func NewSearcher(opts ...Option) *Searcher {
	cfg := &searcherConfig{
		baseURL: DefaultBaseURL,
		size:    DefaultPageSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Searcher{
		ctrl:    fetch.New[Suggestions](cfg.fetch...),
		baseURL: cfg.baseURL,
		size:    cfg.size,
	}
}

// Search triggers a suggestions request for query.
//
// It returns an error, without touching the search state, only when the
// query or base URL is invalid. Request outcomes are observed via
// [Searcher.State] or [Searcher.Subscribe].
func (s *Searcher) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if err := errors.ValidateQuery(query); err != nil {
		return err
	}
	target, err := SuggestionsURL(s.baseURL, SuggestionsQuery{Q: query, Size: s.size})
	if err != nil {
		return err
	}
	s.ctrl.Trigger(ctx, target, fetch.Options{Method: http.MethodGet})
	return nil
}

// State returns a snapshot of the current search state.
func (s *Searcher) State() fetch.State[Suggestions] { return s.ctrl.State() }

// Subscribe registers fn for every published search state.
func (s *Searcher) Subscribe(fn func(fetch.State[Suggestions])) (cancel func()) {
	return s.ctrl.Subscribe(fn)
}

// Stop stops observing in-flight searches.
func (s *Searcher) Stop() { s.ctrl.StopObserving() }

// Wait blocks until in-flight searches have finished.
func (s *Searcher) Wait() { s.ctrl.Wait() }

// PageSize returns the configured result count per search.
func (s *Searcher) PageSize() int { return s.size }

// Package npmstest provides an in-process fake of the npms suggestions API.
//
// The fake serves a fixed set of packages, prefix-matched on name, and can be
// told to fail or stall so clients can be tested without network access.
package npmstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gremlin/pkg/integrations/npms"
)

// MaxSize is the largest size parameter the fake accepts.
const MaxSize = npms.MaxPageSize

// Server is a running fake. Close it when done.
type Server struct {
	*httptest.Server

	packages []npms.PackageResult
	status   int
	body     string
	delay    time.Duration

	mu       sync.Mutex
	requests []url.Values
}

// Option configures a [Server].
type Option func(*Server)

// WithPackages replaces the default fixture set.
func WithPackages(pkgs []npms.PackageResult) Option {
	return func(s *Server) { s.packages = pkgs }
}

// WithStatus makes every suggestions request answer with code and body.
func WithStatus(code int, body string) Option {
	return func(s *Server) {
		s.status = code
		s.body = body
	}
}

// WithDelay stalls every response by d, or until the client goes away.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// NewServer starts a fake npms API.
func NewServer(opts ...Option) *Server {
	s := &Server{packages: Packages()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/v2/search/suggestions", s.handleSuggestions)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "Not found"})
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Requests returns the query parameters of every suggestions request seen.
func (s *Server) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	s.requests = append(s.requests, q)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	if s.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
		return
	}

	text := strings.TrimSpace(q.Get("q"))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, apiError{
			Code:    "VALIDATION",
			Message: `child "q" fails because ["q" is not allowed to be empty]`,
		})
		return
	}

	size := npms.DefaultPageSize
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxSize {
			writeJSON(w, http.StatusBadRequest, apiError{
				Code:    "VALIDATION",
				Message: `child "size" fails because ["size" must be between 1 and 100]`,
			})
			return
		}
		size = n
	}

	writeJSON(w, http.StatusOK, match(s.packages, text, size))
}

// match returns up to size packages whose name starts with text, or failing
// that contains it, in fixture order.
func match(pkgs []npms.PackageResult, text string, size int) []npms.PackageResult {
	text = strings.ToLower(text)
	out := []npms.PackageResult{}
	var rest []npms.PackageResult
	for _, p := range pkgs {
		name := strings.ToLower(p.Package.Name)
		switch {
		case strings.HasPrefix(name, text):
			p.Highlight = highlight(p.Package.Name, utf8.RuneCountInString(text))
			out = append(out, p)
		case strings.Contains(name, text):
			rest = append(rest, p)
		}
	}
	out = append(out, rest...)
	if len(out) > size {
		out = out[:size]
	}
	return out
}

// highlight wraps the first n runes of name in <em> tags. Lowercasing maps
// rune for rune, so a prefix match of n runes covers n runes of the original.
func highlight(name string, n int) string {
	end := len(name)
	for i := range name {
		if n == 0 {
			end = i
			break
		}
		n--
	}
	return "<em>" + name[:end] + "</em>" + name[end:]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package fetch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/gremlin/pkg/errors"
)

type okBody struct {
	OK bool `json:"ok"`
}

// doerFunc adapts a function to the Doer interface.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func response(code int, status, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func respond(code int, status, body string) Doer {
	return doerFunc(func(*http.Request) (*http.Response, error) {
		return response(code, status, body), nil
	})
}

// gatedDoer blocks every request until release is closed, then answers with
// the response produced by fn.
func gatedDoer(release <-chan struct{}, fn func() (*http.Response, error)) Doer {
	return doerFunc(func(*http.Request) (*http.Response, error) {
		<-release
		return fn()
	})
}

func TestNewIsIdle(t *testing.T) {
	c := New[okBody]()
	s := c.State()
	if s.Phase != PhaseIdle {
		t.Errorf("Phase = %v, want %v", s.Phase, PhaseIdle)
	}
	if s.Err != nil || s.Data.OK {
		t.Errorf("idle state should be empty, got %+v", s)
	}
	c.Wait() // no requests, must not block
}

func TestTriggerPublishesLoadingSynchronously(t *testing.T) {
	release := make(chan struct{})
	c := New[okBody](WithDoer(gatedDoer(release, func() (*http.Response, error) {
		return response(200, "200 OK", `{"ok":true}`), nil
	})))

	c.Trigger(context.Background(), "http://registry.test/x", Options{})

	s := c.State()
	if !s.Loading() {
		t.Fatalf("Phase = %v, want loading immediately after Trigger", s.Phase)
	}
	if s.Err != nil || s.Data.OK {
		t.Errorf("loading state should have data and error cleared, got %+v", s)
	}

	close(release)
	c.Wait()

	if s := c.State(); !s.Succeeded() || !s.Data.OK {
		t.Errorf("state after completion = %+v, want success with ok=true", s)
	}
}

func TestTriggerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New[map[string]bool](WithDoer(server.Client()))
	c.Trigger(context.Background(), server.URL, Options{Method: http.MethodGet})
	c.Wait()

	s := c.State()
	if s.Phase != PhaseSuccess {
		t.Fatalf("Phase = %v, want success (err: %v)", s.Phase, s.Err)
	}
	if !s.Data["ok"] {
		t.Errorf("Data = %v, want map[ok:true]", s.Data)
	}
	if s.Err != nil {
		t.Errorf("Err = %v, want nil on success", s.Err)
	}
}

func TestTriggerFailures(t *testing.T) {
	tests := []struct {
		name     string
		doer     Doer
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:     "status text wins",
			doer:     respond(404, "404 Not Found", `{"code":"NOT_FOUND"}`),
			wantCode: errors.ErrCodeHTTPStatus,
			wantMsg:  "Not Found",
		},
		{
			name:     "no status text combines code and body",
			doer:     respond(500, "500", `{"msg":"boom"}`),
			wantCode: errors.ErrCodeHTTPStatus,
			wantMsg:  `Received a 500 http code => {"msg":"boom"}`,
		},
		{
			name:     "no status text with non-JSON body",
			doer:     respond(502, "", "bad gateway\n"),
			wantCode: errors.ErrCodeHTTPStatus,
			wantMsg:  `Received a 502 http code => "bad gateway"`,
		},
		{
			name:     "status text with empty body",
			doer:     respond(404, "404 Not Found", ""),
			wantCode: errors.ErrCodeHTTPStatus,
			wantMsg:  "Not Found",
		},
		{
			name: "transport error message",
			doer: doerFunc(func(*http.Request) (*http.Response, error) {
				return nil, stderrors.New("network down")
			}),
			wantCode: errors.ErrCodeNetwork,
			wantMsg:  "network down",
		},
		{
			name: "url error is peeled",
			doer: doerFunc(func(r *http.Request) (*http.Response, error) {
				return nil, &url.Error{Op: "Get", URL: r.URL.String(), Err: stderrors.New("network down")}
			}),
			wantCode: errors.ErrCodeNetwork,
			wantMsg:  "network down",
		},
		{
			name: "empty error message",
			doer: doerFunc(func(*http.Request) (*http.Response, error) {
				return nil, stderrors.New("")
			}),
			wantCode: errors.ErrCodeNetwork,
			wantMsg:  errors.DefaultMessage,
		},
		{
			name: "panic with non-error value",
			doer: doerFunc(func(*http.Request) (*http.Response, error) {
				panic("plain string")
			}),
			wantCode: errors.ErrCodeNetwork,
			wantMsg:  errors.DefaultMessage,
		},
		{
			name: "panic with error value",
			doer: doerFunc(func(*http.Request) (*http.Response, error) {
				panic(stderrors.New("transport exploded"))
			}),
			wantCode: errors.ErrCodeNetwork,
			wantMsg:  "transport exploded",
		},
		{
			name: "deadline exceeded",
			doer: doerFunc(func(*http.Request) (*http.Response, error) {
				return nil, context.DeadlineExceeded
			}),
			wantCode: errors.ErrCodeTimeout,
			wantMsg:  context.DeadlineExceeded.Error(),
		},
		{
			name:     "invalid JSON on success",
			doer:     respond(200, "200 OK", "not json"),
			wantCode: errors.ErrCodeDecode,
		},
		{
			name:     "trailing data after JSON on success",
			doer:     respond(200, "200 OK", `{"ok":true} this is not json`),
			wantCode: errors.ErrCodeDecode,
		},
		{
			name:     "two JSON values on success",
			doer:     respond(200, "200 OK", `{"ok":true}{"ok":true}`),
			wantCode: errors.ErrCodeDecode,
			wantMsg:  "unexpected data after JSON value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[okBody](WithDoer(tt.doer))
			c.Trigger(context.Background(), "http://registry.test/search", Options{})
			c.Wait()

			s := c.State()
			if s.Phase != PhaseFailure {
				t.Fatalf("Phase = %v, want failure", s.Phase)
			}
			if s.Err == nil {
				t.Fatal("Err is nil in failure state")
			}
			if s.Err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", s.Err.Code, tt.wantCode)
			}
			if tt.wantMsg != "" && s.Message() != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", s.Message(), tt.wantMsg)
			}
			if s.Data.OK {
				t.Error("Data must be empty in failure state")
			}
			if errors.UserMessage(s.Err) != s.Message() {
				t.Errorf("UserMessage() = %q, want %q", errors.UserMessage(s.Err), s.Message())
			}
		})
	}
}

func TestStatusErrorCause(t *testing.T) {
	c := New[okBody](WithDoer(respond(500, "500", `{"msg":"boom"}`)))
	c.Trigger(context.Background(), "http://registry.test/", Options{})
	c.Wait()

	s := c.State()
	msg := s.Message()
	if !strings.Contains(msg, "500") || !strings.Contains(msg, "boom") {
		t.Errorf("Message() = %q, want it to contain 500 and boom", msg)
	}

	var se *StatusError
	if !stderrors.As(s.Err, &se) {
		t.Fatalf("error cause should be *StatusError, got %T", s.Err.Cause)
	}
	if se.StatusCode != 500 || se.StatusText != "" {
		t.Errorf("StatusError = %+v, want code 500 and empty text", se)
	}
	body, ok := se.Body.(map[string]any)
	if !ok || body["msg"] != "boom" {
		t.Errorf("StatusError.Body = %#v, want decoded JSON", se.Body)
	}
}

func TestHTTPServerNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "NOT_FOUND"})
	}))
	defer server.Close()

	c := New[okBody](WithDoer(server.Client()))
	c.Trigger(context.Background(), server.URL, Options{})
	c.Wait()

	if got := c.State().Message(); got != "Not Found" {
		t.Errorf("Message() = %q, want %q", got, "Not Found")
	}
}

func TestTriggerInvalidTarget(t *testing.T) {
	c := New[okBody]()
	c.Trigger(context.Background(), "://missing-scheme", Options{})
	c.Wait()

	s := c.State()
	if !s.Failed() {
		t.Fatalf("Phase = %v, want failure for an unparseable target", s.Phase)
	}
	if s.Err.Code != errors.ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", s.Err.Code, errors.ErrCodeNetwork)
	}
}

func TestRequestOptions(t *testing.T) {
	var (
		gotMethod, gotBody, gotCustom, gotDefault, gotID, gotAccept string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotCustom = r.Header.Get("X-Custom")
		gotDefault = r.Header.Get("User-Agent")
		gotID = r.Header.Get(RequestIDHeader)
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New[okBody](WithDoer(server.Client()), WithHeader("User-Agent", "gremlin-test"))
	c.Trigger(context.Background(), server.URL, Options{
		Method: http.MethodPost,
		Header: http.Header{"X-Custom": {"custom"}},
		Body:   []byte(`{"q":"react"}`),
	})
	c.Wait()

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotBody != `{"q":"react"}` {
		t.Errorf("body = %q, want the request body", gotBody)
	}
	if gotCustom != "custom" {
		t.Errorf("X-Custom = %q, want %q", gotCustom, "custom")
	}
	if gotDefault != "gremlin-test" {
		t.Errorf("User-Agent = %q, want %q", gotDefault, "gremlin-test")
	}
	if gotID == "" {
		t.Error("request id header should be set")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestRequestHeaderOverridesDefault(t *testing.T) {
	var got string
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header.Get("Accept")
		return response(200, "200 OK", `{"ok":true}`), nil
	})

	c := New[okBody](WithDoer(doer), WithHeader("Accept", "application/vnd.default+json"))
	c.Trigger(context.Background(), "http://registry.test/", Options{
		Header: http.Header{"Accept": {"application/vnd.override+json"}},
	})
	c.Wait()

	if got != "application/vnd.override+json" {
		t.Errorf("Accept = %q, want per-request override", got)
	}
}

func TestStopObservingSuppressesCompletion(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*http.Response, error)
	}{
		{"success", func() (*http.Response, error) { return response(200, "200 OK", `{"ok":true}`), nil }},
		{"status failure", func() (*http.Response, error) { return response(500, "500", `{"msg":"boom"}`), nil }},
		{"transport failure", func() (*http.Response, error) { return nil, stderrors.New("network down") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			c := New[okBody](WithDoer(gatedDoer(release, tt.fn)))

			c.Trigger(context.Background(), "http://registry.test/", Options{})
			c.StopObserving()
			before := c.State()

			close(release)
			c.Wait()

			after := c.State()
			if after.Phase != before.Phase || after.Err != before.Err || after.Data != before.Data {
				t.Errorf("state changed after StopObserving: before %+v, after %+v", before, after)
			}
		})
	}
}

func TestStopObservingKeepsPublishedState(t *testing.T) {
	c := New[okBody](WithDoer(respond(200, "200 OK", `{"ok":true}`)))
	c.Trigger(context.Background(), "http://registry.test/", Options{})
	c.Wait()

	c.StopObserving()
	c.StopObserving()

	if s := c.State(); !s.Succeeded() || !s.Data.OK {
		t.Errorf("StopObserving must not alter published state, got %+v", s)
	}
}

func TestTriggerClearsStopObserving(t *testing.T) {
	c := New[okBody](WithDoer(respond(200, "200 OK", `{"ok":true}`)))
	c.StopObserving()

	c.Trigger(context.Background(), "http://registry.test/", Options{})
	c.Wait()

	if s := c.State(); !s.Succeeded() {
		t.Errorf("Phase = %v, want success after a fresh Trigger", s.Phase)
	}
}

func TestSecondTriggerResetsState(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return response(500, "500 Internal Server Error", `{}`), nil
		}
		<-release
		return response(200, "200 OK", `{"ok":true}`), nil
	})

	c := New[okBody](WithDoer(doer))
	c.Trigger(context.Background(), "http://registry.test/1", Options{})
	c.Wait()
	if !c.State().Failed() {
		t.Fatalf("first request should fail, got %v", c.State().Phase)
	}

	c.Trigger(context.Background(), "http://registry.test/2", Options{})
	s := c.State()
	if !s.Loading() || s.Err != nil || s.Data.OK {
		t.Errorf("second Trigger should reset to a clean loading state, got %+v", s)
	}

	close(release)
	c.Wait()
	if !c.State().Succeeded() {
		t.Errorf("Phase = %v, want success", c.State().Phase)
	}
}

func TestSecondTriggerWhilePending(t *testing.T) {
	release := make(chan struct{})
	c := New[okBody](WithDoer(gatedDoer(release, func() (*http.Response, error) {
		return response(200, "200 OK", `{"ok":true}`), nil
	})))

	var mu sync.Mutex
	var seen []State[okBody]
	cancel := c.Subscribe(func(s State[okBody]) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})
	defer cancel()

	c.Trigger(context.Background(), "http://registry.test/1", Options{})
	c.Trigger(context.Background(), "http://registry.test/2", Options{})

	// Both requests are still blocked in the transport.
	s := c.State()
	if !s.Loading() || s.Err != nil || s.Data.OK {
		t.Errorf("state right after second Trigger = %+v, want clean loading", s)
	}
	mu.Lock()
	n := len(seen)
	mu.Unlock()
	if n != 2 {
		t.Errorf("listener saw %d publishes before release, want 2 loading publishes", n)
	}

	close(release)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 || !seen[2].Succeeded() {
		t.Errorf("publishes = %+v, want a single success after both loadings", seen)
	}
}

func TestPanickingListenerDoesNotWedgeTrigger(t *testing.T) {
	c := New[okBody](WithDoer(respond(200, "200 OK", `{"ok":true}`)))
	cancel := c.Subscribe(func(s State[okBody]) {
		if s.Loading() {
			panic("listener exploded")
		}
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("listener panic should reach the Trigger caller")
			}
		}()
		c.Trigger(context.Background(), "http://registry.test/", Options{})
	}()
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Trigger(context.Background(), "http://registry.test/", Options{})
		c.Wait()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Trigger blocked after a listener panicked")
	}
	if !c.State().Succeeded() {
		t.Errorf("Phase = %v, want success", c.State().Phase)
	}
}

func TestStaleCompletionIsIgnored(t *testing.T) {
	slow := make(chan struct{})
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == "/old" {
			<-slow
			return response(200, "200 OK", `{"ok":false}`), nil
		}
		return response(200, "200 OK", `{"ok":true}`), nil
	})

	c := New[okBody](WithDoer(doer))
	done := make(chan struct{})
	cancel := c.Subscribe(func(s State[okBody]) {
		if s.Succeeded() {
			close(done)
		}
	})

	c.Trigger(context.Background(), "http://registry.test/old", Options{})
	c.Trigger(context.Background(), "http://registry.test/new", Options{})
	if s := c.State(); !s.Loading() && !s.Succeeded() {
		t.Errorf("Phase = %v after second Trigger, want loading or success of the newer request", s.Phase)
	}

	// The newer request finishes while the older one is still blocked.
	<-done
	cancel()

	close(slow)
	c.Wait()

	if s := c.State(); !s.Data.OK {
		t.Errorf("older completion overwrote newer state: %+v", s)
	}
}

func TestSubscribeOrder(t *testing.T) {
	c := New[okBody](WithDoer(respond(200, "200 OK", `{"ok":true}`)))

	var mu sync.Mutex
	var phases []Phase
	cancel := c.Subscribe(func(s State[okBody]) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase)
	})

	c.Trigger(context.Background(), "http://registry.test/", Options{})
	c.Wait()

	mu.Lock()
	got := append([]Phase(nil), phases...)
	mu.Unlock()
	if len(got) != 2 || got[0] != PhaseLoading || got[1] != PhaseSuccess {
		t.Errorf("phases = %v, want [loading success]", got)
	}

	cancel()
	c.Trigger(context.Background(), "http://registry.test/", Options{})
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(phases) != 2 {
		t.Errorf("cancelled subscription still notified: %v", phases)
	}
}

func TestContextCancellationAbortsTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := New[okBody](WithDoer(server.Client()))
	c.Trigger(ctx, server.URL, Options{})
	cancel()
	c.Wait()

	s := c.State()
	if !s.Failed() {
		t.Fatalf("Phase = %v, want failure after context cancellation", s.Phase)
	}
	if !stderrors.Is(s.Err, context.Canceled) {
		t.Errorf("Err = %v, want it to wrap context.Canceled", s.Err)
	}
}

package scenario

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ysmood/gson"
)

// corsHeaders are added to every mocked response so an application served
// from another origin than its API can still read the canned payloads.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":      "*",
	"Access-Control-Allow-Methods":     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	"Access-Control-Allow-Headers":     "Authorization, Content-Type",
	"Access-Control-Allow-Credentials": "true",
}

// MockSet is the set of route mocks installed for one scenario together with
// the interception records they produce. It is safe for concurrent use: the
// browser's hijack router records on its own goroutine while the scenario
// waits.
type MockSet struct {
	fixtures FixtureSource
	now      func() time.Time

	mu        sync.Mutex
	mocks     []RouteMock
	pending   map[string][]*Interception
	counts    map[string]int
	unmatched []string
	failed    map[string][]error
	notify    chan struct{}
}

// NewMockSet validates mocks and builds a set. A later mock with the same
// alias replaces the earlier one in place, so group and scenario mocks can
// override suite defaults.
func NewMockSet(fixtures FixtureSource, mocks ...RouteMock) (*MockSet, error) {
	s := &MockSet{
		fixtures: fixtures,
		now:      time.Now,
		pending:  make(map[string][]*Interception),
		counts:   make(map[string]int),
		failed:   make(map[string][]error),
		notify:   make(chan struct{}),
	}
	index := make(map[string]int)
	for _, m := range mocks {
		if err := validateMock(m); err != nil {
			return nil, err
		}
		if i, ok := index[m.Alias]; ok {
			s.mocks[i] = m
			continue
		}
		index[m.Alias] = len(s.mocks)
		s.mocks = append(s.mocks, m)
	}
	return s, nil
}

func validateMock(m RouteMock) error {
	switch {
	case m.Alias == "":
		return fmt.Errorf("route mock %s: alias is required", m)
	case m.Pattern == "":
		return fmt.Errorf("route mock %s: pattern is required", m)
	case !validPattern(m.Pattern):
		return fmt.Errorf("route mock %s: malformed pattern", m)
	case m.Responder == nil:
		return fmt.Errorf("route mock %s: responder is required", m)
	}
	return nil
}

// Mocks returns the installed mocks in match order.
func (s *MockSet) Mocks() []RouteMock {
	out := make([]RouteMock, len(s.mocks))
	copy(out, s.mocks)
	return out
}

// Match returns the first mock accepting method and url.
func (s *MockSet) Match(method, url string) (RouteMock, bool) {
	for _, m := range s.mocks {
		if matchMethod(m.Method, method) && matchURL(m.Pattern, url) {
			return m, true
		}
	}
	return RouteMock{}, false
}

// Preflight reports whether url is covered by any mock regardless of method.
// CORS preflights for mocked routes are answered locally.
func (s *MockSet) Preflight(url string) bool {
	for _, m := range s.mocks {
		if matchURL(m.Pattern, url) {
			return true
		}
	}
	return false
}

// Serve answers req from the first matching mock and records the exchange.
// ok is false when no mock matches; the request is then recorded as
// unmatched and should continue to the network.
func (s *MockSet) Serve(req Request) (resp Response, ok bool, err error) {
	if req.Method == http.MethodOptions && s.Preflight(req.URL) {
		if _, direct := s.Match(req.Method, req.URL); !direct {
			return Response{Status: http.StatusNoContent, Header: withCORS(nil)}, true, nil
		}
	}

	m, ok := s.Match(req.Method, req.URL)
	if !ok {
		s.recordUnmatched(req)
		return Response{}, false, nil
	}

	resp, err = m.Responder.Respond(req, s.fixtures)
	if err != nil {
		err = fmt.Errorf("mock @%s: %s %s: %w", m.Alias, req.Method, req.URL, err)
		s.recordFailure(m.Alias, err)
		return Response{}, true, err
	}
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	resp.Header = withCORS(resp.Header)
	s.record(m.Alias, req, resp)
	return resp, true, nil
}

func withCORS(h map[string]string) map[string]string {
	out := make(map[string]string, len(h)+len(corsHeaders))
	for k, v := range corsHeaders {
		out[k] = v
	}
	for k, v := range h {
		out[k] = v
	}
	return out
}

func (s *MockSet) record(alias string, req Request, resp Response) {
	rec := &Interception{
		Alias:      alias,
		Request:    req,
		StatusCode: resp.Status,
		Header:     resp.Header,
		Body:       gson.NewFrom(string(resp.Body)),
		RawBody:    resp.Body,
		At:         s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[alias] = append(s.pending[alias], rec)
	s.counts[alias]++
	s.broadcast()
}

func (s *MockSet) recordUnmatched(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unmatched = append(s.unmatched, req.Method+" "+req.URL)
	s.broadcast()
}

func (s *MockSet) recordFailure(alias string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[alias] = append(s.failed[alias], err)
	s.broadcast()
}

// Failures returns the responder errors of alias, oldest first. A failed
// request was aborted and never becomes an interception.
func (s *MockSet) Failures(alias string) []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.failed[alias]))
	copy(out, s.failed[alias])
	return out
}

// broadcast wakes every waiter. Caller must hold s.mu.
func (s *MockSet) broadcast() {
	close(s.notify)
	s.notify = make(chan struct{})
}

// Count returns how many requests the alias has served so far.
func (s *MockSet) Count(alias string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[alias]
}

// Unmatched returns the requests no mock matched, as "METHOD URL".
func (s *MockSet) Unmatched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.unmatched))
	copy(out, s.unmatched)
	return out
}

// Wait returns the oldest interception of alias not yet returned by an
// earlier Wait, blocking up to timeout for one to arrive.
func (s *MockSet) Wait(ctx context.Context, alias string, timeout time.Duration) (*Interception, error) {
	if !s.declared(alias) {
		return nil, fmt.Errorf("wait @%s: %w", alias, ErrUnknownAlias)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		s.mu.Lock()
		if q := s.pending[alias]; len(q) > 0 {
			rec := q[0]
			s.pending[alias] = q[1:]
			s.mu.Unlock()
			return rec, nil
		}
		ch := s.notify
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, &InterceptionTimeoutError{
					Alias:     alias,
					Timeout:   timeout,
					Unmatched: s.Unmatched(),
					Err:       errors.Join(s.Failures(alias)...),
				}
			}
			return nil, ctx.Err()
		}
	}
}

func (s *MockSet) declared(alias string) bool {
	for _, m := range s.mocks {
		if m.Alias == alias {
			return true
		}
	}
	return false
}

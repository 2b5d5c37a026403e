package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ysmood/gson"
)

// Viewport is the browser window size used for every scenario of a run.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultViewport matches the desktop layout the suite is written against.
var DefaultViewport = Viewport{Width: 1440, Height: 800}

// Request is the part of an intercepted request a Responder can see.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   string
}

// HeaderValue returns the value of the named header, ignoring case.
func (r Request) HeaderValue(name string) string {
	for k, v := range r.Header {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// JSON decodes the request body into v.
func (r Request) JSON(v any) error {
	if r.Body == "" {
		return fmt.Errorf("%s %s: empty request body", r.Method, r.URL)
	}
	return json.Unmarshal([]byte(r.Body), v)
}

// Response is a canned reply substituted for the real network response.
type Response struct {
	Status int
	Header map[string]string
	Body   []byte
}

// FixtureSource resolves named fixture payloads.
type FixtureSource interface {
	Bytes(name string) ([]byte, error)
}

// Responder produces the response for a matched request.
type Responder interface {
	Respond(req Request, fixtures FixtureSource) (Response, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(req Request, fixtures FixtureSource) (Response, error)

// Respond calls f.
func (f ResponderFunc) Respond(req Request, fixtures FixtureSource) (Response, error) {
	return f(req, fixtures)
}

// Fixture replies 200 with the named fixture.
func Fixture(name string) Responder {
	return FixtureWithStatus(name, http.StatusOK)
}

// FixtureWithStatus replies with the named fixture and the given status.
func FixtureWithStatus(name string, status int) Responder {
	return ResponderFunc(func(_ Request, fixtures FixtureSource) (Response, error) {
		return FixtureResponse(fixtures, name, status)
	})
}

// FixtureResponse builds a JSON response from a named fixture.
func FixtureResponse(fixtures FixtureSource, name string, status int) (Response, error) {
	if fixtures == nil {
		return Response{}, fmt.Errorf("fixture %s: no fixture source", name)
	}
	body, err := fixtures.Bytes(name)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status: status,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   body,
	}, nil
}

// JSON replies with v encoded as JSON.
func JSON(status int, v any) Responder {
	return ResponderFunc(func(Request, FixtureSource) (Response, error) {
		body, err := json.Marshal(v)
		if err != nil {
			return Response{}, fmt.Errorf("encoding mock body: %w", err)
		}
		return Response{
			Status: status,
			Header: map[string]string{"Content-Type": "application/json"},
			Body:   body,
		}, nil
	})
}

// RouteMock maps requests with Method matching Pattern to a Responder.
// Alias names the route for Wait.
type RouteMock struct {
	Alias     string
	Method    string
	Pattern   string
	Responder Responder
}

func (m RouteMock) String() string {
	return fmt.Sprintf("%s %s (@%s)", strings.ToUpper(m.Method), m.Pattern, m.Alias)
}

// SessionState is the cookie and local-storage content seeded before, and
// removed after, each scenario of a group.
type SessionState struct {
	Cookies      map[string]string `yaml:"cookies"`
	LocalStorage map[string]string `yaml:"local_storage"`
}

// Empty reports whether the state holds no cookies and no local-storage keys.
func (s SessionState) Empty() bool {
	return len(s.Cookies) == 0 && len(s.LocalStorage) == 0
}

// Interception is the captured request/response pair of a mocked route.
type Interception struct {
	Alias      string
	Request    Request
	StatusCode int
	Header     map[string]string
	Body       gson.JSON
	RawBody    []byte
	At         time.Time
}

// Field returns the body value at path, or a *FieldError when absent.
func (i *Interception) Field(path ...string) (gson.JSON, error) {
	sections := make([]interface{}, len(path))
	for k, p := range path {
		sections[k] = p
	}
	v, ok := i.Body.Gets(sections...)
	if !ok || v.Nil() {
		return gson.JSON{}, &FieldError{Path: strings.Join(path, "."), Want: "a value", Body: string(i.RawBody)}
	}
	return v, nil
}

// Number returns the integral body value at path. Fractions are rejected
// rather than truncated.
func (i *Interception) Number(path ...string) (int64, error) {
	v, err := i.Field(path...)
	if err != nil {
		return 0, err
	}
	fieldErr := func(want string) error {
		return &FieldError{Path: strings.Join(path, "."), Want: want, Body: string(i.RawBody)}
	}
	switch n := v.Val().(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fieldErr("an integer")
		}
		return int64(n), nil
	case json.Number:
		if k, err := n.Int64(); err == nil {
			return k, nil
		}
		return 0, fieldErr("an integer")
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fieldErr("a number")
}

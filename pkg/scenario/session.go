package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Session is the live browser page of one scenario together with its mocks.
// Every interaction and assertion of a scenario goes through it.
type Session struct {
	page     *rod.Page
	mocks    *MockSet
	baseURL  string
	timeout  time.Duration
	wait     time.Duration
	poll     poller
	log      *slog.Logger
	visited  bool
	viewport Viewport
}

// Page returns the underlying Rod page for steps the Session does not cover.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Mocks returns the mocks installed for this scenario.
func (s *Session) Mocks() *MockSet {
	return s.mocks
}

// BaseURL returns the application origin the session navigates to.
func (s *Session) BaseURL() string {
	return s.baseURL
}

func (s *Session) ready() error {
	if s == nil || s.page == nil {
		return ErrNoPage
	}
	return nil
}

// Visit navigates to path relative to the base URL and waits for the load
// event.
func (s *Session) Visit(ctx context.Context, path string) error {
	if err := s.ready(); err != nil {
		return err
	}
	url := strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	p := s.page.Context(ctx).Timeout(s.wait)
	defer p.CancelTimeout()
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("visit %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("visit %s: waiting for load: %w", url, err)
	}
	s.visited = true
	s.log.Debug("visited", "url", url)
	return nil
}

// SetViewport resizes the emulated window.
func (s *Session) SetViewport(v Viewport) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             v.Width,
		Height:            v.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("set viewport %dx%d: %w", v.Width, v.Height, err)
	}
	s.viewport = v
	return nil
}

// Viewport returns the last viewport applied to the page.
func (s *Session) Viewport() Viewport {
	return s.viewport
}

// Wait blocks until the next request of alias has been served, for at most
// the session's wait timeout or the first timeout given.
func (s *Session) Wait(ctx context.Context, alias string, timeout ...time.Duration) (*Interception, error) {
	d := s.wait
	if len(timeout) > 0 {
		d = timeout[0]
	}
	rec, err := s.mocks.Wait(ctx, alias, d)
	if err != nil {
		return nil, err
	}
	s.log.Debug("interception", "alias", alias, "status", rec.StatusCode)
	return rec, nil
}

// element waits for loc to exist. The element is bound to ctx, not to the
// lookup timeout.
func (s *Session) element(ctx context.Context, loc Locator) (*rod.Element, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p := s.page.Context(ctx).Timeout(s.timeout)
	defer p.CancelTimeout()
	el, err := p.Element(loc.Selector())
	if err != nil {
		return nil, &AssertionError{
			Step:     "get " + loc.String(),
			Expected: "element to exist",
			Actual:   "no element",
			Timeout:  s.timeout,
			Err:      err,
		}
	}
	return el.Context(ctx), nil
}

// Click waits for loc and clicks it like a user would: scrolled into view and
// hit at its centre.
func (s *Session) Click(ctx context.Context, loc Locator) error {
	el, err := s.element(ctx, loc)
	if err != nil {
		return err
	}
	el = el.Timeout(s.timeout)
	defer el.CancelTimeout()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	s.log.Debug("clicked", "target", loc.String())
	return nil
}

// ForceClick dispatches a click on loc without actionability checks, which
// reaches elements covered by others such as a backdrop behind a dialog.
func (s *Session) ForceClick(ctx context.Context, loc Locator) error {
	el, err := s.element(ctx, loc)
	if err != nil {
		return err
	}
	if _, err := el.Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("force click %s: %w", loc, err)
	}
	s.log.Debug("force clicked", "target", loc.String())
	return nil
}

// Press sends a key press to the focused element.
func (s *Session) Press(ctx context.Context, key input.Key) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.page.Context(ctx).Keyboard.Press(key); err != nil {
		return fmt.Errorf("press key: %w", err)
	}
	return nil
}

// eval runs js with args and returns its JSON result.
func (s *Session) eval(ctx context.Context, js string, args ...interface{}) (gson.JSON, error) {
	if err := s.ready(); err != nil {
		return gson.JSON{}, err
	}
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

// evalInto runs js and decodes its result into v.
func (s *Session) evalInto(ctx context.Context, v any, js string, args ...interface{}) error {
	res, err := s.eval(ctx, js, args...)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(res.JSON("", "")), v)
}

const readLocalStorageJS = `() => {
	const out = {};
	for (let i = 0; i < localStorage.length; i++) {
		const k = localStorage.key(i);
		out[k] = localStorage.getItem(k);
	}
	return out;
}`

// Seed writes state into the browser: cookies scoped to the base URL and
// local storage of the current origin. The page must have visited the
// application first so local storage belongs to the right origin.
func (s *Session) Seed(ctx context.Context, state SessionState) error {
	if err := s.ready(); err != nil {
		return err
	}
	if len(state.LocalStorage) > 0 && !s.visited {
		return fmt.Errorf("seed local storage: page has not visited %s yet", s.baseURL)
	}

	if len(state.Cookies) > 0 {
		params := make([]*proto.NetworkCookieParam, 0, len(state.Cookies))
		for _, name := range sortedKeys(state.Cookies) {
			params = append(params, &proto.NetworkCookieParam{
				Name:  name,
				Value: state.Cookies[name],
				URL:   s.baseURL,
			})
		}
		if err := s.page.Browser().Context(ctx).SetCookies(params); err != nil {
			return fmt.Errorf("seed cookies: %w", err)
		}
	}

	for _, k := range sortedKeys(state.LocalStorage) {
		if _, err := s.eval(ctx, `(k, v) => localStorage.setItem(k, v)`, k, state.LocalStorage[k]); err != nil {
			return fmt.Errorf("seed local storage %q: %w", k, err)
		}
	}
	return nil
}

// Clear removes every cookie of the browser context and the local storage of
// the current origin.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.page.Browser().Context(ctx).SetCookies(nil); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	if s.visited {
		if _, err := s.eval(ctx, `() => localStorage.clear()`); err != nil {
			return fmt.Errorf("clear local storage: %w", err)
		}
	}
	return nil
}

// Snapshot reads all cookies of the browser context and the local storage of
// the current origin.
func (s *Session) Snapshot(ctx context.Context) (SessionState, error) {
	if err := s.ready(); err != nil {
		return SessionState{}, err
	}
	state := SessionState{
		Cookies:      make(map[string]string),
		LocalStorage: make(map[string]string),
	}

	cookies, err := s.page.Browser().Context(ctx).GetCookies()
	if err != nil {
		return SessionState{}, fmt.Errorf("read cookies: %w", err)
	}
	for _, c := range cookies {
		state.Cookies[c.Name] = c.Value
	}

	if s.visited {
		if err := s.evalInto(ctx, &state.LocalStorage, readLocalStorageJS); err != nil {
			return SessionState{}, fmt.Errorf("read local storage: %w", err)
		}
	}
	return state, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

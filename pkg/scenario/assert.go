package scenario

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WaitOption tunes a single assertion.
type WaitOption func(*waitOptions)

type waitOptions struct {
	timeout time.Duration
}

// Within overrides the session's default timeout for one assertion.
func Within(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.timeout = d
	}
}

func (s *Session) timeoutFor(opts []WaitOption) time.Duration {
	o := waitOptions{timeout: s.timeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o.timeout
}

// elementState is what inspectJS reports about one element.
type elementState struct {
	Found    bool     `json:"found"`
	Text     string   `json:"text"`
	Children int      `json:"children"`
	Empty    bool     `json:"empty"`
	Visible  bool     `json:"visible"`
	Enabled  bool     `json:"enabled"`
	Attrs    []string `json:"attrs"`
}

const inspectJS = `(sel, attr) => {
	const el = document.querySelector(sel);
	if (!el) return { found: false };
	const style = window.getComputedStyle(el);
	const rect = el.getBoundingClientRect();
	const text = el.textContent || '';
	return {
		found: true,
		text: text,
		children: el.children.length,
		empty: el.children.length === 0 && text.trim() === '',
		visible: style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0,
		enabled: !el.disabled,
		attrs: attr ? Array.from(el.querySelectorAll('[' + attr + ']')).map(n => n.getAttribute(attr)) : [],
	};
}`

func (s *Session) inspect(ctx context.Context, loc Locator, attr string) (elementState, error) {
	var st elementState
	err := s.evalInto(ctx, &st, inspectJS, loc.Selector(), attr)
	return st, err
}

// expectElement polls loc until cond accepts its state.
func (s *Session) expectElement(ctx context.Context, step, expected string, loc Locator, attr string, opts []WaitOption,
	cond func(elementState) (bool, string)) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.poll.until(ctx, step, expected, s.timeoutFor(opts), func(ctx context.Context) (bool, string, error) {
		st, err := s.inspect(ctx, loc, attr)
		if err != nil {
			return false, "", err
		}
		if !st.Found {
			return false, "no element " + loc.String(), nil
		}
		ok, actual := cond(st)
		return ok, actual, nil
	})
}

func quoteText(t string) string {
	return strconv.Quote(truncate(strings.Join(strings.Fields(t), " "), 120))
}

// Contains asserts that the text content of loc includes text.
func (s *Session) Contains(ctx context.Context, loc Locator, text string, opts ...WaitOption) error {
	return s.expectElement(ctx, loc.String()+" contains", strconv.Quote(text), loc, "", opts,
		func(st elementState) (bool, string) {
			return strings.Contains(st.Text, text), quoteText(st.Text)
		})
}

// NotContains asserts that the text content of loc does not include text.
func (s *Session) NotContains(ctx context.Context, loc Locator, text string, opts ...WaitOption) error {
	return s.expectElement(ctx, loc.String()+" does not contain", "no "+strconv.Quote(text), loc, "", opts,
		func(st elementState) (bool, string) {
			return !strings.Contains(st.Text, text), quoteText(st.Text)
		})
}

// Empty asserts that loc exists and has neither child elements nor text.
func (s *Session) Empty(ctx context.Context, loc Locator, opts ...WaitOption) error {
	return s.expectElement(ctx, loc.String()+" is empty", "no content", loc, "", opts,
		func(st elementState) (bool, string) {
			return st.Empty, fmt.Sprintf("%d children, text %s", st.Children, quoteText(st.Text))
		})
}

// NotEmpty asserts that loc has child elements or text.
func (s *Session) NotEmpty(ctx context.Context, loc Locator, opts ...WaitOption) error {
	return s.expectElement(ctx, loc.String()+" is not empty", "some content", loc, "", opts,
		func(st elementState) (bool, string) {
			return !st.Empty, "empty element"
		})
}

// ChildCount asserts the number of child elements of loc.
func (s *Session) ChildCount(ctx context.Context, loc Locator, n int, opts ...WaitOption) error {
	return s.expectElement(ctx, loc.String()+" children", strconv.Itoa(n)+" children", loc, "", opts,
		func(st elementState) (bool, string) {
			return st.Children == n, strconv.Itoa(st.Children) + " children"
		})
}

// Visible asserts that loc is rendered with a non-zero box.
func (s *Session) Visible(ctx context.Context, loc Locator, opts ...WaitOption) error {
	return s.expectElement(ctx, loc.String()+" is visible", "visible", loc, "", opts,
		func(st elementState) (bool, string) {
			return st.Visible, "hidden"
		})
}

// Enabled asserts that loc is not disabled.
func (s *Session) Enabled(ctx context.Context, loc Locator, opts ...WaitOption) error {
	return s.expectElement(ctx, loc.String()+" is enabled", "enabled", loc, "", opts,
		func(st elementState) (bool, string) {
			return st.Enabled, "disabled"
		})
}

// InOrder asserts that the descendants of loc carrying attr hold want as a
// subsequence, in document order.
func (s *Session) InOrder(ctx context.Context, loc Locator, attr string, want []string, opts ...WaitOption) error {
	expected := attr + " order " + strings.Join(want, ", ")
	return s.expectElement(ctx, loc.String()+" order", expected, loc, attr, opts,
		func(st elementState) (bool, string) {
			return isSubsequence(want, st.Attrs), "[" + strings.Join(st.Attrs, ", ") + "]"
		})
}

// isSubsequence reports whether want appears in got in order, not
// necessarily contiguously.
func isSubsequence(want, got []string) bool {
	i := 0
	for _, g := range got {
		if i < len(want) && g == want[i] {
			i++
		}
	}
	return i == len(want)
}

const textVisibleJS = `(text) => {
	const hits = Array.from(document.querySelectorAll('body *')).filter(n =>
		(n.textContent || '').includes(text) &&
		!Array.from(n.children).some(c => (c.textContent || '').includes(text)));
	if (hits.length === 0) return { found: false };
	const visible = hits.some(n => {
		const style = window.getComputedStyle(n);
		const rect = n.getBoundingClientRect();
		return style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0;
	});
	return { found: true, visible: visible };
}`

// TextVisible asserts that some element of the page shows text and is
// visible.
func (s *Session) TextVisible(ctx context.Context, text string, opts ...WaitOption) error {
	if err := s.ready(); err != nil {
		return err
	}
	step := "contains " + strconv.Quote(text)
	return s.poll.until(ctx, step, "visible text "+strconv.Quote(text), s.timeoutFor(opts),
		func(ctx context.Context) (bool, string, error) {
			var st elementState
			if err := s.evalInto(ctx, &st, textVisibleJS, text); err != nil {
				return false, "", err
			}
			switch {
			case !st.Found:
				return false, "text not on page", nil
			case !st.Visible:
				return false, "text hidden", nil
			}
			return true, "", nil
		})
}

// StorageEmpty asserts that no cookie and no local-storage key is set.
func (s *Session) StorageEmpty(ctx context.Context, opts ...WaitOption) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.poll.until(ctx, "session storage", "no cookies and empty local storage", s.timeoutFor(opts),
		func(ctx context.Context) (bool, string, error) {
			st, err := s.Snapshot(ctx)
			if err != nil {
				return false, "", err
			}
			return st.Empty(), describeState(st), nil
		})
}

// StorageHas asserts that every entry of want is present with its value.
func (s *Session) StorageHas(ctx context.Context, want SessionState, opts ...WaitOption) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.poll.until(ctx, "session storage", describeState(want), s.timeoutFor(opts),
		func(ctx context.Context) (bool, string, error) {
			st, err := s.Snapshot(ctx)
			if err != nil {
				return false, "", err
			}
			return hasAll(st.Cookies, want.Cookies) && hasAll(st.LocalStorage, want.LocalStorage), describeState(st), nil
		})
}

func hasAll(got, want map[string]string) bool {
	for k, v := range want {
		if g, ok := got[k]; !ok || g != v {
			return false
		}
	}
	return true
}

func describeState(st SessionState) string {
	var parts []string
	for _, k := range sortedKeys(st.Cookies) {
		parts = append(parts, "cookie "+k+"="+st.Cookies[k])
	}
	for _, k := range sortedKeys(st.LocalStorage) {
		parts = append(parts, "localStorage "+k+"="+st.LocalStorage[k])
	}
	if len(parts) == 0 {
		return "empty storage"
	}
	return strings.Join(parts, ", ")
}

// Expect checks a non-DOM condition immediately, typically on an
// interception record.
func Expect(ok bool, step, expected, actual string) error {
	if ok {
		return nil
	}
	return &AssertionError{Step: step, Expected: expected, Actual: actual}
}

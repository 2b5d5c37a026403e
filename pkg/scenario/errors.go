package scenario

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoPage is returned by session operations before a page is attached.
	ErrNoPage = errors.New("scenario: no page attached to session")

	// ErrUnknownAlias is returned when waiting on an alias no mock declares.
	ErrUnknownAlias = errors.New("scenario: unknown route alias")
)

// AssertionError reports an expected DOM, storage or payload condition that
// did not hold, either immediately or before its timeout elapsed.
type AssertionError struct {
	Step     string
	Expected string
	Actual   string
	Timeout  time.Duration // zero for immediate assertions
	Err      error         // last error seen while polling, if any
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Step)
	if e.Timeout > 0 {
		fmt.Fprintf(&b, ": timed out after %v", e.Timeout)
	}
	fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	if e.Err != nil {
		fmt.Fprintf(&b, " (last error: %v)", e.Err)
	}
	return b.String()
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// InterceptionTimeoutError means no request matched the alias's route within
// the timeout. Unmatched lists the requests that reached the network instead,
// which usually points at a pattern or method mismatch. Err holds the errors
// of matched requests whose responder failed.
type InterceptionTimeoutError struct {
	Alias     string
	Timeout   time.Duration
	Unmatched []string
	Err       error
}

func (e *InterceptionTimeoutError) Error() string {
	msg := fmt.Sprintf("wait @%s: no matching request within %v", e.Alias, e.Timeout)
	if e.Err != nil {
		msg += "; responder failed: " + e.Err.Error()
	}
	if len(e.Unmatched) > 0 {
		msg += "; unmatched requests: " + strings.Join(e.Unmatched, ", ")
	}
	return msg
}

func (e *InterceptionTimeoutError) Unwrap() error {
	return e.Err
}

// FieldError reports a payload that lacks a field or carries it with the
// wrong type.
type FieldError struct {
	Path string
	Want string
	Body string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: want %s in body %s", e.Path, e.Want, truncate(e.Body, 256))
}

// ScenarioPanic wraps a value recovered from a panicking scenario body.
type ScenarioPanic struct {
	Value any
}

func (e *ScenarioPanic) Error() string {
	if err, ok := e.Value.(error); ok {
		return "scenario panicked: " + err.Error()
	}
	return fmt.Sprintf("scenario panicked: %v", e.Value)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

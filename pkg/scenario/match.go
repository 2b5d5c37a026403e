package scenario

import (
	"net/url"
	"path"
	"strings"
)

// matchMethod reports whether a mock declared for want accepts got.
// An empty or "*" method accepts anything.
func matchMethod(want, got string) bool {
	if want == "" || want == "*" {
		return true
	}
	return strings.EqualFold(want, got)
}

// matchURL reports whether rawURL satisfies pattern.
//
// Patterns containing "://" are compared against scheme://host/path, anything
// else against the path alone. Query strings and fragments of the request
// never take part. Globs follow path.Match, so "*" stays within one path
// segment and "?" matches one character.
func matchURL(pattern, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	subject := u.EscapedPath()
	if subject == "" {
		subject = "/"
	}
	if strings.Contains(pattern, "://") {
		subject = u.Scheme + "://" + u.Host + subject
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return pattern == subject
	}
	ok, err := path.Match(pattern, subject)
	return err == nil && ok
}

// validPattern reports whether pattern is a well-formed glob.
func validPattern(pattern string) bool {
	_, err := path.Match(pattern, "")
	return err == nil
}

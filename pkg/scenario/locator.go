package scenario

import (
	"fmt"
	"strings"
)

// Locator identifies one element of the page by CSS selector. Locators are
// built from typed parts so identifiers coming from fixtures are always
// quoted, never spliced into selector syntax.
type Locator struct {
	name     string
	selector string
}

// CSS wraps a literal selector written by the suite author.
func CSS(selector string) Locator {
	return Locator{name: selector, selector: selector}
}

// Attr locates the first element whose attribute equals value.
func Attr(attr, value string) Locator {
	sel := fmt.Sprintf("[%s=%s]", attr, cssString(value))
	return Locator{name: sel, selector: sel}
}

// DataCy locates the element carrying the test attribute data-cy=value.
func DataCy(value string) Locator {
	return Attr("data-cy", value)
}

// ID locates the element with the given id attribute.
func ID(id string) Locator {
	l := Attr("id", id)
	l.name = "#" + id
	return l
}

// Child narrows l to its direct child matching selector.
func (l Locator) Child(selector string) Locator {
	return Locator{
		name:     l.name + " > " + selector,
		selector: l.selector + " > " + selector,
	}
}

// Find narrows l to a descendant matching selector.
func (l Locator) Find(selector string) Locator {
	return Locator{
		name:     l.name + " " + selector,
		selector: l.selector + " " + selector,
	}
}

// Named returns a copy of l reported as name in diagnostics.
func (l Locator) Named(name string) Locator {
	l.name = name
	return l
}

// Selector returns the CSS selector.
func (l Locator) Selector() string {
	return l.selector
}

func (l Locator) String() string {
	return l.name
}

// IsZero reports whether l was never initialised.
func (l Locator) IsZero() bool {
	return l.selector == ""
}

// cssString quotes s as a CSS string literal.
func cssString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\a `)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\%x `, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

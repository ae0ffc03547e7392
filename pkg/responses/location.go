package responses

import (
	"fmt"
	"net/url"

	"github.com/spotus/spotus_viewer/pkg/tabs"
)

// Location is the browser-style address of the page being viewed.
type Location struct {
	u *url.URL
}

// ParseLocation parses an absolute or path-only page address.
func ParseLocation(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", raw, err)
	}
	return &Location{u: u}, nil
}

// Fragment returns "#frag" or "".
func (l *Location) Fragment() string {
	if l.u.Fragment == "" {
		return ""
	}
	return "#" + l.u.Fragment
}

// SetFragment replaces the fragment. Navigation between tabs uses this.
func (l *Location) SetFragment(f string) {
	l.u.Fragment = tabs.NormalizeFragment(f)
	if l.u.Fragment != "" {
		l.u.Fragment = l.u.Fragment[1:]
	}
}

// Query returns a copy of the query parameters.
func (l *Location) Query() url.Values {
	return l.u.Query()
}

// Path returns the page path with the query, without the fragment.
func (l *Location) Path() string {
	c := *l.u
	c.Fragment = ""
	c.Scheme, c.Host, c.User = "", "", nil
	return c.String()
}

// Sync mirrors flag and search into the query when the response list is the
// addressed anchor. Page and page size are never written. It reports whether
// the location changed.
func (l *Location) Sync(s PageState) bool {
	if l.Fragment() != tabs.ResponsesAnchor {
		return false
	}
	q := "flag=" + s.Flag.LocationValue() + "&search=" + url.QueryEscape(s.Search)
	if q == l.u.RawQuery {
		return false
	}
	l.u.RawQuery = q
	return true
}

func (l *Location) String() string {
	return l.u.String()
}

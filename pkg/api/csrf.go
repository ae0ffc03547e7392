package api

import (
	"net/http"
	"net/url"
	"strings"
)

// CSRFTransport attaches the anti-forgery token to unsafe requests sent to
// the site's own origin. The token is read from the csrftoken cookie in the
// jar at send time, so a rotated cookie is picked up on the next request.
type CSRFTransport struct {
	base   http.RoundTripper
	jar    http.CookieJar
	origin *url.URL
}

// NewCSRFTransport wraps base. A nil base uses http.DefaultTransport.
func NewCSRFTransport(base http.RoundTripper, jar http.CookieJar, origin *url.URL) *CSRFTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &CSRFTransport{base: base, jar: jar, origin: origin}
}

// RoundTrip implements http.RoundTripper.
func (t *CSRFTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if IsSafeMethod(req.Method) || !sameOrigin(req.URL, t.origin) {
		return t.base.RoundTrip(req)
	}

	token := t.token(req.URL)
	if token == "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set(CSRFHeaderName, token)
	if r.Header.Get("Referer") == "" {
		// Django rejects unsafe HTTPS requests without a same-origin Referer.
		r.Header.Set("Referer", originString(t.origin)+"/")
	}
	return t.base.RoundTrip(r)
}

func (t *CSRFTransport) token(u *url.URL) string {
	if t.jar == nil {
		return ""
	}
	for _, c := range t.jar.Cookies(u) {
		if c.Name == CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

// IsSafeMethod reports whether method needs no CSRF protection.
func IsSafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func sameOrigin(u, origin *url.URL) bool {
	if u == nil || origin == nil {
		return false
	}
	return strings.EqualFold(u.Scheme, origin.Scheme) && strings.EqualFold(u.Host, origin.Host)
}

func originString(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

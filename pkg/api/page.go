package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FetchPage downloads the HTML of a site page. target may be a path or an
// absolute URL on the same site; query and fragment are dropped.
func (c *Client) FetchPage(ctx context.Context, target string) ([]byte, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	abs := c.base.ResolveReference(&url.URL{Path: u.Path})
	if u.IsAbs() && !sameOrigin(u, c.base) {
		return nil, fmt.Errorf("page %s is not on %s", target, originString(c.base))
	}

	req, err := c.newRequest(ctx, http.MethodGet, abs.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	return c.do(req)
}

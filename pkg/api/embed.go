package api

import (
	"context"
	"net/http"
	"net/url"
)

// OEmbedPath returns a rendered embed fragment for a data URL.
const OEmbedPath = "/assignments/oembed/"

// OEmbed fetches the embed HTML fragment for dataURL.
func (c *Client) OEmbed(ctx context.Context, dataURL string) (string, error) {
	q := url.Values{}
	q.Set("url", dataURL)
	req, err := c.newRequest(ctx, http.MethodGet, c.URL(OEmbedPath, q), nil)
	if err != nil {
		return "", err
	}
	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

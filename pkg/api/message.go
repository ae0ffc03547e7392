package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MessagePath sends an email to the author of a response.
const MessagePath = "/assignments/message/"

// Message is the message-author form.
type Message struct {
	ResponseID int64
	Subject    string
	Body       string
}

// Values form-encodes m.
func (m Message) Values() url.Values {
	v := url.Values{}
	v.Set("response", strconv.FormatInt(m.ResponseID, 10))
	v.Set("subject", m.Subject)
	v.Set("body", m.Body)
	return v
}

// SendMessage posts the message form. Server-side validation failures come
// back as a *StatusError carrying the site's error text.
func (c *Client) SendMessage(ctx context.Context, m Message) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.URL(MessagePath, nil), strings.NewReader(m.Values().Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	_, err = c.do(req)
	return err
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spotus/spotus_viewer/pkg/model"
)

// ResponsesPath is the moderation listing endpoint.
const ResponsesPath = "/api/assignment-responses/"

// ListQuery selects one page of responses.
type ListQuery struct {
	Assignment int64
	Page       int
	PageSize   int
	Flag       model.FlagFilter
	Search     string
}

// Values encodes q as listing query parameters. flag is omitted for the
// any filter; search is always sent, empty included.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("assignment", strconv.FormatInt(q.Assignment, 10))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if flag, ok := q.Flag.QueryValue(); ok {
		v.Set("flag", flag)
	}
	v.Set("search", q.Search)
	return v
}

// ListResponses fetches one page of responses.
func (c *Client) ListResponses(ctx context.Context, q ListQuery) (*model.ResponsePage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.URL(ResponsesPath, q.Values()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var page model.ResponsePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode responses page: %w", err)
	}
	return &page, nil
}

// Patch is a partial update of a response's moderation fields.
type Patch map[string]any

// FlagPatch sets the flag field.
func FlagPatch(v bool) Patch { return Patch{model.MutationFieldFlag: v} }

// GalleryPatch sets the gallery field.
func GalleryPatch(v bool) Patch { return Patch{model.MutationFieldGallery: v} }

// TagsPatch replaces the full tag list. A nil list clears the tags.
func TagsPatch(tags []string) Patch {
	if tags == nil {
		tags = []string{}
	}
	return Patch{model.MutationFieldTags: tags}
}

// UpdateResponse sends a partial update for response id. The response body
// is not used.
func (c *Client) UpdateResponse(ctx context.Context, id int64, patch Patch) error {
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	target := c.URL(fmt.Sprintf("%s%d/", ResponsesPath, id), nil)
	req, err := c.newRequest(ctx, http.MethodPatch, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	_, err = c.do(req)
	return err
}

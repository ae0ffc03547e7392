package responses

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spotus/spotus_viewer/pkg/model"
)

// Page size bounds.
const (
	MinPageSize     = 10
	MaxPageSize     = 50
	DefaultPageSize = 10
)

// PageState is the controller's query state. Only the controller mutates it.
type PageState struct {
	Page     int
	PageSize int
	Flag     model.FlagFilter
	Search   string
}

// NewPageState seeds state from the page URL query. Page and page size are
// never read from the URL.
func NewPageState(q url.Values, pageSize int) PageState {
	return PageState{
		Page:     1,
		PageSize: ClampPageSize(pageSize),
		Flag:     model.ParseFlagQuery(q.Get("flag")),
		Search:   q.Get("search"),
	}
}

// LastPage is ceil(count/size), 0 for an empty result set.
func LastPage(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// ClampPage keeps page within [1, max(1, lastPage)].
func ClampPage(page, lastPage int) int {
	if page > lastPage {
		page = lastPage
	}
	if page < 1 {
		page = 1
	}
	return page
}

// ClampPageSize keeps n within [MinPageSize, MaxPageSize].
func ClampPageSize(n int) int {
	switch {
	case n < MinPageSize:
		return MinPageSize
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}

// ParsePageSize reads page-size selector input. Unparsable input falls back
// to DefaultPageSize before clamping.
func ParsePageSize(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultPageSize
	}
	return ClampPageSize(n)
}

// ParsePageSelect reads page-selector input: unparsable or below 1 selects
// page 1, above lastPage selects lastPage.
func ParsePageSelect(s string, lastPage int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return ClampPage(n, lastPage)
}

// Summary is the pagination line shown above the list.
type Summary struct {
	First int
	Last  int
	Total int
	Pages int
	Page  int
}

// Summarize computes the display range for the current page.
func Summarize(s PageState, count int) Summary {
	offset := (s.Page - 1) * s.PageSize
	return Summary{
		First: offset + 1,
		Last:  min(offset+s.PageSize, count),
		Total: count,
		Pages: LastPage(count, s.PageSize),
		Page:  s.Page,
	}
}

// Empty reports whether there is nothing to show.
func (s Summary) Empty() bool { return s.Total == 0 }

// PageOptions returns the page selector entries 1..lastPage.
func PageOptions(lastPage int) []int {
	opts := make([]int, 0, lastPage)
	for i := 1; i <= lastPage; i++ {
		opts = append(opts, i)
	}
	return opts
}

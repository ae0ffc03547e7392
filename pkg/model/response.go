package model

import (
	"fmt"
	"strings"
)

// FieldValue is one labelled answer in a response. Value holds markdown.
type FieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ResponseRecord represents a single assignment response as returned by the
// moderation API. Flag, Gallery and Tags are only present when the viewer
// has edit access to the assignment.
type ResponseRecord struct {
	ID           int64        `json:"id"`
	Assignment   int64        `json:"assignment,omitempty"`
	User         string       `json:"user,omitempty"`
	IPAddress    string       `json:"ip_address,omitempty"`
	Datetime     string       `json:"datetime"`
	Data         string       `json:"data,omitempty"`
	EditUser     string       `json:"edit_user,omitempty"`
	EditDatetime string       `json:"edit_datetime,omitempty"`
	Values       []FieldValue `json:"values"`
	Flag         *bool        `json:"flag,omitempty"`
	Gallery      *bool        `json:"gallery,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
}

// Author returns the display name for whoever submitted the response.
func (r ResponseRecord) Author() string {
	switch {
	case r.User != "":
		return r.User
	case r.IPAddress != "":
		return r.IPAddress
	default:
		return "Anonymous"
	}
}

// EditAccess reports whether the record carries moderation fields.
func (r ResponseRecord) EditAccess() bool {
	return r.Flag != nil
}

// Flagged returns the flag value, false when the field is absent.
func (r ResponseRecord) Flagged() bool {
	return r.Flag != nil && *r.Flag
}

// InGallery returns the gallery value, false when the field is absent.
func (r ResponseRecord) InGallery() bool {
	return r.Gallery != nil && *r.Gallery
}

// Edited reports whether someone other than the author changed the response.
func (r ResponseRecord) Edited() bool {
	return r.EditUser != ""
}

// Messageable reports whether the author can be messaged from the list.
func (r ResponseRecord) Messageable() bool {
	return r.EditAccess() && r.User != ""
}

// EditPath is the site path of the response edit form.
func (r ResponseRecord) EditPath() string {
	return fmt.Sprintf("/assignments/%d/edit/", r.ID)
}

// RevertPath is the site path for reviewing and reverting an edit.
func (r ResponseRecord) RevertPath() string {
	return fmt.Sprintf("/assignments/%d/revert", r.ID)
}

// TagText joins the tags the way the tag box shows them.
func (r ResponseRecord) TagText() string {
	return strings.Join(r.Tags, ", ")
}

// Clone creates a deep copy of the record
func (r ResponseRecord) Clone() ResponseRecord {
	clone := r
	if r.Flag != nil {
		v := *r.Flag
		clone.Flag = &v
	}
	if r.Gallery != nil {
		v := *r.Gallery
		clone.Gallery = &v
	}
	if r.Tags != nil {
		clone.Tags = make([]string, len(r.Tags))
		copy(clone.Tags, r.Tags)
	}
	if r.Values != nil {
		clone.Values = make([]FieldValue, len(r.Values))
		copy(clone.Values, r.Values)
	}
	return clone
}

// ResponsePage is one page of the paginated response listing.
// Next and Previous are page URLs, nil at either end of the result set.
type ResponsePage struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []ResponseRecord `json:"results"`
}

// HasNext reports whether the server advertised a following page.
func (p ResponsePage) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// HasPrevious reports whether the server advertised a preceding page.
func (p ResponsePage) HasPrevious() bool {
	return p.Previous != nil && *p.Previous != ""
}

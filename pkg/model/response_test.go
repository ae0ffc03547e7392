package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestAuthorFallbacks(t *testing.T) {
	tests := []struct {
		name string
		rec  ResponseRecord
		want string
	}{
		{"user", ResponseRecord{User: "Ada", IPAddress: "10.0.0.1"}, "Ada"},
		{"ip", ResponseRecord{IPAddress: "10.0.0.1"}, "10.0.0.1"},
		{"anonymous", ResponseRecord{}, "Anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Author(); got != tt.want {
				t.Errorf("Author() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditAccessFollowsFlagField(t *testing.T) {
	if (ResponseRecord{}).EditAccess() {
		t.Fatal("record without flag field should not have edit access")
	}
	rec := ResponseRecord{Flag: ptr(false), Gallery: ptr(true), User: "bob"}
	if !rec.EditAccess() {
		t.Fatal("record with flag field should have edit access")
	}
	if rec.Flagged() || !rec.InGallery() {
		t.Errorf("Flagged=%v InGallery=%v", rec.Flagged(), rec.InGallery())
	}
	if !rec.Messageable() {
		t.Error("editable record with a user should be messageable")
	}
	rec.User = ""
	if rec.Messageable() {
		t.Error("record without a user should not be messageable")
	}
}

func TestPageNextPreviousAreBoolish(t *testing.T) {
	p := ResponsePage{Next: ptr("http://x/api/?page=2"), Previous: ptr("")}
	if !p.HasNext() {
		t.Error("expected next")
	}
	if p.HasPrevious() {
		t.Error("empty previous should be false")
	}
	if (ResponsePage{}).HasNext() {
		t.Error("nil next should be false")
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := ResponseRecord{ID: 1, Flag: ptr(true), Tags: []string{"a"}, Values: []FieldValue{{"Q", "A"}}}
	c := rec.Clone()
	*c.Flag = false
	c.Tags[0] = "b"
	c.Values[0].Value = "B"
	if !*rec.Flag || rec.Tags[0] != "a" || rec.Values[0].Value != "A" {
		t.Fatalf("clone shares memory with original: %+v", rec)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"one", []string{"one"}},
		{" one ,two,, three ", []string{"one", "two", "three"}},
		{`"quoted", one, one`, []string{"quoted", "one"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseTags(tt.in)); diff != "" {
			t.Errorf("ParseTags(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestFlagFilterMappings(t *testing.T) {
	if ParseFilterValue("flag") != FlagFlagged || ParseFilterValue("no-flag") != FlagUnflagged || ParseFilterValue("x") != FlagAny {
		t.Fatal("filter selector mapping broken")
	}
	if _, ok := FlagAny.QueryValue(); ok {
		t.Error("any filter must not be sent")
	}
	if v, ok := FlagUnflagged.QueryValue(); !ok || v != "false" {
		t.Errorf("unflagged query = %q,%v", v, ok)
	}
	if FlagAny.LocationValue() != "null" {
		t.Errorf("any location = %q", FlagAny.LocationValue())
	}
	for _, f := range []FlagFilter{FlagAny, FlagFlagged, FlagUnflagged} {
		if ParseFlagQuery(f.LocationValue()) != f {
			t.Errorf("location round trip failed for %s", f)
		}
		if ParseFilterValue(f.SelectorValue()) != f {
			t.Errorf("selector round trip failed for %s", f)
		}
	}
	if FlagAny.Next().Next().Next() != FlagAny {
		t.Error("Next should cycle through three states")
	}
}

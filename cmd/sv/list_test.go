package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const listJSON = `{"count": 2, "next": null, "previous": null, "results": [
 {"id": 4, "user": "ada", "datetime": "01/02/2024 03:04 PM",
  "values": [{"field": "Favourite cat", "value": "Tabby"}],
  "data": "https://docs.example/1", "flag": true, "gallery": false, "tags": ["cute"]},
 {"id": 5, "ip_address": "10.0.0.1", "datetime": "01/02/2024 03:05 PM",
  "values": [{"field": "Favourite cat", "value": "Siamese"}]}
]}`

func newSite(t *testing.T) (*httptest.Server, func() []url.Values) {
	t.Helper()
	var mu sync.Mutex
	var queries []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/assignment-responses/":
			mu.Lock()
			queries = append(queries, r.URL.Query())
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, listJSON)
		case "/assignments/oembed/":
			io.WriteString(w, `<div><p>Embedded <b>doc</b></p><script>alert(1)</script></div>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []url.Values {
		mu.Lock()
		defer mu.Unlock()
		return append([]url.Values(nil), queries...)
	}
}

func TestListText(t *testing.T) {
	srv, queries := newSite(t)
	cfg := writeConfig(t, "base_url: "+srv.URL)

	out, err := execute(t, "list", "--config", cfg, "--assignment", "3", "--flag", "flag", "--search", "tab")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Showing 1 - 2 of 2 responses", "From: ada", "From: 10.0.0.1", "Tabby"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	q := queries()[0]
	if q.Get("assignment") != "3" || q.Get("flag") != "true" || q.Get("search") != "tab" || q.Get("page_size") != "10" {
		t.Errorf("unexpected query %v", q)
	}
}

func TestListMarkdownInline(t *testing.T) {
	srv, queries := newSite(t)
	cfg := writeConfig(t, "base_url: "+srv.URL)

	out, err := execute(t, "list", "--config", cfg, "--assignment", "3", "--inline", "--markdown", "--page-size", "99")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Embedded doc") {
		t.Errorf("embed text missing:\n%s", out)
	}
	if strings.Contains(out, "alert(1)") {
		t.Errorf("script leaked into output:\n%s", out)
	}
	if got := queries()[0].Get("page_size"); got != "50" {
		t.Errorf("page_size = %s, want clamped 50", got)
	}
	if _, ok := queries()[0]["flag"]; ok {
		t.Error("flag must be omitted for the all filter")
	}
}

func TestListServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"detail": "nope"}`)
	}))
	defer srv.Close()
	cfg := writeConfig(t, "base_url: "+srv.URL)

	if _, err := execute(t, "list", "--config", cfg, "--assignment", "3"); err == nil {
		t.Fatal("expected an error")
	}
}

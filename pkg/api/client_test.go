package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spotus/spotus_viewer/pkg/model"
)

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	CSRF   string
	Body   string
	CType  string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recorded
}

func (r *recorder) add(req *http.Request) recorded {
	body, _ := io.ReadAll(req.Body)
	rec := recorded{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		CSRF:   req.Header.Get(CSRFHeaderName),
		Body:   string(body),
		CType:  req.Header.Get("Content-Type"),
	}
	r.mu.Lock()
	r.reqs = append(r.reqs, rec)
	r.mu.Unlock()
	return rec
}

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.reqs...)
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithSession("sess", "tok123"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, rec
}

func TestListResponsesQueryAndDecode(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"count": 25, "next": "http://x/?page=3", "previous": null,
			"results": [{"id": 4, "user": "Ada", "datetime": "01/02/2024 03:04 PM",
			"values": [{"field": "Q", "value": "**A**"}], "flag": true, "gallery": false, "tags": ["x"]}]}`)
	})

	page, err := c.ListResponses(context.Background(), ListQuery{Assignment: 9, Page: 2, PageSize: 10, Search: "cats"})
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if page.Count != 25 || !page.HasNext() || page.HasPrevious() {
		t.Errorf("unexpected page meta: %+v", page)
	}
	if len(page.Results) != 1 || !page.Results[0].Flagged() || page.Results[0].InGallery() {
		t.Fatalf("unexpected results: %+v", page.Results)
	}

	got := rec.all()[0]
	if got.Method != http.MethodGet || got.Path != ResponsesPath {
		t.Fatalf("unexpected request %s %s", got.Method, got.Path)
	}
	want := url.Values{
		"assignment": {"9"},
		"page":       {"2"},
		"page_size":  {"10"},
		"search":     {"cats"},
	}
	if diff := cmp.Diff(want, got.Query); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
	if got.CSRF != "" {
		t.Error("GET must not carry the CSRF header")
	}
}

func TestListQueryFlagParameter(t *testing.T) {
	q := ListQuery{Assignment: 1, Page: 1, PageSize: 10, Flag: model.FlagUnflagged}
	if q.Values().Get("flag") != "false" {
		t.Fatalf("flag = %q", q.Values().Get("flag"))
	}
	q.Flag = model.FlagAny
	if _, ok := q.Values()["flag"]; ok {
		t.Fatal("any filter must omit flag")
	}
}

func TestUpdateResponseSendsCSRFAndJSON(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	ctx := context.Background()
	if err := c.UpdateResponse(ctx, 42, FlagPatch(true)); err != nil {
		t.Fatalf("UpdateResponse: %v", err)
	}
	if err := c.UpdateResponse(ctx, 42, TagsPatch(nil)); err != nil {
		t.Fatalf("UpdateResponse: %v", err)
	}

	reqs := rec.all()
	if reqs[0].Method != http.MethodPatch || reqs[0].Path != "/api/assignment-responses/42/" {
		t.Fatalf("unexpected request %s %s", reqs[0].Method, reqs[0].Path)
	}
	if reqs[0].CSRF != "tok123" {
		t.Errorf("CSRF header = %q, want tok123", reqs[0].CSRF)
	}
	if reqs[0].CType != "application/json" {
		t.Errorf("content type = %q", reqs[0].CType)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(reqs[0].Body), &body); err != nil || body["flag"] != true {
		t.Errorf("flag body = %s (%v)", reqs[0].Body, err)
	}
	if reqs[1].Body != `{"tags":[]}` {
		t.Errorf("clearing tags should send an empty list, got %s", reqs[1].Body)
	}
}

func TestCSRFTransportSkipsOtherOrigins(t *testing.T) {
	var gotHeader string
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(CSRFHeaderName)
	}))
	defer other.Close()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	req, _ := http.NewRequest(http.MethodPost, other.URL+"/x", strings.NewReader("a=b"))
	// Same host, different port: a different origin.
	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if gotHeader != "" {
		t.Fatalf("cross-origin request carried CSRF header %q", gotHeader)
	}
}

func TestIsSafeMethod(t *testing.T) {
	for _, m := range []string{"GET", "head", "OPTIONS", "TRACE"} {
		if !IsSafeMethod(m) {
			t.Errorf("%s should be safe", m)
		}
	}
	for _, m := range []string{"POST", "PATCH", "PUT", "DELETE"} {
		if IsSafeMethod(m) {
			t.Errorf("%s should be unsafe", m)
		}
	}
}

func TestStatusErrorCarriesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "no email"}`)
	})

	err := c.SendMessage(context.Background(), Message{ResponseID: 3, Subject: "hi", Body: "there"})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest || se.Message != "no email" {
		t.Fatalf("unexpected status error: %#v", err)
	}
}

func TestSendMessageForm(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status": "ok"}`)
	})
	if err := c.SendMessage(context.Background(), Message{ResponseID: 3, Subject: "Hello", Body: "Thanks!"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	got := rec.all()[0]
	if got.Path != MessagePath || got.CSRF != "tok123" {
		t.Fatalf("unexpected request %+v", got)
	}
	form, err := url.ParseQuery(got.Body)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if form.Get("response") != "3" || form.Get("subject") != "Hello" || form.Get("body") != "Thanks!" {
		t.Errorf("unexpected form %v", form)
	}
}

func TestOEmbed(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<iframe src="https://docs.example/1"></iframe>`)
	})
	html, err := c.OEmbed(context.Background(), "https://docs.example/1")
	if err != nil {
		t.Fatalf("OEmbed: %v", err)
	}
	if !strings.Contains(html, "iframe") {
		t.Errorf("unexpected fragment %q", html)
	}
	if got := rec.all()[0].Query.Get("url"); got != "https://docs.example/1" {
		t.Errorf("url param = %q", got)
	}
}

func TestFetchPageRejectsForeignOrigin(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html></html>")
	})
	if _, err := c.FetchPage(context.Background(), "https://elsewhere.example/assignments/x-1/"); err == nil {
		t.Fatal("expected error for foreign origin")
	}
	body, err := c.FetchPage(context.Background(), "/assignments/cats-1/?flag=true#assignment-responses")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Errorf("body = %q", body)
	}
	if p := rec.all()[0].Path; p != "/assignments/cats-1/" {
		t.Errorf("path = %q", p)
	}
}

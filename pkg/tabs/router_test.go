package tabs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

const fixture = `<html><head><title>Cat pictures</title></head><body>
<ul class="tabs">
  <li><a class="tab" href="#a">Overview</a></li>
  <li><a class="tab" href="#b">Responses</a></li>
  <li><a class="tab" href="#c">Settings</a></li>
  <li><a class="tab" href="/elsewhere/">Not a tab</a></li>
</ul>
<div id="a">
  <h2 class="tab-panel-heading">Overview</h2>
  <p>alpha</p>
  <p id="x">nested x</p>
</div>
<div id="b">
  <p>beta</p>
  <section class="assignment-responses" data-assignment="7"></section>
</div>
<div id="c"><p>gamma</p></div>
<p id="outside">not in a panel</p>
</body></html>`

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func activeKeys(r *Router) []string {
	var keys []string
	for _, t := range r.Tabs() {
		if t.Active {
			keys = append(keys, t.Key)
		}
	}
	return keys
}

func assertOnlyVisible(t *testing.T, r *Router, key string) {
	t.Helper()
	if diff := cmp.Diff([]string{key}, activeKeys(r)); diff != "" {
		t.Fatalf("active tabs mismatch (-want +got):\n%s", diff)
	}
	for _, tab := range r.Tabs() {
		want := tab.Key == key
		if got := !IsHidden(tab.Panel); got != want {
			t.Errorf("panel %s visible = %v, want %v", tab.Key, got, want)
		}
		if got := HasClass(tab.Trigger, ActiveClass); got != want {
			t.Errorf("trigger %s active class = %v, want %v", tab.Key, got, want)
		}
		wantAria := "false"
		if want {
			wantAria = "true"
		}
		if got := Attr(tab.Trigger, "aria-selected"); got != wantAria {
			t.Errorf("trigger %s aria-selected = %q, want %q", tab.Key, got, wantAria)
		}
		wantHidden := "true"
		if want {
			wantHidden = "false"
		}
		if got := Attr(tab.Panel, "aria-hidden"); got != wantHidden {
			t.Errorf("panel %s aria-hidden = %q, want %q", tab.Key, got, wantHidden)
		}
	}
}

func TestNewCollectsTriggersWithFragments(t *testing.T) {
	r := New(parse(t, fixture))
	if diff := cmp.Diff([]string{"#a", "#b", "#c"}, r.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	for _, tab := range r.Tabs() {
		if Attr(tab.Trigger, "tabindex") != "0" {
			t.Errorf("trigger %s missing tabindex", tab.Key)
		}
		if tab.Panel == nil {
			t.Errorf("trigger %s has no panel", tab.Key)
		}
	}
	if r.Tabs()[1].Label != "Responses" {
		t.Errorf("label = %q", r.Tabs()[1].Label)
	}
	if r.Active() != nil {
		t.Error("no tab should be active before Initialize")
	}
}

func TestInitializeEmptyFragmentSelectsFirstTab(t *testing.T) {
	r := New(parse(t, fixture))
	res := r.Initialize("")
	if !res.Changed || res.Tab.Key != "#a" {
		t.Fatalf("unexpected result %+v", res)
	}
	assertOnlyVisible(t, r, "#a")
}

func TestResolveExactKey(t *testing.T) {
	r := New(parse(t, fixture))
	r.Initialize("")
	res := r.Resolve("#b")
	if !res.Changed || res.Target != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	assertOnlyVisible(t, r, "#b")
}

func TestResolveIsIdempotent(t *testing.T) {
	r := New(parse(t, fixture))
	r.Resolve("#c")
	r.Resolve("#c")
	assertOnlyVisible(t, r, "#c")
}

func TestResolveUnknownFragmentIsNoOp(t *testing.T) {
	r := New(parse(t, fixture))
	r.Initialize("#b")
	for _, frag := range []string{"#nope", "#outside"} {
		res := r.Resolve(frag)
		if res.Changed {
			t.Errorf("%s: expected no change", frag)
		}
		assertOnlyVisible(t, r, "#b")
	}
}

func TestResolveNestedAnchorActivatesOwningPanel(t *testing.T) {
	r := New(parse(t, fixture))
	r.Initialize("#c")

	res := r.Resolve("#x")
	if !res.Changed || res.Tab.Key != "#a" || res.Target != "x" {
		t.Fatalf("unexpected result %+v", res)
	}
	assertOnlyVisible(t, r, "#a")

	rendered := RenderPanel(res.Tab.Panel, RenderOptions{Width: 80})
	line, ok := res.ScrollLine(rendered)
	if !ok {
		t.Fatal("expected a scroll target")
	}
	if want := max(0, rendered.Anchors["x"]-ScrollOffset); line != want {
		t.Errorf("scroll line = %d, want %d", line, want)
	}
}

func TestResolveNestedPrefersFirstTabInDocumentOrder(t *testing.T) {
	src := `<a class="tab" href="#outer">Outer</a><a class="tab" href="#inner">Inner</a>
<div id="outer"><div id="inner"><span id="deep">deep</span></div></div>`
	r := New(parse(t, src))
	res := r.Resolve("#deep")
	if res.Tab == nil || res.Tab.Key != "#outer" {
		t.Fatalf("expected #outer to win, got %+v", res)
	}
}

func TestResolveEmptyTabSet(t *testing.T) {
	r := New(parse(t, `<p id="a">nothing here</p>`))
	if res := r.Resolve(""); res.Changed || res.Tab != nil {
		t.Fatalf("expected no-op, got %+v", res)
	}
	if res := r.Step(1); res.Changed {
		t.Fatal("step on empty set should be a no-op")
	}
}

func TestPanelHeadingsStayHidden(t *testing.T) {
	r := New(parse(t, fixture))
	r.Initialize("#a")
	heading := FindByClass(r.Document(), PanelHeadingClass)[0]
	if !IsHidden(heading) {
		t.Fatal("panel heading should be hidden")
	}
}

func TestTriggerWithoutPanelStillMatches(t *testing.T) {
	r := New(parse(t, `<a class="tab" href="#ghost">Ghost</a><a class="tab" href="#real">Real</a><div id="real"></div>`))
	res := r.Resolve("#ghost")
	if !res.Changed || r.Active().Key != "#ghost" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !IsHidden(FindByID(r.Document(), "real")) {
		t.Error("other panels should be hidden")
	}
}

func TestStepWraps(t *testing.T) {
	r := New(parse(t, fixture))
	r.Initialize("")
	if r.Step(-1); r.Active().Key != "#c" {
		t.Fatalf("step back from first = %s", r.Active().Key)
	}
	if r.Step(1); r.Active().Key != "#a" {
		t.Fatalf("step forward from last = %s", r.Active().Key)
	}
}

func TestAnchors(t *testing.T) {
	r := New(parse(t, fixture))
	var frags []string
	for _, a := range r.Anchors() {
		frags = append(frags, a.Fragment)
	}
	want := []string{"#a", "#b", "#c", "#x"}
	if diff := cmp.Diff(want, frags); diff != "" {
		t.Fatalf("anchors mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeFragment(t *testing.T) {
	tests := map[string]string{
		"":                         "",
		"#":                        "",
		"a":                        "#a",
		"#a":                       "#a",
		" #a ":                     "#a",
		"/assignments/x/#b":        "#b",
		"https://h/assignments/x/": "",
	}
	for in, want := range tests {
		if got := NormalizeFragment(in); got != want {
			t.Errorf("NormalizeFragment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPageHelpers(t *testing.T) {
	doc := parse(t, fixture)
	if id, ok := AssignmentID(doc); !ok || id != 7 {
		t.Errorf("AssignmentID = %d, %v", id, ok)
	}
	if got := Title(doc); got != "Cat pictures" {
		t.Errorf("Title = %q", got)
	}
	if _, ok := AssignmentID(parse(t, "<p></p>")); ok {
		t.Error("expected no assignment id")
	}
}

package tabs

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestRenderPanelSkipsHiddenAndRecordsAnchors(t *testing.T) {
	doc := parse(t, `<div id="p">
<h2 class="tab-panel-heading" hidden>Heading</h2>
<p>first paragraph</p>
<script>alert(1)</script>
<p id="later">second <a href="#other">jump</a> and <a href="/x/">out</a></p>
</div>`)
	got := RenderPanel(FindByID(doc, "p"), RenderOptions{Width: 80})

	text := got.String()
	if strings.Contains(text, "Heading") || strings.Contains(text, "alert") {
		t.Fatalf("hidden content rendered:\n%s", text)
	}
	line, ok := got.Anchors["later"]
	if !ok || !strings.HasPrefix(got.Lines[line], "second") {
		t.Fatalf("anchor line %d (%v) in:\n%s", line, ok, text)
	}
	if len(got.Links) != 2 {
		t.Fatalf("links = %+v", got.Links)
	}
	if got.Links[0].Fragment() != "#other" || got.Links[1].Fragment() != "" {
		t.Errorf("unexpected fragments %+v", got.Links)
	}
	if !strings.Contains(got.Lines[line], "jump[1]") {
		t.Errorf("link marker missing: %q", got.Lines[line])
	}
}

func TestRenderPanelReplaceHook(t *testing.T) {
	doc := parse(t, fixture)
	panel := FindByID(doc, "b")
	got := RenderPanel(panel, RenderOptions{
		Replace: func(n *html.Node) ([]string, bool) {
			if HasClass(n, ResponsesClass) {
				return []string{"RESPONSES"}, true
			}
			return nil, false
		},
	})
	if got.Lines[len(got.Lines)-1] != "RESPONSES" {
		t.Fatalf("replacement missing:\n%s", got)
	}
}

func TestRenderPanelWraps(t *testing.T) {
	doc := parse(t, `<div id="p"><p>one two three four five six</p></div>`)
	got := RenderPanel(FindByID(doc, "p"), RenderOptions{Width: 10})
	if len(got.Lines) < 3 {
		t.Fatalf("expected wrapped lines, got %q", got.Lines)
	}
	for _, l := range got.Lines {
		if len(l) > 10 {
			t.Errorf("line too wide: %q", l)
		}
	}
}

func TestRenderFormControls(t *testing.T) {
	doc := parse(t, `<div id="p"><form>
<input type="checkbox" checked> <input type="hidden" value="secret">
<select><option>10</option><option selected>25</option></select>
<button>Send</button></form></div>`)
	text := RenderPanel(FindByID(doc, "p"), RenderOptions{}).String()
	for _, want := range []string{"[x]", "[25 ▾]", "[Send]"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if strings.Contains(text, "secret") {
		t.Error("hidden input rendered")
	}
}

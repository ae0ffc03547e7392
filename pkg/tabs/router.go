package tabs

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ScrollOffset is the number of lines of fixed chrome (tab bar and panel
// header) that sit above a scrolled-to anchor.
const ScrollOffset = 3

// Tab is one trigger/panel pair. Panel is nil when the page has no element
// with the trigger's fragment id.
type Tab struct {
	Key     string
	Label   string
	Trigger *html.Node
	Panel   *html.Node
	Active  bool
}

// ID returns the key without its leading '#'.
func (t *Tab) ID() string {
	return strings.TrimPrefix(t.Key, "#")
}

// Result describes what Resolve did.
type Result struct {
	Changed bool
	Tab     *Tab
	// Target is the id of a nested element to scroll to, "" for none.
	Target string
}

// ScrollLine converts the result's target into a viewport offset given the
// rendered panel. It reports false when there is nothing to scroll to.
func (r Result) ScrollLine(p Rendered) (int, bool) {
	if r.Target == "" {
		return 0, false
	}
	line, ok := p.Anchors[r.Target]
	if !ok {
		return 0, false
	}
	return max(0, line-ScrollOffset), true
}

// Router maps URL fragments onto exactly one visible panel.
type Router struct {
	doc  *html.Node
	tabs []*Tab
}

// New collects the page's tab triggers in document order. Membership is
// fixed for the life of the router.
func New(doc *html.Node) *Router {
	r := &Router{doc: doc}
	for _, n := range FindByClass(doc, TriggerClass) {
		key := fragmentOf(attr(n, "href"))
		if key == "" {
			continue
		}
		setAttr(n, "tabindex", "0")
		r.tabs = append(r.tabs, &Tab{
			Key:     key,
			Label:   TextContent(n),
			Trigger: n,
			Panel:   FindByID(doc, strings.TrimPrefix(key, "#")),
		})
	}
	return r
}

// fragmentOf returns "#frag" for an href, or "" when it has no fragment.
func fragmentOf(href string) string {
	i := strings.IndexByte(href, '#')
	if i < 0 || i == len(href)-1 {
		return ""
	}
	return "#" + href[i+1:]
}

// NormalizeFragment accepts "x", "#x" or a full URL and returns "#x".
// An empty or bare "#" fragment yields "".
func NormalizeFragment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "#" {
		return ""
	}
	if strings.HasPrefix(s, "#") {
		return s
	}
	if strings.Contains(s, "#") {
		return fragmentOf(s)
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme != "" || strings.HasPrefix(s, "/")) {
		return ""
	}
	return "#" + s
}

// Document returns the page tree the router mutates.
func (r *Router) Document() *html.Node { return r.doc }

// Tabs returns the tab set in document order.
func (r *Router) Tabs() []*Tab { return r.tabs }

// Keys returns the distinct tab keys in document order.
func (r *Router) Keys() []string {
	seen := make(map[string]bool, len(r.tabs))
	var keys []string
	for _, t := range r.tabs {
		if !seen[t.Key] {
			seen[t.Key] = true
			keys = append(keys, t.Key)
		}
	}
	return keys
}

// Active returns the first active tab, or nil before any activation.
func (r *Router) Active() *Tab {
	for _, t := range r.tabs {
		if t.Active {
			return t
		}
	}
	return nil
}

// Index returns the position of the active tab, -1 when none is active.
func (r *Router) Index() int {
	for i, t := range r.tabs {
		if t.Active {
			return i
		}
	}
	return -1
}

// Initialize resolves the fragment the page was opened with.
func (r *Router) Initialize(fragment string) Result {
	return r.Resolve(fragment)
}

// Resolve activates the tab a fragment addresses. An empty fragment selects
// the first tab. A fragment naming an element nested inside a panel
// activates that panel and reports the element as scroll target. Unknown
// fragments leave the state unchanged.
func (r *Router) Resolve(fragment string) Result {
	if len(r.tabs) == 0 {
		return Result{}
	}
	key := NormalizeFragment(fragment)
	if key == "" {
		key = r.tabs[0].Key
	}

	for _, t := range r.tabs {
		if t.Key == key {
			r.Activate(key)
			return Result{Changed: true, Tab: t}
		}
	}

	id := strings.TrimPrefix(key, "#")
	target := FindByID(r.doc, id)
	if target == nil {
		return Result{Tab: r.Active()}
	}
	for _, t := range r.tabs {
		if t.Panel != nil && Contains(t.Panel, target) {
			r.Activate(t.Key)
			return Result{Changed: true, Tab: t, Target: id}
		}
	}
	return Result{Tab: r.Active()}
}

// Activate shows the panel for key and hides every other one. Every trigger
// carrying key is marked active.
func (r *Router) Activate(key string) {
	for _, t := range r.tabs {
		removeClass(t.Trigger, ActiveClass)
		setAttr(t.Trigger, "aria-selected", "false")
		t.Active = false
		if t.Panel == nil {
			continue
		}
		setAttr(t.Panel, "hidden", "")
		setAttr(t.Panel, "aria-hidden", "true")
		for _, h := range FindByClass(t.Panel, PanelHeadingClass) {
			setAttr(h, "hidden", "")
		}
	}
	for _, t := range r.tabs {
		if t.Key != key {
			continue
		}
		addClass(t.Trigger, ActiveClass)
		setAttr(t.Trigger, "aria-selected", "true")
		t.Active = true
		if t.Panel != nil {
			removeAttr(t.Panel, "hidden")
			setAttr(t.Panel, "aria-hidden", "false")
		}
	}
}

// Step moves the active tab by delta positions among distinct keys,
// wrapping at either end.
func (r *Router) Step(delta int) Result {
	keys := r.Keys()
	if len(keys) == 0 {
		return Result{}
	}
	cur := 0
	if a := r.Active(); a != nil {
		for i, k := range keys {
			if k == a.Key {
				cur = i
				break
			}
		}
	}
	next := ((cur+delta)%len(keys) + len(keys)) % len(keys)
	return r.Resolve(keys[next])
}

// Anchors returns every id inside the panels, paired with the tab that owns
// it, in document order. Tab keys come first.
func (r *Router) Anchors() []Anchor {
	var out []Anchor
	for _, k := range r.Keys() {
		out = append(out, Anchor{Fragment: k, Tab: k})
	}
	seen := make(map[*html.Node]bool)
	for _, t := range r.tabs {
		if t.Panel == nil || seen[t.Panel] {
			continue
		}
		seen[t.Panel] = true
		walk(t.Panel, func(n *html.Node) bool {
			if n != t.Panel && n.Type == html.ElementNode {
				if id := attr(n, "id"); id != "" {
					out = append(out, Anchor{Fragment: "#" + id, Tab: t.Key, Label: TextContent(n)})
				}
			}
			return true
		})
	}
	return out
}

// Anchor is a fragment the router can resolve.
type Anchor struct {
	Fragment string
	Tab      string
	Label    string
}

package tabs

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is a followable anchor found while rendering.
type Link struct {
	Index int
	Text  string
	Href  string
	Line  int
}

// Fragment returns the link's "#frag" when it points inside the page.
func (l Link) Fragment() string {
	if strings.HasPrefix(l.Href, "#") {
		return NormalizeFragment(l.Href)
	}
	return ""
}

// Rendered is a panel flattened to terminal lines.
type Rendered struct {
	Lines   []string
	Anchors map[string]int
	Links   []Link
}

// String joins the rendered lines.
func (r Rendered) String() string {
	return strings.Join(r.Lines, "\n")
}

// RenderOptions controls panel rendering.
type RenderOptions struct {
	Width int
	// Replace lets the caller substitute its own lines for an element and
	// its subtree.
	Replace func(n *html.Node) ([]string, bool)
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Aside: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true,
	atom.Dd: true, atom.Table: true, atom.Tr: true, atom.Form: true,
	atom.Fieldset: true, atom.Blockquote: true, atom.Pre: true, atom.Main: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
	atom.H6: true, atom.Label: true,
}

var skipAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Template: true,
	atom.Noscript: true, atom.Head: true,
}

var headingLevel = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

type renderer struct {
	opts RenderOptions
	out  Rendered
	buf  strings.Builder
	pre  int
}

// RenderPanel flattens a panel into lines, recording the line each id'd
// element starts on. Hidden descendants are skipped; the panel root is
// rendered regardless of its own hidden state.
func RenderPanel(panel *html.Node, opts RenderOptions) Rendered {
	r := &renderer{opts: opts, out: Rendered{Anchors: map[string]int{}}}
	if panel != nil {
		r.children(panel)
	}
	r.flush()
	for len(r.out.Lines) > 0 && r.out.Lines[len(r.out.Lines)-1] == "" {
		r.out.Lines = r.out.Lines[:len(r.out.Lines)-1]
	}
	return r.out
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c)
	}
}

func (r *renderer) line() int { return len(r.out.Lines) }

func (r *renderer) flush() {
	text := r.buf.String()
	r.buf.Reset()
	if r.pre == 0 {
		text = strings.Join(strings.Fields(text), " ")
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, raw := range strings.Split(text, "\n") {
		if r.opts.Width > 0 && r.pre == 0 {
			raw = wordwrap.String(raw, r.opts.Width)
		}
		r.out.Lines = append(r.out.Lines, strings.Split(raw, "\n")...)
	}
}

func (r *renderer) blank() {
	r.flush()
	if n := len(r.out.Lines); n > 0 && r.out.Lines[n-1] != "" {
		r.out.Lines = append(r.out.Lines, "")
	}
}

func (r *renderer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.buf.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		r.children(n)
		return
	}

	if skipAtoms[n.DataAtom] || IsHidden(n) {
		return
	}

	block := blockAtoms[n.DataAtom]
	_, heading := headingLevel[n.DataAtom]
	switch {
	case heading:
		r.blank()
	case block:
		r.flush()
	}
	if id := attr(n, "id"); id != "" {
		if _, seen := r.out.Anchors[id]; !seen {
			r.out.Anchors[id] = r.line()
		}
	}

	if r.opts.Replace != nil {
		if lines, ok := r.opts.Replace(n); ok {
			r.flush()
			r.out.Lines = append(r.out.Lines, lines...)
			return
		}
	}

	switch n.DataAtom {
	case atom.Br:
		r.flush()
		return
	case atom.Hr:
		r.blank()
		r.out.Lines = append(r.out.Lines, strings.Repeat("─", max(3, min(r.opts.Width, 40))))
		return
	case atom.Img:
		if alt := attr(n, "alt"); alt != "" {
			fmt.Fprintf(&r.buf, "[image: %s] ", alt)
		}
		return
	case atom.Input:
		r.input(n)
		return
	case atom.Select:
		r.selectBox(n)
		return
	case atom.Textarea:
		fmt.Fprintf(&r.buf, "[%s] ", TextContent(n))
		return
	case atom.Button:
		fmt.Fprintf(&r.buf, "[%s] ", TextContent(n))
		return
	case atom.A:
		r.anchor(n)
		return
	case atom.Li:
		r.buf.WriteString("• ")
	case atom.Td, atom.Th:
		r.buf.WriteString(" │ ")
	case atom.Pre:
		r.pre++
		r.children(n)
		r.flush()
		r.pre--
		r.blank()
		return
	}

	if heading {
		lvl := headingLevel[n.DataAtom]
		r.buf.WriteString(strings.Repeat("#", lvl) + " ")
		r.children(n)
		r.blank()
		return
	}

	r.children(n)
	if block {
		r.flush()
		if n.DataAtom == atom.P || n.DataAtom == atom.Section || n.DataAtom == atom.Ul || n.DataAtom == atom.Ol {
			r.blank()
		}
	}
}

func (r *renderer) anchor(n *html.Node) {
	text := TextContent(n)
	href := attr(n, "href")
	if href == "" {
		r.buf.WriteString(text + " ")
		return
	}
	idx := len(r.out.Links) + 1
	if text == "" {
		text = href
	}
	r.out.Links = append(r.out.Links, Link{Index: idx, Text: text, Href: href, Line: r.line()})
	fmt.Fprintf(&r.buf, "%s[%d] ", text, idx)
}

func (r *renderer) input(n *html.Node) {
	switch strings.ToLower(attr(n, "type")) {
	case "hidden":
	case "checkbox", "radio":
		mark := " "
		if _, ok := getAttr(n, "checked"); ok {
			mark = "x"
		}
		fmt.Fprintf(&r.buf, "[%s] ", mark)
	case "submit", "button":
		fmt.Fprintf(&r.buf, "[%s] ", attr(n, "value"))
	default:
		v := attr(n, "value")
		if v == "" {
			v = attr(n, "placeholder")
		}
		fmt.Fprintf(&r.buf, "[%s] ", v)
	}
}

func (r *renderer) selectBox(n *html.Node) {
	var first, chosen string
	walk(n, func(c *html.Node) bool {
		if c.DataAtom != atom.Option {
			return true
		}
		label := TextContent(c)
		if first == "" {
			first = label
		}
		if _, ok := getAttr(c, "selected"); ok && chosen == "" {
			chosen = label
		}
		return true
	})
	if chosen == "" {
		chosen = first
	}
	fmt.Fprintf(&r.buf, "[%s ▾] ", chosen)
}

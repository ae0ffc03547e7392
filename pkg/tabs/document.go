package tabs

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class names and attributes the page uses for tab navigation.
const (
	TriggerClass      = "tab"
	ActiveClass       = "active"
	PanelHeadingClass = "tab-panel-heading"
	ResponsesClass    = "assignment-responses"
	ResponsesAnchor   = "#assignment-responses"
)

// Parse parses an HTML page.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := getAttr(n, key)
	return v
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// HasClass reports whether n's class attribute contains class.
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	classes := strings.Fields(attr(n, "class"))
	setAttr(n, "class", strings.Join(append(classes, class), " "))
}

func removeClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}
	var kept []string
	for _, c := range strings.Fields(attr(n, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// IsHidden reports whether n carries the hidden attribute.
func IsHidden(n *html.Node) bool {
	_, ok := getAttr(n, "hidden")
	return ok
}

// Attr returns the value of an attribute, "" when absent.
func Attr(n *html.Node, key string) string {
	return attr(n, key)
}

// walk visits n and its descendants in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// FindByID returns the first element with the given id.
func FindByID(root *html.Node, id string) *html.Node {
	if root == nil || id == "" {
		return nil
	}
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByClass returns every element carrying class, in document order.
func FindByClass(root *html.Node, class string) []*html.Node {
	var out []*html.Node
	if root == nil {
		return out
	}
	walk(root, func(n *html.Node) bool {
		if HasClass(n, class) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Contains reports whether n is ancestor or equal to descendant.
func Contains(n, descendant *html.Node) bool {
	if n == nil {
		return false
	}
	for d := descendant; d != nil; d = d.Parent {
		if d == n {
			return true
		}
	}
	return false
}

// TextContent returns the collapsed text of n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// ResponsesSection returns the section the response list renders into.
func ResponsesSection(doc *html.Node) *html.Node {
	for _, n := range FindByClass(doc, ResponsesClass) {
		if n.DataAtom == atom.Section {
			return n
		}
	}
	return nil
}

// AssignmentID reads data-assignment from the response list section.
func AssignmentID(doc *html.Node) (int64, bool) {
	sec := ResponsesSection(doc)
	if sec == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(attr(sec, "data-assignment"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Title returns the page <title> text.
func Title(doc *html.Node) string {
	var title string
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			title = TextContent(n)
			return false
		}
		return true
	})
	return title
}

package ui

import (
	"github.com/spotus/spotus_viewer/pkg/tabs"
)

// AnchorItem is one entry of the goto palette
type AnchorItem struct {
	Anchor tabs.Anchor
}

func (i AnchorItem) Title() string {
	if i.Anchor.Label != "" {
		return i.Anchor.Label
	}
	return i.Anchor.Fragment
}

func (i AnchorItem) Description() string {
	if i.Anchor.Fragment == i.Anchor.Tab {
		return "tab"
	}
	return "in " + i.Anchor.Tab
}

func (i AnchorItem) FilterValue() string {
	return i.Anchor.Fragment + " " + i.Anchor.Label
}

// anchorSource adapts items to fuzzy.Source
type anchorSource []AnchorItem

func (s anchorSource) String(i int) string { return s[i].FilterValue() }
func (s anchorSource) Len() int            { return len(s) }

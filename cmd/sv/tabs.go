package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/spotus/spotus_viewer/pkg/responses"
	"github.com/spotus/spotus_viewer/pkg/tabs"
)

// NewTabsCmd creates the tabs command.
func NewTabsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabs [page-url] [fragment]",
		Short: "Show a page's tabs and the tab a fragment opens",
		Long: `Tabs lists the tab triggers of a page and resolves a fragment the way the
viewer does: an empty fragment opens the first tab, a tab key opens that tab,
and the id of an element inside a panel opens its panel and scrolls to it.

Examples:
  sv tabs "/assignments/cats-3/#notes"
  sv tabs --page-file page.html "#assignment-responses"`,
		Args: cobra.MaximumNArgs(2),
		RunE: runTabsCmd,
	}
	cmd.Flags().String("page-file", "", "Read the page HTML from a file instead of the site")
	return cmd
}

func runTabsCmd(cmd *cobra.Command, args []string) error {
	pageFile, _ := cmd.Flags().GetString("page-file")

	var body []byte
	var fragment string
	switch {
	case pageFile != "":
		if len(args) > 1 {
			return errors.New("with --page-file only a fragment may be given")
		}
		data, err := os.ReadFile(pageFile)
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
		body = data
		if len(args) == 1 {
			fragment = args[0]
		}
	case len(args) == 0:
		return errors.New("a page URL or --page-file is required")
	default:
		loc, err := responses.ParseLocation(args[0])
		if err != nil {
			return err
		}
		fragment = loc.Fragment()
		if len(args) == 2 {
			fragment = args[1]
		}
		body, err = fetchPage(cmd, loc.Path())
		if err != nil {
			return err
		}
	}

	doc, err := tabs.Parse(bytes.NewReader(body))
	if err != nil {
		return err
	}
	return printTabs(cmd.OutOrStdout(), tabs.New(doc), fragment)
}

func fetchPage(cmd *cobra.Command, path string) ([]byte, error) {
	cfg, err := loadSiteConfig(cmd)
	if err != nil {
		return nil, err
	}
	client, err := newClient(cfg, stderrLogger(cmd))
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return client.FetchPage(ctx, path)
}

func printTabs(w io.Writer, r *tabs.Router, fragment string) error {
	if len(r.Tabs()) == 0 {
		_, err := fmt.Fprintln(w, "No tabs on this page.")
		return err
	}
	res := r.Resolve(fragment)

	labelWidth := 0
	for _, t := range r.Tabs() {
		labelWidth = max(labelWidth, runewidth.StringWidth(t.Label))
	}
	for i, t := range r.Tabs() {
		panel := "panel"
		if t.Panel == nil {
			panel = "no panel"
		}
		marker := " "
		if t.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d  %s  %s  (%s)\n", marker, i+1,
			runewidth.FillRight(t.Label, labelWidth), t.Key, panel)
	}

	shown := fragment
	if shown == "" {
		shown = `""`
	}
	switch {
	case !res.Changed:
		fmt.Fprintf(w, "\n%s: no matching tab, nothing changes\n", shown)
	case res.Target != "":
		rendered := tabs.RenderPanel(res.Tab.Panel, tabs.RenderOptions{Width: 80})
		line, _ := res.ScrollLine(rendered)
		fmt.Fprintf(w, "\n%s: opens %s, scrolls to #%s (line %d)\n", shown, res.Tab.Key, res.Target, line)
	default:
		fmt.Fprintf(w, "\n%s: opens %s\n", shown, res.Tab.Key)
	}
	return nil
}

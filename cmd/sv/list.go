package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spotus/spotus_viewer/pkg/export"
	"github.com/spotus/spotus_viewer/pkg/model"
	"github.com/spotus/spotus_viewer/pkg/responses"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of an assignment's responses",
		Long: `List fetches one page of responses and prints it as text or Markdown.

Examples:
  # First page of flagged responses
  sv list --assignment 3 --flag flag

  # Page 2, 25 per page, with embedded data, as Markdown
  sv list --assignment 3 --page 2 --page-size 25 --inline --markdown > page.md`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().Int64P("assignment", "a", 0, "Assignment id (required)")
	cmd.Flags().IntP("page", "p", 1, "Page number, clamped to the last page")
	cmd.Flags().IntP("page-size", "n", 0, "Responses per page, 10-50 (default from config)")
	cmd.Flags().String("flag", model.FilterValueAll, "Flag filter: flag, no-flag or all")
	cmd.Flags().StringP("search", "s", "", "Search text")
	cmd.Flags().BoolP("inline", "i", false, "Fetch and show embedded data")
	cmd.Flags().BoolP("markdown", "m", false, "Write Markdown instead of text")
	_ = cmd.MarkFlagRequired("assignment")

	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSiteConfig(cmd)
	if err != nil {
		return err
	}
	logger := stderrLogger(cmd)
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	assignment, _ := flags.GetInt64("assignment")
	page, _ := flags.GetInt("page")
	pageSize, _ := flags.GetInt("page-size")
	filter, _ := flags.GetString("flag")
	search, _ := flags.GetString("search")
	inline, _ := flags.GetBool("inline")
	asMarkdown, _ := flags.GetBool("markdown")
	if pageSize == 0 {
		pageSize = cfg.PageSize
	}

	query := url.Values{}
	query.Set("flag", model.ParseFilterValue(filter).LocationValue())
	query.Set("search", search)

	style := "notty"
	if !asMarkdown && term.IsTerminal(int(os.Stdout.Fd())) {
		style = "dark"
	}
	c := responses.New(client, assignment, responses.Options{
		Query:    query,
		PageSize: pageSize,
		Logger:   logger,
		Style:    style,
	})
	defer c.Close()

	ctx := cmd.Context()
	if err := drive(ctx, c.Init(), c.Update); err != nil {
		return err
	}
	if !c.Loaded() {
		return listError(c)
	}
	if page > 1 && c.LastPage() > 1 {
		if err := drive(ctx, c.SelectPage(strconv.Itoa(page)), c.Update); err != nil {
			return err
		}
	}
	if inline {
		if err := drive(ctx, c.ToggleInline(), c.Update); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if asMarkdown {
		return export.WritePage(out, export.Page{
			Title:      fmt.Sprintf("Assignment %d responses", assignment),
			BaseURL:    cfg.BaseURL,
			Assignment: assignment,
			State:      c.State(),
			Summary:    c.Summary(),
			Records:    c.Records(),
			Embeds:     embedsOf(c),
		})
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	_, err = fmt.Fprintln(out, strings.Join(c.Lines(width, responses.DefaultStyles()), "\n"))
	return err
}

func listError(c *responses.Controller) error {
	if text, _ := c.Notice(); text != "" {
		return errors.New(text)
	}
	return errors.New("could not load responses")
}

func embedsOf(c *responses.Controller) map[string]string {
	out := make(map[string]string)
	for _, r := range c.Records() {
		if r.Data == "" {
			continue
		}
		if frag, ok := c.Embed(r.Data); ok {
			out[r.Data] = responses.EmbedText(frag, r.Data)
		}
	}
	return out
}

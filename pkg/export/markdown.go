// Package export writes response listings and the moderation history as
// Markdown documents.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/spotus/spotus_viewer/pkg/model"
	"github.com/spotus/spotus_viewer/pkg/responses"
)

// Page is one rendered page of the response list.
type Page struct {
	Title      string
	Location   string
	BaseURL    string
	Assignment int64
	State      responses.PageState
	Summary    responses.Summary
	Records    []model.ResponseRecord
	// Embeds maps data URLs to displayable embed text.
	Embeds map[string]string
}

// WritePage writes p as a Markdown document.
func WritePage(w io.Writer, p Page) error {
	md := markdown.NewMarkdown(w)

	title := p.Title
	if title == "" {
		title = fmt.Sprintf("Assignment %d responses", p.Assignment)
	}
	md.H1(title)
	md.PlainText("")

	search := p.State.Search
	if search == "" {
		search = "-"
	}
	rows := [][]string{
		{"Assignment", strconv.FormatInt(p.Assignment, 10)},
		{"Filter", p.State.Flag.String()},
		{"Search", escapeCell(search)},
		{"Page", fmt.Sprintf("%d of %d", p.Summary.Page, p.Summary.Pages)},
		{"Showing", responses.SummaryLine(p.Summary)},
	}
	if p.Location != "" {
		rows = append(rows, []string{"Location", "`" + p.Location + "`"})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	if len(p.Records) == 0 {
		md.Tip("No responses match the current filter.")
		return md.Build()
	}
	if n := countFlagged(p.Records); n > 0 {
		md.Warningf("%d of the responses on this page are flagged.", n)
		md.PlainText("")
	}

	md.H2("Responses")
	md.PlainText("")
	for _, r := range p.Records {
		writeRecord(md, r, p)
	}
	return md.Build()
}

func writeRecord(md *markdown.Markdown, r model.ResponseRecord, p Page) {
	md.PlainTextf("### #%d · %s", r.ID, r.Author())
	md.PlainText("")

	meta := []string{"Submitted: " + r.Datetime, "Edit: " + link(p.BaseURL, r.EditPath())}
	if r.Data != "" {
		meta = append(meta, "Data: "+r.Data)
	}
	if r.Edited() {
		note := fmt.Sprintf("Edited by %s at %s", r.EditUser, r.EditDatetime)
		if r.EditAccess() {
			note += " (" + link(p.BaseURL, r.RevertPath()) + ")"
		}
		meta = append(meta, note)
	}
	if r.EditAccess() {
		meta = append(meta,
			"Flagged: "+yesNo(r.Flagged()),
			"Gallery: "+yesNo(r.InGallery()),
			"Tags: "+orDash(r.TagText()),
		)
	}
	md.BulletList(meta...)
	md.PlainText("")

	if len(r.Values) > 0 {
		vals := make([][]string, len(r.Values))
		for i, v := range r.Values {
			vals[i] = []string{escapeCell(v.Field), escapeCell(v.Value)}
		}
		md.Table(markdown.TableSet{Header: []string{"Field", "Value"}, Rows: vals})
		md.PlainText("")
	}

	if text, ok := p.Embeds[r.Data]; ok && r.Data != "" {
		md.Details("Embedded data", text)
		md.PlainText("")
	}
}

// WriteHistory writes recorded mutations, newest first, as a table.
func WriteHistory(w io.Writer, muts []model.Mutation) error {
	md := markdown.NewMarkdown(w)
	md.H1("Moderation history")
	md.PlainText("")

	if len(muts) == 0 {
		md.Note("No mutations have been recorded yet.")
		return md.Build()
	}

	failed := 0
	rows := make([][]string, len(muts))
	for i, m := range muts {
		outcome := m.Outcome
		if m.Outcome == model.MutationOutcomeFailed {
			failed++
			outcome += ": " + escapeCell(m.Error)
		}
		rows[i] = []string{
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(m.SessionID),
			"#" + strconv.FormatInt(m.ResponseID, 10),
			m.Field,
			escapeCell(orDash(m.Value)),
			outcome,
		}
	}
	if failed > 0 {
		md.Cautionf("%d of %d mutations failed.", failed, len(muts))
		md.PlainText("")
	}
	md.Table(markdown.TableSet{
		Header: []string{"When", "Session", "Response", "Field", "Value", "Outcome"},
		Rows:   rows,
	})
	return md.Build()
}

func countFlagged(records []model.ResponseRecord) int {
	n := 0
	for _, r := range records {
		if r.Flagged() {
			n++
		}
	}
	return n
}

func link(base, path string) string {
	return fmt.Sprintf("[%s](%s%s)", path, strings.TrimRight(base, "/"), path)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// escapeCell keeps a value on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

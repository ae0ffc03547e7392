package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/spotus/spotus_viewer/pkg/audit"
	"github.com/spotus/spotus_viewer/pkg/export"
	"github.com/spotus/spotus_viewer/pkg/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent moderation changes from the audit log",
		Long: `History prints the most recent flag, gallery, tag and message changes
sent by this client, newest first, with their outcome.

Examples:
  sv history --limit 50
  sv history --sessions
  sv history --markdown > moderation.md`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
	cmd.Flags().IntP("limit", "l", 20, "Number of entries to show")
	cmd.Flags().Bool("sessions", false, "List moderation sessions instead of changes")
	cmd.Flags().BoolP("markdown", "m", false, "Write Markdown instead of text")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	sessions, _ := cmd.Flags().GetBool("sessions")
	asMarkdown, _ := cmd.Flags().GetBool("markdown")

	db, err := audit.OpenDB(cfg.AuditDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if sessions {
		list, err := db.ListSessions(ctx, limit)
		if err != nil {
			return err
		}
		return printSessions(out, list)
	}

	muts, err := db.RecentMutations(ctx, limit)
	if err != nil {
		return err
	}
	if asMarkdown {
		return export.WriteHistory(out, muts)
	}
	return printMutations(out, muts)
}

func printMutations(w io.Writer, muts []model.Mutation) error {
	if len(muts) == 0 {
		_, err := fmt.Fprintln(w, "No moderation changes recorded.")
		return err
	}
	valueWidth := 24
	for _, m := range muts {
		line := fmt.Sprintf("%s  #%-6d %-8s %s  %s",
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			m.ResponseID,
			m.Field,
			runewidth.FillRight(runewidth.Truncate(m.Value, valueWidth, "…"), valueWidth),
			m.Outcome,
		)
		if m.Error != "" {
			line += ": " + m.Error
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func printSessions(w io.Writer, list []model.ModerationSession) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No moderation sessions recorded.")
		return err
	}
	for _, s := range list {
		state := "open"
		if s.CompletedAt != nil {
			state = "done " + s.CompletedAt.Local().Format("15:04")
		}
		fmt.Fprintf(w, "%s  %s  assignment %-6s %-12s flags %d  gallery %d  tags %d  messages %d  failures %d  (%s)\n",
			s.ID[:min(8, len(s.ID))],
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			strconv.FormatInt(s.Assignment, 10),
			s.Moderator,
			s.FlagChanges, s.GalleryMoves, s.TagEdits, s.Messages, s.Failures,
			state,
		)
	}
	return nil
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/spotus/spotus_viewer/pkg/audit"
	"github.com/spotus/spotus_viewer/pkg/responses"
	"github.com/spotus/spotus_viewer/pkg/tabs"
	"github.com/spotus/spotus_viewer/pkg/ui"
	"github.com/spotus/spotus_viewer/pkg/watcher"
)

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [page-url]",
		Short: "Open an assignment page in the interactive viewer",
		Long: `Browse opens a site page as tabs. The URL's fragment picks the tab, and
its flag and search parameters seed the response list.

Examples:
  sv browse "/assignments/cats-3/?flag=true#assignment-responses"

  # Work on a saved copy of the page; it reloads when the file changes
  sv browse --page-file page.html "/assignments/cats-3/#responses"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBrowseCmd,
	}
	cmd.Flags().String("page-file", "", "Read the page HTML from a file instead of the site")
	cmd.Flags().IntP("page-size", "n", 0, "Responses per page, 10-50 (default from config)")
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	pageFile, _ := cmd.Flags().GetString("page-file")
	if len(args) == 0 && pageFile == "" {
		return errors.New("a page URL or --page-file is required")
	}
	target := "/"
	if len(args) == 1 {
		target = args[0]
	}

	cfg, err := loadSiteConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer := fileLogger(cmd, cfg)
	defer closer.Close()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	location, err := responses.ParseLocation(target)
	if err != nil {
		return err
	}

	load := func(ctx context.Context) ([]byte, error) {
		if pageFile != "" {
			return os.ReadFile(pageFile)
		}
		return client.FetchPage(ctx, location.Path())
	}
	ctx := cmd.Context()
	body, err := load(ctx)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	doc, err := tabs.Parse(bytes.NewReader(body))
	if err != nil {
		return err
	}

	pageSize, _ := cmd.Flags().GetInt("page-size")
	if pageSize == 0 {
		pageSize = cfg.PageSize
	}
	opts := ui.Options{
		Theme:    ui.NewTheme(cfg.Theme, nil),
		Location: location,
		Service:  client,
		PageSize: pageSize,
		Logger:   logger,
		Loader:   load,
	}
	if id, ok := tabs.AssignmentID(doc); ok {
		if sm := audit.TryStartSession(ctx, cfg.AuditDB, id, cfg.Moderator, logger); sm != nil {
			opts.Recorder = sm
			defer func() {
				if err := sm.CompleteSession(context.Background()); err != nil {
					logger.Warn("complete audit session", "error", err)
				}
				sm.Close()
			}()
		}
	}

	m := ui.NewModel(doc, opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.SetSender(p.Send)

	if pageFile != "" {
		w := watcher.New(pageFile, func() { p.Send(ui.ReloadMsg{}) }, watcher.WithLogger(logger))
		if err := w.Start(); err != nil {
			logger.Warn("watch page file", "path", pageFile, "error", err)
		} else {
			defer w.Stop()
		}
	}

	logger.Info("browse", "location", location.String(), "page_file", pageFile)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

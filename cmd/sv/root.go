package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spotus/spotus_viewer/pkg/api"
	"github.com/spotus/spotus_viewer/pkg/config"
	svlog "github.com/spotus/spotus_viewer/pkg/log"
)

// NewRootCmd creates the root command for sv.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sv",
		Short: "Moderate assignment responses from the terminal",
		Long: `sv browses an assignment page as tabs and pages through its responses.

Editors can flag responses, move them to the gallery, edit tags and message
authors. Every change is recorded in a local audit log.

Settings come from the config file (see "sv init"), SV_* environment
variables and the flags below, in increasing precedence.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("config", "c", "", "Config file (default "+config.DefaultPath()+")")
	flags.String("base-url", "", "Site root, e.g. https://spotus.example.org")
	flags.String("session", "", "Value of the sessionid cookie")
	flags.String("csrf-token", "", "Value of the csrftoken cookie")
	flags.String("theme", "", "Color theme: dark, light or notty")

	cmd.AddCommand(NewBrowseCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewTabsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"base-url":   "base_url",
	"session":    "session_cookie",
	"csrf-token": "csrf_token",
	"theme":      "theme",
}

// loadConfig layers defaults, the config file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	path, _ := cmd.Flags().GetString("config")
	return config.Load(v, path)
}

// loadSiteConfig loads configuration that must point at a site.
func loadSiteConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w (run \"sv init\")", err)
	}
	return cfg, nil
}

func isVerbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}

// stderrLogger is used by the non-interactive commands.
func stderrLogger(cmd *cobra.Command) *slog.Logger {
	return svlog.New(cmd.ErrOrStderr(), isVerbose(cmd))
}

// fileLogger is used by the TUI so log lines do not corrupt the screen. It
// falls back to discarding when the log file cannot be opened.
func fileLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, io.Closer) {
	logger, closer, err := svlog.OpenFile(cfg.LogFile, isVerbose(cmd))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; logging disabled\n", err)
		return svlog.Discard(), io.NopCloser(nil)
	}
	return logger, closer
}

func newClient(cfg *config.Config, logger *slog.Logger) (*api.Client, error) {
	return api.New(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout),
		api.WithSession(cfg.SessionCookie, cfg.CSRFToken),
		api.WithLogger(logger),
		api.WithUserAgent("sv/"+getVersion()),
	)
}

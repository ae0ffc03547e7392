package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/spotus/spotus_viewer/pkg/config"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the sv configuration file",
		Long: `Init asks for the site address and your session cookies and writes the
configuration file. Copy sessionid and csrftoken from a logged-in browser.

Examples:
  sv init
  sv init -o ./sv.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}
	cmd.Flags().StringP("output", "o", config.DefaultPath(), "Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration file")
	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	cfg := config.Default()
	cfg.Moderator = os.Getenv("USER")
	if err := askConfig(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, outputPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	return nil
}

func askConfig(cfg *config.Config) error {
	pageSize := strconv.Itoa(cfg.PageSize)
	qs := []*survey.Question{
		{
			Name:     "base",
			Prompt:   &survey.Input{Message: "Site address:", Help: "For example https://spotus.example.org"},
			Validate: survey.ComposeValidators(survey.Required, validateBaseURL),
		},
		{
			Name:   "session",
			Prompt: &survey.Password{Message: "sessionid cookie:"},
		},
		{
			Name:   "csrf",
			Prompt: &survey.Password{Message: "csrftoken cookie:", Help: "Needed to flag, tag and message"},
		},
		{
			Name:   "moderator",
			Prompt: &survey.Input{Message: "Your name for the audit log:", Default: cfg.Moderator},
		},
		{
			Name: "pagesize",
			Prompt: &survey.Select{
				Message: "Responses per page:",
				Options: []string{"10", "20", "30", "40", "50"},
				Default: pageSize,
			},
		},
		{
			Name: "theme",
			Prompt: &survey.Select{
				Message: "Color theme:",
				Options: []string{"dark", "light", "notty"},
				Default: cfg.Theme,
			},
		},
	}

	answers := struct {
		Base      string
		Session   string
		CSRF      string
		Moderator string
		PageSize  string `survey:"pagesize"`
		Theme     string
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}

	cfg.BaseURL = strings.TrimRight(answers.Base, "/")
	cfg.SessionCookie = answers.Session
	cfg.CSRFToken = answers.CSRF
	cfg.Moderator = answers.Moderator
	cfg.Theme = answers.Theme
	if n, err := strconv.Atoi(answers.PageSize); err == nil {
		cfg.PageSize = n
	}
	return nil
}

func validateBaseURL(ans interface{}) error {
	s, _ := ans.(string)
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("enter an absolute http(s) address")
	}
	return nil
}

package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/appselect"
	"github.com/appshell-dev/appshell/internal/cli/config"
	"github.com/appshell-dev/appshell/internal/cli/interceptor"
	"github.com/appshell-dev/appshell/internal/cli/shell"
)

var logger = zerolog.Nop()

// SetLogger sets the logger commands hand to the shells they open
func SetLogger(l zerolog.Logger) {
	logger = l
}

// addAppFlag registers --app on cmd and its subcommands
func addAppFlag(cmd *cobra.Command, alias *string) {
	cmd.PersistentFlags().StringVar(alias, "app", "", "App alias (uses the selected app if not specified)")
}

// getSelectedApp loads the config and returns the app to use.
// This is common logic used by most commands.
func getSelectedApp(alias string) (*config.App, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'appshell init' to create a configuration file", err)
	}

	return appselect.ResolveApp(cfg, alias)
}

// openShell opens the selected app, optionally requiring a kind
func openShell(alias string, kind config.Kind) (*shell.Shell, error) {
	app, err := getSelectedApp(alias)
	if err != nil {
		return nil, err
	}

	if kind != "" && app.Kind != kind {
		return nil, fmt.Errorf("app '%s' is a %s app, this command needs a %s app (use --app)", app.Alias, app.Kind, kind)
	}

	return shell.Open(app, shell.Options{Logger: logger})
}

// persist saves the shell's location, whatever happened to the command
func persist(s *shell.Shell) {
	if err := s.Persist(); err != nil {
		logger.Warn().Err(err).Msg("Failed to save location")
	}
}

// explain adds the next step to errors the user can act on
func explain(err error) error {
	if errors.Is(err, interceptor.ErrAuthExpired) {
		return fmt.Errorf("%w\nYour session has ended. Run 'appshell login' to sign in again", err)
	}
	return err
}

// visit navigates through the guard before a screen's requests are made
func visit(s *shell.Shell, target string) error {
	d, err := s.Visit(target)
	if err != nil {
		return err
	}
	logger.Debug().Str("location", d.Location).Msg("Navigated")
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/appselect"
	"github.com/appshell-dev/appshell/internal/cli/config"
	"github.com/appshell-dev/appshell/internal/cli/userconfig"
)

// NewSelectAppCmd creates the select-app command
func NewSelectAppCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-app [alias]",
		Short: "Select the app to use for commands",
		Long: `Select the app to use for commands.

If no alias is provided, an interactive prompt will be shown.

Examples:
  $ appshell select-app          # Interactive selection
  $ appshell select-app movies   # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var alias string
			if len(args) > 0 {
				alias = args[0]
			}
			return runSelectApp(cmd, alias)
		},
	}

	return cmd
}

func runSelectApp(cmd *cobra.Command, alias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'appshell init' to create a configuration file", err)
	}

	var app *config.App
	if alias != "" {
		app, err = cfg.GetAppByAlias(alias)
	} else {
		app, err = appselect.PromptAppSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedApp(app.Alias); err != nil {
		return fmt.Errorf("failed to save selected app: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Selected app: %s\n", appselect.Label(app))
	return nil
}

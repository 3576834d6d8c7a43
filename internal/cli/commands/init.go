package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an appshell.json with the notes and movies apps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing appshell.json")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	out := cmd.OutOrStdout()

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "Found existing %s, leaving it unchanged (use --force to overwrite)\n", config.ConfigFileName)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Created ./%s with %d apps\n", config.ConfigFileName, len(cfg.Apps))
	for _, app := range cfg.Apps {
		fmt.Fprintf(out, "  %s (%s, %s/%s)\n", app.Alias, app.Kind, app.Platform, app.Mode)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Edit baseUrl/pageOrigin to point at your API")
	fmt.Fprintln(out, "  2. Run 'appshell login' to authenticate")

	return nil
}

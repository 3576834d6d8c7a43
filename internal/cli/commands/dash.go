package commands

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/config"
	"github.com/appshell-dev/appshell/internal/cli/shell"
)

// NewDashCmd creates the dash command
func NewDashCmd() *cobra.Command {
	var alias string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the notes web app in the browser at the current route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShell(alias, config.KindNotes)
			if err != nil {
				return err
			}

			pageURL, err := webURL(s)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "URL: %s\n", pageURL)
			if printOnly {
				return nil
			}

			if err := openBrowser(pageURL); err != nil {
				return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, pageURL)
			}
			return nil
		},
	}

	addAppFlag(cmd, &alias)
	cmd.Flags().BoolVar(&printOnly, "print", false, "Only print the URL")

	return cmd
}

// webURL is the page origin plus the hash route the browser app shows
func webURL(s *shell.Shell) (string, error) {
	env := s.Interceptor.Environment()
	origin := env.PageOrigin
	if origin == "" {
		origin = env.ResolvedBaseURL()
	}
	if origin == "" {
		return "", fmt.Errorf("app '%s' has neither pageOrigin nor baseUrl", s.App.Alias)
	}
	return strings.TrimRight(origin, "/") + "/#" + s.Navigator.Current(), nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

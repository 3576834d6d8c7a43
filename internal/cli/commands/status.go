package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/session"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var alias string
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the selected app, its environment and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShell(alias, "")
			if err != nil {
				return err
			}
			defer persist(s)

			env := s.Interceptor.Environment()
			baseURL := env.ResolvedBaseURL()
			if baseURL == "" {
				baseURL = "(relative, via " + env.PageOrigin + ")"
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "App:\t%s (%s)\n", s.App.Alias, s.App.Kind)
			fmt.Fprintf(w, "Environment:\t%s/%s\n", env.Platform, env.Mode)
			fmt.Fprintf(w, "API:\t%s\n", baseURL)
			fmt.Fprintf(w, "Store:\t%s\n", s.App.StoreKind())

			sess := s.Session()
			fmt.Fprintf(w, "Session:\t%s\n", session.StateOf(s.Store))
			if sess.Username != "" {
				fmt.Fprintf(w, "User:\t%s\n", sess.Username)
			}
			fmt.Fprintf(w, "Location:\t%s\n", s.Navigator.Current())
			w.Flush()

			if !verify || sess.Token == "" || s.Notes == nil {
				return nil
			}

			// Asking the API about the token runs it through the response guard
			user, err := s.Notes.Me(cmd.Context())
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Token accepted for %s\n", user.Username)
			return nil
		},
	}

	addAppFlag(cmd, &alias)
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the stored token against the API (notes apps)")

	return cmd
}

// NewOpenCmd creates the open command
func NewOpenCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "open <path>",
		Short: "Navigate the app to a route or page",
		Long: `Navigate the app to a route or page through the login guard.

Examples:
  $ appshell open /notes/edit/42
  $ appshell open /pages/movie/detail?id=7 --app movies`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShell(alias, "")
			if err != nil {
				return err
			}
			defer persist(s)

			d := s.Navigator.Open(args[0])
			out := cmd.OutOrStdout()
			if !d.Allowed {
				fmt.Fprintf(out, "Login required, now at %s\n", d.Location)
				return nil
			}

			fmt.Fprintf(out, "✓ Now at %s\n", d.Location)
			if d.Match.Route.Name != "" {
				fmt.Fprintf(out, "  Route: %s\n", d.Match.Route.Name)
			}
			printParams(out, d.Match.Params)
			return nil
		},
	}

	addAppFlag(cmd, &alias)

	return cmd
}

// printParams prints route params sorted by name
func printParams(out io.Writer, params map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(params)) {
		fmt.Fprintf(out, "  %s: %s\n", k, params[k])
	}
}

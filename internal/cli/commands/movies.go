package commands

import (
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/config"
	"github.com/appshell-dev/appshell/internal/cli/router"
	"github.com/appshell-dev/appshell/internal/cli/shell"
)

// NewMoviesCmd creates the movies command group
func NewMoviesCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "movies",
		Short: "Browse the movie catalog through the movies app",
	}
	addAppFlag(cmd, &alias)

	cmd.AddCommand(
		newMoviesListCmd(&alias),
		newMoviesShowCmd(&alias),
		newMoviesWebViewCmd(&alias),
	)

	return cmd
}

func withMovies(alias *string, page string, fn func(s *shell.Shell) error) error {
	s, err := openShell(*alias, config.KindMovies)
	if err != nil {
		return err
	}
	defer persist(s)

	if err := visit(s, page); err != nil {
		return err
	}

	return explain(fn(s))
}

func newMoviesListCmd(alias *string) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List one page of the catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMovies(alias, "/"+router.PageIndex, func(s *shell.Shell) error {
				result, err := s.Movies.List(cmd.Context(), page, size)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(result.Records) == 0 {
					fmt.Fprintln(out, "No movies found.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tYEAR\tRATING")
				fmt.Fprintln(w, "──\t─────\t────\t──────")
				for _, m := range result.Records {
					fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\n", m.ID, m.Title, m.Year, m.Rating)
				}
				w.Flush()

				fmt.Fprintf(out, "\nPage %d (%d per page), %d movies in total\n", result.Page, result.Size, result.Total)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", 10, "Movies per page")

	return cmd
}

func newMoviesShowCmd(alias *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			page := "/" + router.PageDetail + "?id=" + url.QueryEscape(id)

			return withMovies(alias, page, func(s *shell.Shell) error {
				m, err := s.Movies.Detail(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%d)\n", m.Title, m.Year)
				fmt.Fprintf(out, "Director: %s\n", m.Director)
				fmt.Fprintf(out, "Rating:   %.1f\n\n", m.Rating)
				fmt.Fprintln(out, m.Summary)
				return nil
			})
		},
	}
}

func newMoviesWebViewCmd(alias *string) *cobra.Command {
	return &cobra.Command{
		Use:   "webview <path-or-url>",
		Short: "Fetch a resource the way an embedded web page does",
		Long: `Fetch a resource the way an embedded web page does.

Web-view requests carry the stored token but are exempt from the session
guard: a 401 or 403 is printed and the session is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			page := "/" + router.PageWebView + "?url=" + url.QueryEscape(target)

			return withMovies(alias, page, func(s *shell.Shell) error {
				result, err := s.Movies.WebView(cmd.Context(), target)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "%d %s\n", result.Status, result.URL)
				_, err = cmd.OutOrStdout().Write(result.Body)
				return err
			})
		},
	}
}

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/client"
	"github.com/appshell-dev/appshell/internal/cli/shell"
)

// Categories are managed from the notes list, so every subcommand runs on /notes
func newCategoriesCmd(alias *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage note categories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List categories",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withNotes(alias, "/notes", func(s *shell.Shell) error {
					categories, err := s.Notes.ListCategories(cmd.Context())
					if err != nil {
						return err
					}
					printCategories(cmd.OutOrStdout(), categories)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withNotes(alias, "/notes", func(s *shell.Shell) error {
					category, err := s.Notes.CreateCategory(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "✓ Created category %s (%s)\n", category.Name, category.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a category",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withNotes(alias, "/notes", func(s *shell.Shell) error {
					if _, err := s.Notes.RenameCategory(cmd.Context(), args[0], args[1]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed category %s to %s\n", args[0], args[1])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a category, keeping its notes",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withNotes(alias, "/notes", func(s *shell.Shell) error {
					if err := s.Notes.DeleteCategory(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted category %s\n", args[0])
					return nil
				})
			},
		},
	)

	return cmd
}

func printCategories(out io.Writer, categories []client.Category) {
	if len(categories) == 0 {
		fmt.Fprintln(out, "No categories yet.")
		fmt.Fprintln(out, "\nCreate one with: appshell notes category add <name>")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUPDATED")
	fmt.Fprintln(w, "──\t────\t───────")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.UpdatedAt.Local().Format(time.DateTime))
	}
	w.Flush()
}

package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/client"
	"github.com/appshell-dev/appshell/internal/cli/config"
	"github.com/appshell-dev/appshell/internal/cli/shell"
)

// NewNotesCmd creates the notes command group
func NewNotesCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage notes through the notes app",
	}
	addAppFlag(cmd, &alias)

	cmd.AddCommand(
		newNotesListCmd(&alias),
		newNotesSearchCmd(&alias),
		newNotesShowCmd(&alias),
		newNotesAddCmd(&alias),
		newNotesEditCmd(&alias),
		newNotesRemoveCmd(&alias),
		newNotesPinCmd(&alias),
		newNotesArchiveCmd(&alias),
		newCategoriesCmd(&alias),
	)

	return cmd
}

// withNotes opens the notes shell, navigates to screen and runs fn there
func withNotes(alias *string, screen string, fn func(s *shell.Shell) error) error {
	s, err := openShell(*alias, config.KindNotes)
	if err != nil {
		return err
	}
	defer persist(s)

	if err := visit(s, screen); err != nil {
		return err
	}

	return explain(fn(s))
}

func newNotesListCmd(alias *string) *cobra.Command {
	var (
		archived bool
		category string
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List notes, pinned first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNotes(alias, "/notes", func(s *shell.Shell) error {
				var (
					notes []client.Note
					err   error
				)
				if category != "" {
					notes, err = s.Notes.NotesInCategory(cmd.Context(), category, archived)
				} else {
					notes, err = s.Notes.ListNotes(cmd.Context(), archived)
				}
				if err != nil {
					return err
				}
				printNotes(cmd.OutOrStdout(), notes)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "List archived notes")
	cmd.Flags().StringVar(&category, "category", "", "Only notes in this category ID")

	return cmd
}

func newNotesSearchCmd(alias *string) *cobra.Command {
	var (
		archived bool
		category string
	)

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search note titles and content",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var keyword string
			if len(args) == 1 {
				keyword = args[0]
			}
			if keyword == "" && category == "" {
				return fmt.Errorf("give a keyword, --category, or both")
			}

			return withNotes(alias, "/notes", func(s *shell.Shell) error {
				notes, err := s.Notes.SearchNotes(cmd.Context(), keyword, category, archived)
				if err != nil {
					return err
				}
				printNotes(cmd.OutOrStdout(), notes)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "Search archived notes")
	cmd.Flags().StringVar(&category, "category", "", "Only search this category ID")

	return cmd
}

func newNotesShowCmd(alias *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withNotes(alias, "/notes/edit/"+id, func(s *shell.Shell) error {
				note, err := s.Notes.GetNote(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s%s\n", note.Title, noteFlags(note))
				fmt.Fprintf(out, "Updated %s\n\n", note.UpdatedAt.Local().Format(time.DateTime))
				fmt.Fprintln(out, note.Content)
				return nil
			})
		},
	}
}

func newNotesAddCmd(alias *string) *cobra.Command {
	var in client.NoteInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(in.Title) == "" {
				return fmt.Errorf("--title is required")
			}
			return withNotes(alias, "/notes/add", func(s *shell.Shell) error {
				note, err := s.Notes.CreateNote(cmd.Context(), in)
				if err != nil {
					return err
				}
				// Saving returns to the list like the form does
				s.Navigator.Open("/notes")

				fmt.Fprintf(cmd.OutOrStdout(), "✓ Created note %s\n", note.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Note title")
	cmd.Flags().StringVar(&in.Content, "content", "", "Note content")
	cmd.Flags().StringVar(&in.CategoryID, "category", "", "File the note under this category ID")

	return cmd
}

func newNotesEditCmd(alias *string) *cobra.Command {
	var title, content, category string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note's title, content or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			titleSet := cmd.Flags().Changed("title")
			contentSet := cmd.Flags().Changed("content")
			categorySet := cmd.Flags().Changed("category")
			if !titleSet && !contentSet && !categorySet {
				return fmt.Errorf("nothing to change, use --title, --content or --category")
			}

			return withNotes(alias, "/notes/edit/"+id, func(s *shell.Shell) error {
				current, err := s.Notes.GetNote(cmd.Context(), id)
				if err != nil {
					return err
				}

				in := client.NoteInput{Title: current.Title, Content: current.Content, CategoryID: current.CategoryID}
				if titleSet {
					in.Title = title
				}
				if contentSet {
					in.Content = content
				}
				if categorySet {
					in.CategoryID = category
				}

				if _, err := s.Notes.UpdateNote(cmd.Context(), id, in); err != nil {
					return err
				}
				s.Navigator.Open("/notes")

				fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated note %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringVar(&category, "category", "", "Move to this category ID, empty to uncategorise")

	return cmd
}

func newNotesRemoveCmd(alias *string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNotes(alias, "/notes", func(s *shell.Shell) error {
				if err := s.Notes.DeleteNote(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted note %s\n", args[0])
				return nil
			})
		},
	}
}

func newNotesPinCmd(alias *string) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin a note to the top of the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNotes(alias, "/notes", func(s *shell.Shell) error {
				if err := s.Notes.PinNote(cmd.Context(), args[0], !off); err != nil {
					return err
				}
				verb := "Pinned"
				if off {
					verb = "Unpinned"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s note %s\n", verb, args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Unpin instead")

	return cmd
}

func newNotesArchiveCmd(alias *string) *cobra.Command {
	var restore bool

	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Move a note to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNotes(alias, "/notes", func(s *shell.Shell) error {
				if err := s.Notes.ArchiveNote(cmd.Context(), args[0], !restore); err != nil {
					return err
				}
				verb := "Archived"
				if restore {
					verb = "Restored"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s note %s\n", verb, args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&restore, "restore", false, "Take the note out of the archive")

	return cmd
}

func printNotes(out io.Writer, notes []client.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes found.")
		fmt.Fprintln(out, "\nCreate one with: appshell notes add --title <title>")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
	fmt.Fprintln(w, "──\t─────\t───────")

	for _, note := range notes {
		fmt.Fprintf(w, "%s\t%s%s\t%s\n",
			note.ID,
			note.Title,
			noteFlags(&note),
			note.UpdatedAt.Local().Format(time.DateTime),
		)
	}

	w.Flush()
}

func noteFlags(note *client.Note) string {
	var flags []string
	if note.IsPinned {
		flags = append(flags, "pinned")
	}
	if note.IsArchived {
		flags = append(flags, "archived")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}

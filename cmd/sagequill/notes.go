package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/notes"
	"github.com/pbaille/sagequill/internal/richtext"
)

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}

	cmd.AddCommand(noteAddCmd())
	cmd.AddCommand(noteListCmd())
	cmd.AddCommand(noteShowCmd())
	cmd.AddCommand(noteEditCmd())
	cmd.AddCommand(notePinCmd())
	cmd.AddCommand(noteDeleteCmd())
	cmd.AddCommand(noteSearchCmd())
	return cmd
}

// toMarkup stores plain input as HTML; Markdown syntax is honored
func toMarkup(s string) (string, error) {
	if s == "" || richtext.IsMarkup(s) {
		return s, nil
	}
	return richtext.FromMarkdown(s)
}

func noteAddCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a new note (content is Markdown or HTML)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}

			content, err := toMarkup(strings.Join(args, " "))
			if err != nil {
				return err
			}

			res, err := a.notes.Create(cmd.Context(), sess, title, content)
			if err != nil {
				return err
			}

			fmt.Printf("Added note: %s\n", shortID(res.Note.ID))
			fmt.Printf("Content: %s\n", richtext.Snippet(res.Note.Content, 80))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	return cmd
}

func noteListCmd() *cobra.Command {
	var (
		limit  int
		pinned bool
		tag    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, pinned first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}

			list, err := a.notes.Search(cmd.Context(), sess, domain.NoteFilter{
				PinnedOnly: pinned,
				Tag:        tag,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Println("No notes yet. Use 'sagequill note add' to create one.")
				return nil
			}

			printNotes(list)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of notes to show")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "only pinned notes")
	cmd.Flags().StringVar(&tag, "tag", "", "only notes with this tag")
	return cmd
}

func noteShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id|title]",
		Short: "Show note details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}

			n, err := a.notes.Resolve(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("ID:      %s\n", n.ID)
			fmt.Printf("Title:   %s\n", n.Title)
			fmt.Printf("Created: %s\n", n.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("Updated: %s\n", n.UpdatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("Pinned:  %t\n", n.Pinned)
			fmt.Printf("State:   %s\n", a.notes.State(n))
			fmt.Printf("Content:\n%s\n", richtext.PlainText(n.Content))

			if n.Enrichment != nil {
				fmt.Println()
				printEnrichment(*n.Enrichment)
			}
			return nil
		},
	}
}

func noteEditCmd() *cobra.Command {
	var (
		title   string
		content string
	)

	cmd := &cobra.Command{
		Use:   "edit [id|title]",
		Short: "Change a note's title or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}

			n, err := a.notes.Resolve(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}

			var in notes.UpdateInput
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("content") {
				markup, err := toMarkup(content)
				if err != nil {
					return err
				}
				in.Content = &markup
			}
			if in.Title == nil && in.Content == nil {
				return fmt.Errorf("nothing to change: pass --title or --content")
			}

			res, err := a.notes.Update(cmd.Context(), sess, n.ID, in)
			if err != nil {
				return err
			}

			fmt.Printf("Updated note: %s\n", shortID(res.Note.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new content (Markdown or HTML)")
	return cmd
}

func notePinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin [id|title]",
		Short: "Toggle a note's pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}

			n, err := a.notes.Resolve(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}

			res, err := a.notes.TogglePin(cmd.Context(), sess, n.ID)
			if err != nil {
				return err
			}

			if res.Note.Pinned {
				fmt.Printf("Pinned: %s\n", displayTitle(res.Note))
			} else {
				fmt.Printf("Unpinned: %s\n", displayTitle(res.Note))
			}
			return nil
		},
	}
}

func noteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id|title]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}

			n, err := a.notes.Resolve(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}

			if _, err := a.notes.Delete(cmd.Context(), sess, n.ID); err != nil {
				return err
			}

			fmt.Printf("Deleted: %s\n", displayTitle(n))
			return nil
		},
	}
}

func noteSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search note titles and content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}

			list, err := a.notes.Search(cmd.Context(), sess, domain.NoteFilter{Query: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Println("No matching notes found.")
				return nil
			}

			printNotes(list)
			return nil
		},
	}
}

func printNotes(list []domain.Note) {
	for i := range list {
		n := &list[i]
		pin := " "
		if n.Pinned {
			pin = "*"
		}
		fmt.Printf("%s %s  %-24s  %s\n", pin, shortID(n.ID), truncate(displayTitle(n), 24), richtext.Snippet(n.Content, 50))
	}
}

func printEnrichment(e domain.Enrichment) {
	fmt.Printf("Summary:   %s\n", e.Summary)
	fmt.Printf("Sentiment: %s\n", e.Sentiment)

	if len(e.Dates) > 0 {
		fmt.Printf("\nDates:\n")
		for _, d := range e.Dates {
			fmt.Printf("  - %s  %s\n", d.Date, d.Label)
		}
	}
	if len(e.Actions) > 0 {
		fmt.Printf("\nActions:\n")
		for _, a := range e.Actions {
			fmt.Printf("  - %s\n", a)
		}
	}
	if len(e.Tags) > 0 {
		fmt.Printf("\nTags: %s\n", strings.Join(e.Tags, ", "))
	}
}

func displayTitle(n *domain.Note) string {
	if n.Title != "" {
		return n.Title
	}
	return "(untitled)"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

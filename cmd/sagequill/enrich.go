package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/sagequill/internal/prompt"
)

func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [id|title]",
		Short: "Generate (or regenerate) a note's AI summary",
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

			fmt.Print("Summarizing... ")
			res, err := a.notes.Enrich(cmd.Context(), sess, n.ID)
			if err != nil {
				fmt.Println("failed")
				return err
			}
			fmt.Println("done")
			fmt.Println()

			printEnrichment(*res.Note.Enrichment)
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [id|title] [question]",
		Short: "Ask a question answered only from the note",
		Args:  cobra.MinimumNArgs(2),
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

			answer, err := a.notes.Ask(cmd.Context(), sess, n.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			fmt.Println(answer)
			return nil
		},
	}
}

func promptsCmd() *cobra.Command {
	var sample string

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Show the active prompt catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			c := a.prompts.Catalog()
			source := a.cfg.Prompts.Path
			if source == "" {
				source = "(built-in)"
			}
			fmt.Printf("Source:  %s\n", source)
			fmt.Printf("Version: %d\n", c.Version)

			if sample == "" {
				return nil
			}

			summarize, err := c.Summarize(sample)
			if err != nil {
				return err
			}
			qa, err := c.Question(sample, "What is this about?")
			if err != nil {
				return err
			}

			fmt.Printf("\n--- summarize ---\n%s\n", summarize)
			fmt.Printf("\n--- qa ---\n%s\n", qa)
			fmt.Printf("\n(not found reply: %q)\n", prompt.NotFound)
			return nil
		},
	}

	cmd.Flags().StringVar(&sample, "render", "", "render both prompts with this sample content")
	return cmd
}

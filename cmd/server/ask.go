package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctai-labs/clinical-trial-ai/internal/prompts"
)

func newAskCmd() *cobra.Command {
	var (
		studyID string
		showSQL bool
		maxRows int
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a natural language question against the warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			res, err := app.analyzer.Ask(cmd.Context(), args[0], studyID)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			out := cmd.OutOrStdout()
			if showSQL {
				_, _ = fmt.Fprintf(out, "SQL:\n%s\n\n", res.SQL)
			}
			if !res.Data.Empty() && maxRows > 0 {
				_, _ = fmt.Fprintln(out, prompts.RenderResult(res.Data.Head(maxRows)))
			}
			_, _ = fmt.Fprintln(out, res.Answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&studyID, "study", "", "Restrict the question to one study")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "Print the generated SQL")
	cmd.Flags().IntVar(&maxRows, "rows", 10, "Result rows to print before the answer, 0 to hide")

	return cmd
}

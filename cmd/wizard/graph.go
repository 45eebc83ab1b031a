package main

import (
	"fmt"

	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/amp-labs/amp-wizard/wizard/visualizer"
	"github.com/spf13/cobra"
)

// noHost is used where a form is declared but never run.
func noHost() prompter.Host { return nil }

func newGraphCmd() *cobra.Command {
	var (
		direction string
		noDeps    bool
	)

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Print a Mermaid flowchart of a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, form, err := loadForm(args[0], noHost)
			if err != nil {
				return err
			}

			opts := visualizer.DefaultOptions().
				WithDirection(direction).
				WithShowDependencies(!noDeps)

			diagram, err := visualizer.GenerateMermaidWithOptions(form, opts)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), diagram)

			return err
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "TD", "Diagram direction: TD or LR")
	cmd.Flags().BoolVar(&noDeps, "no-deps", false, "Leave out dependency edges")

	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a form definition",
		Long: `check parses a form, compiles its show_when expressions and verifies
that every field only depends on fields declared before it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, form, err := loadForm(args[0], noHost)
			if err != nil {
				return err
			}

			if err := form.Check(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fields ok\n", args[0], len(def.Fields))

			return err
		},
	}
}

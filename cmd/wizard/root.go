package main

import (
	"github.com/amp-labs/amp-wizard/envutil"
	"github.com/amp-labs/amp-wizard/formfile"
	"github.com/amp-labs/amp-wizard/logger"
	"github.com/amp-labs/amp-wizard/wizard"
	"github.com/spf13/cobra"
)

const appName = "wizard"

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   appName,
		Short: "Run declarative multi-step prompts",
		Long: `wizard asks the questions declared in a YAML form, one step at a time,
going back a step on Esc (or Ctrl+C), and prints the answers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				if err := envutil.LoadFile(envFile); err != nil {
					return err
				}
			}

			// Prompts own stdout, so logs go to stderr unless LOG_OUTPUT says otherwise.
			_, err := logger.ConfigureLogging(appName)

			return err
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from a .env or .yaml file")

	root.AddCommand(newRunCmd(), newGraphCmd(), newCheckCmd())

	return root
}

// loadForm reads a definition and declares its form.
func loadForm(path string, host hostFactory) (*formfile.Definition, *wizard.Form, error) {
	def, err := formfile.Load(path)
	if err != nil {
		return nil, nil, err
	}

	form, err := formfile.Build(def, host())
	if err != nil {
		return nil, nil, err
	}

	return def, form, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/amp-labs/amp-wizard/cli"
	"github.com/amp-labs/amp-wizard/envutil"
	"github.com/amp-labs/amp-wizard/logger"
	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/amp-labs/amp-wizard/telemetry"
	"github.com/amp-labs/amp-wizard/tui"
	"github.com/amp-labs/amp-wizard/wizard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const exitCancelled = 130

var (
	errCancelled     = errors.New("cancelled")
	errUnknownFormat = errors.New("unknown output format")
	errUnknownUI     = errors.New("unknown ui")
)

var uiNames = []string{"tui", "cli"}

type hostFactory func() prompter.Host

func newRunCmd() *cobra.Command {
	var (
		ui        string
		format    string
		stateFile string
	)

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Ask the questions of a form and print the answers",
		Example: `  wizard run bucket.yaml
  wizard run bucket.yaml --ui cli --format yaml
  wizard run bucket.yaml --state previous.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ui") {
				ui = envutil.OneOf("WIZARD_UI", uiNames, envutil.Default("tui")).ValueOrElse("tui")
			}

			host, err := hostFor(ui)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runForm(ctx, cmd.OutOrStdout(), args[0], host, format, stateFile)
		},
	}

	cmd.Flags().StringVar(&ui, "ui", "tui", "Interface to prompt with: tui or cli (default from WIZARD_UI)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVar(&stateFile, "state", "", "JSON file with answers to start from")

	return cmd
}

func hostFor(ui string) (hostFactory, error) {
	switch ui {
	case "tui":
		return func() prompter.Host { return tui.NewHost(tui.WithIO(os.Stdin, os.Stderr)) }, nil
	case "cli":
		return func() prompter.Host { return cli.NewHost(cli.WithStdio(os.Stdin, os.Stderr)) }, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %q)", errUnknownUI, ui, uiNames)
	}
}

func runForm(ctx context.Context, out io.Writer, path string, host hostFactory, format, stateFile string) error {
	ctx = logger.WithSubsystem(ctx, appName)

	tracing, err := telemetry.LoadConfigFromEnv(ctx)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, tracing)
	if err != nil {
		return err
	}

	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Get(ctx).Warn("failed to flush traces", "error", err)
		}
	}()

	def, form, err := loadForm(path, host)
	if err != nil {
		return err
	}

	opts := []wizard.Option{wizard.WithName(def.Name)}

	if stateFile != "" {
		initial, err := readState(stateFile)
		if err != nil {
			return err
		}

		opts = append(opts, wizard.WithInitialState(initial))
	}

	if def.Title != "" {
		_, _ = fmt.Fprint(os.Stderr, cli.BannerAutoWidth(def.Title, cli.AlignCenter))
	}

	res, err := wizard.New(form, opts...).Run(ctx)
	if err != nil {
		return err
	}

	if res.Cancelled() {
		return errCancelled
	}

	encoded, err := encode(res.Snapshot(), format)
	if err != nil {
		return err
	}

	_, err = out.Write(encoded)

	return err
}

func readState(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path chosen by the user
	if err != nil {
		return nil, err
	}

	state, err := wizard.StateFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return state.Snapshot().Map(), nil
}

func encode(snap wizard.Snapshot, format string) ([]byte, error) {
	switch format {
	case "json":
		return append(snap.JSON(), '\n'), nil
	case "yaml":
		return yaml.Marshal(snap.Map())
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saleor/configurator-sub007/pkg/engine"
	"github.com/saleor/configurator-sub007/pkg/recovery"
	"github.com/saleor/configurator-sub007/pkg/remote"
	"github.com/saleor/configurator-sub007/pkg/report"
	"github.com/saleor/configurator-sub007/pkg/schema"
	"github.com/saleor/configurator-sub007/pkg/stores"
	"github.com/saleor/configurator-sub007/pkg/telemetry"
)

func newDeployCommand() *cobra.Command {
	var (
		include     []string
		exclude     []string
		ci          bool
		dryRun      bool
		skipDiff    bool
		timeout     time.Duration
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Apply the configuration to the platform",
		Long: `Compute the diff between the local document and the platform, show it,
and apply the resulting operations stage by stage. Stages run in
dependency order; a stage with failures stops the run before any
dependent stage starts.`,
		Example: `  # Review and apply all pending changes
  configurator deploy

  # Non-interactive, for pipelines
  configurator deploy --ci

  # Preview without writing anything
  configurator deploy --dry-run

  # Only deploy products and their prerequisites explicitly
  configurator deploy --include productTypes,products`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := buildScope(include, exclude)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				return fmt.Errorf("%w: --concurrency must be positive", errUsage)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel func()
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			log := telemetry.Component(newLogger(), "deploy")
			registry, err := newRegistry()
			if err != nil {
				return err
			}

			local, err := schema.Load(configPath)
			if err != nil {
				return err
			}
			snapshot, err := remote.NewFetcher(registry, log).Snapshot(ctx)
			if err != nil {
				return err
			}
			summary, err := engine.ComputeDiff(local, snapshot, scope)
			if err != nil {
				return err
			}

			if summary.TotalChanges == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes to deploy.")
				return nil
			}

			if !skipDiff {
				if err := report.Render(cmd.OutOrStdout(), summary, report.FormatTable); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d operations would be applied.\n", summary.TotalChanges)
			} else if !ci {
				if !confirmDeploy(cmd, summary.TotalChanges) {
					fmt.Fprintln(cmd.OutOrStdout(), "Deployment cancelled.")
					return nil
				}
			}

			metrics := telemetry.NewMetrics("configurator")
			deployer := engine.NewDeployer(engine.DeployerConfig{
				Registry:    registry,
				Guide:       recovery.NewGuide(),
				Logger:      log,
				Metrics:     metrics,
				History:     openHistory(log),
				Concurrency: concurrency,
				DryRun:      dryRun,
			})

			result, err := deployer.Deploy(ctx, summary)
			if err != nil {
				var aggregate *engine.StageAggregateError
				if errors.As(err, &aggregate) {
					fmt.Fprintln(cmd.ErrOrStderr(), aggregate.UserMessage())
				}
				return err
			}

			if result.DryRun {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deployment %s complete: %d operations applied.\n", result.RunID, result.Applied)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "only deploy these sections")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "skip these sections")
	cmd.Flags().BoolVar(&ci, "ci", false, "non-interactive mode, skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and show the plan without applying it")
	cmd.Flags().BoolVar(&skipDiff, "skip-diff", false, "do not print the diff before applying")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the deployment after this duration")
	cmd.Flags().IntVar(&concurrency, "concurrency", engine.DefaultConcurrency, "concurrent operations per stage")

	return cmd
}

// confirmDeploy prompts on a terminal; non-terminal stdin without --ci
// refuses rather than hangs.
func confirmDeploy(cmd *cobra.Command, changes int) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Refusing to deploy without confirmation on a non-interactive terminal. Use --ci to skip the prompt.")
		return false
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Apply %d operations? [y/N] ", changes)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// openHistory opens the run-history store. History is best effort: a
// store that cannot be opened downgrades to a warning, never blocks a
// deployment.
func openHistory(log zerolog.Logger) engine.RunRecorder {
	if historyPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
		log.Warn().Err(err).Str("path", historyPath).Msg("Run history disabled")
		return nil
	}
	store, err := stores.Open(context.Background(), historyPath)
	if err != nil {
		log.Warn().Err(err).Str("path", historyPath).Msg("Run history disabled")
		return nil
	}
	return store
}

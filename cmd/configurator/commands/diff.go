package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saleor/configurator-sub007/pkg/engine"
	"github.com/saleor/configurator-sub007/pkg/remote"
	"github.com/saleor/configurator-sub007/pkg/report"
	"github.com/saleor/configurator-sub007/pkg/schema"
	"github.com/saleor/configurator-sub007/pkg/telemetry"
)

func newDiffCommand() *cobra.Command {
	var (
		include    []string
		exclude    []string
		formatName string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show changes between the configuration and the platform",
		Long: `Compare the local desired-state document with the platform's current
state and report the operations a deploy would perform. Nothing is
written: diff is always safe to run.`,
		Example: `  # Show all pending changes
  configurator diff

  # Only compare the shop and channel sections
  configurator diff --include shop,channels

  # Machine-readable output
  configurator diff --format json

  # Re-run the diff whenever the document changes
  configurator diff --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := buildScope(include, exclude)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}

			log := telemetry.Component(newLogger(), "diff")
			registry, err := newRegistry()
			if err != nil {
				return err
			}
			fetcher := remote.NewFetcher(registry, log)

			if !watch {
				return runDiff(cmd.Context(), cmd.OutOrStdout(), log, fetcher, scope, format)
			}
			return watchDiff(cmd.Context(), cmd.OutOrStdout(), log, fetcher, scope, format)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "only compare these sections")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "skip these sections")
	cmd.Flags().StringVar(&formatName, "format", "table", "output format (table, json, summary)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run the diff when the document changes")

	return cmd
}

func runDiff(ctx context.Context, w io.Writer, log zerolog.Logger, fetcher *remote.Fetcher, scope schema.Scope, format report.Format) error {
	local, err := schema.Load(configPath)
	if err != nil {
		return err
	}
	snapshot, err := fetcher.Snapshot(ctx)
	if err != nil {
		return err
	}

	summary, err := engine.ComputeDiff(local, snapshot, scope)
	if err != nil {
		return err
	}
	log.Debug().Int("total_changes", summary.TotalChanges).Msg("Diff computed")

	return report.Render(w, summary, format)
}

// watchDiff re-runs the diff whenever the document is written. Editors
// typically replace the file, so the parent directory is watched and
// events are debounced.
func watchDiff(ctx context.Context, w io.Writer, log zerolog.Logger, fetcher *remote.Fetcher, scope schema.Scope, format report.Format) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	if err := runDiff(ctx, w, log, fetcher, scope, format); err != nil {
		log.Error().Err(err).Msg("Diff failed")
	}

	target, _ := filepath.Abs(configPath)
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path, _ := filepath.Abs(event.Name)
			if path != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("File watcher error")
		case <-pending:
			pending = nil
			log.Info().Str("path", configPath).Msg("Document changed, re-running diff")
			if err := runDiff(ctx, w, log, fetcher, scope, format); err != nil {
				log.Error().Err(err).Msg("Diff failed")
			}
		}
	}
}

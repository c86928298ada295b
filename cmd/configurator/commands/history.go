package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/saleor/configurator-sub007/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past deployment runs",
	}
	cmd.AddCommand(newHistoryListCommand(), newHistoryShowCommand())
	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent deployment runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := stores.Open(cmd.Context(), historyPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No deployment runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tWHEN\tSTATUS\tAPPLIED")
			for _, run := range runs {
				status := run.Status
				if run.DryRun {
					status += " (dry run)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					run.ID, run.CreatedAt.Local().Format(time.DateTime), status, run.Applied)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a single deployment run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := stores.Open(cmd.Context(), historyPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:      %s\n", run.ID)
			fmt.Fprintf(out, "When:     %s\n", run.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Status:   %s\n", run.Status)
			fmt.Fprintf(out, "Dry run:  %v\n", run.DryRun)
			fmt.Fprintf(out, "Applied:  %d\n", run.Applied)
			if run.Error != "" {
				fmt.Fprintf(out, "Error:    %s\n", run.Error)
			}
			if len(run.Stages) > 0 {
				fmt.Fprintln(out, "Stages:")
				for _, stage := range run.Stages {
					fmt.Fprintf(out, "  %-32s %d succeeded, %d failed\n",
						stage.Name, stage.Succeeded, stage.Failed)
				}
			}
			return nil
		},
	}
}

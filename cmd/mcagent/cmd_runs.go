package main

import (
	"fmt"

	"github.com/missioncontrol/mcagent/internal/runlog"
	"github.com/spf13/cobra"
)

func newRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "View recorded run logs",
		Long: `View run event logs.

Run logs are NDJSON files written by complete, poll and watch when --run-log
is set or run_log.enabled is true in .mcagent.yaml. They record every claim,
skipped task, completed task and failure.`,
	}

	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsViewCommand())

	return cmd
}

func newRunsListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded run logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				a, err := loadApp()
				if err != nil {
					return err
				}
				dir = a.cfg.RunLog.Dir
			}

			files, err := runlog.ListRuns(dir)
			if err != nil {
				return fmt.Errorf("listing runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No run logs found.") //nolint:errcheck
				return nil
			}

			fmt.Fprintf(out, "%s %-8s %s\n", cell("File", 40), "Events", "Modified")               //nolint:errcheck
			fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────") //nolint:errcheck
			for _, f := range files {
				fmt.Fprintf(out, "%s %-8d %s\n", cell(f.Name, 40), f.NumEvents, f.ModTime.Format("2006-01-02 15:04:05")) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to search for run logs (default from config)")

	return cmd
}

func newRunsViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <run-file>",
		Short: "View a run timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := runlog.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading run log: %w", err)
			}

			runlog.RenderTimeline(cmd.OutOrStdout(), events)
			return nil
		},
	}

	return cmd
}

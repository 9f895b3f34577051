package main

import (
	"fmt"
	"io"

	"github.com/missioncontrol/mcagent/internal/completion"
	"github.com/spf13/cobra"
)

func newCompleteCommand() *cobra.Command {
	var (
		dryRun bool
		runLog bool
	)

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Harvest finished sub-agent work and move tasks to Review",
		Long: `Fetch the assignee's InProgress tasks and, for every task whose session key
carries a mission-control label, summarize the latest sub-agent transcript,
store the summary as the task's results and move the task to Review.

Tasks without a transcript, or whose transcript yields no summary, get a
default result text. Use --dry-run to see what would be stored without
changing any task.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return completeCommandE(cmd, dryRun, runLog)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Locate and summarize without updating any task")
	cmd.Flags().BoolVar(&runLog, "run-log", false, "Record an NDJSON run log (overrides config)")

	return cmd
}

func completeCommandE(cmd *cobra.Command, dryRun, runLog bool) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	store, err := a.taskStore()
	if err != nil {
		return err
	}
	transcripts, err := a.transcriptStore()
	if err != nil {
		return err
	}
	rl, err := a.openRunLog(runLog)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck

	coord := completion.New(store, transcripts, a.newRun(),
		completion.WithLogger(a.logger),
		completion.WithRunLog(rl),
		completion.WithDryRun(dryRun),
	)
	report, err := coord.Run(cmd.Context())
	if err != nil {
		return err
	}

	printCompletionReport(cmd.OutOrStdout(), report, dryRun)

	if failed := report.Failed(); len(failed) > 0 {
		return &TaskFailureError{
			Message: fmt.Sprintf("%d of %d task(s) could not be completed", len(failed), report.Processed),
		}
	}
	return nil
}

//nolint:errcheck // display-only writes
func printCompletionReport(w io.Writer, report *completion.Report, dryRun bool) {
	switch {
	case report.FetchErr != nil:
		fmt.Fprintf(w, "Could not fetch tasks: %v\n", report.FetchErr)
		return
	case report.Fetched == 0:
		fmt.Fprintln(w, "No tasks needing review")
		return
	}

	fmt.Fprintf(w, "%s %s %s %s %s\n",
		cell("TASK", 12), cell("TITLE", 32), cell("OUTCOME", 14), cell("SOURCE", 10), "CHARS")
	for _, t := range report.Tasks {
		chars := "-"
		if t.Outcome != completion.OutcomeSkipped {
			chars = fmt.Sprint(t.SummaryChars)
		}
		fmt.Fprintf(w, "%s %s %s %s %s\n",
			cell(t.TaskID, 12), cell(t.Title, 32), cell(string(t.Outcome), 14), cell(string(t.Source), 10), chars)
		if t.Err != nil {
			fmt.Fprintf(w, "    error: %v\n", t.Err)
		}
		if dryRun && t.Outcome == completion.OutcomeDryRun {
			fmt.Fprintf(w, "    %s\n", indent(t.Summary, "    "))
		}
	}
	fmt.Fprintln(w)

	verb := "Processed"
	if dryRun {
		verb = "Would process"
	}
	fmt.Fprintf(w, "Post-process complete. %s %d task(s).\n", verb, report.Processed)
}

package main

import (
	"fmt"

	"github.com/missioncontrol/mcagent/internal/claim"
	"github.com/spf13/cobra"
)

func newPollCommand() *cobra.Command {
	var runLog bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Claim one task for a sub-agent",
		Long: `Ask the task store for work: a Ready task first, otherwise an orphaned
InProgress task. When a task is claimed, print it together with the
sessions_spawn call that hands it to a sub-agent under the label
"mission-control:<task id>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pollCommandE(cmd, runLog)
		},
	}

	cmd.Flags().BoolVar(&runLog, "run-log", false, "Record an NDJSON run log (overrides config)")

	return cmd
}

func pollCommandE(cmd *cobra.Command, runLog bool) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	store, err := a.taskStore()
	if err != nil {
		return err
	}
	rl, err := a.openRunLog(runLog)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck

	client := claim.NewClient(store, claim.Options{Logger: a.logger, RunLog: rl})
	cl, err := client.Poll(cmd.Context(), a.newRun())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cl == nil {
		fmt.Fprintln(out, "No work found") //nolint:errcheck
		return nil
	}
	cl.WriteInstructions(out)
	return nil
}

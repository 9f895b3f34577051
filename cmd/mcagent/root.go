package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcagent",
		Short: "mcagent - Mission Control sub-agent coordinator",
		Long: `mcagent coordinates sub-agent work against a Mission Control task store.

It claims ready or orphaned tasks for a sub-agent, and later harvests the
sub-agent's session transcript into a short summary, stores it as the task's
results and moves the task to Review.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		slog.Debug("Running command", "command", cmd.CommandPath(), "flags", changedFlags(cmd))
	}

	cmd.AddCommand(newCompleteCommand())
	cmd.AddCommand(newPollCommand())
	cmd.AddCommand(newExtractCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newRunsCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newConfigCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}

// changedFlags lists the flags set on the command line as name=value pairs.
func changedFlags(cmd *cobra.Command) []string {
	var set []string
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		set = append(set, flag.Name+"="+flag.Value.String())
	})
	return set
}

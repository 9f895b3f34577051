package main

import (
	"fmt"
	"path/filepath"

	"github.com/missioncontrol/mcagent/internal/completion"
	"github.com/missioncontrol/mcagent/internal/summary"
	"github.com/missioncontrol/mcagent/internal/transcript"
	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "extract <transcript>",
		Short: "Show the summary that would be extracted from a transcript",
		Long: `Run the summary extractor on a local transcript file (.jsonl, .jsonl.gz or
.jsonl.zst) and print the result with the strategy that produced it.

No task is read or changed. Use --plain to strip Markdown from the output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return extractCommandE(cmd, args[0], plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Render the summary as plain text")

	return cmd
}

//nolint:errcheck // display-only writes
func extractCommandE(cmd *cobra.Command, path string, plain bool) error {
	store := transcript.NewDirStore(filepath.Dir(path), nil)
	t, err := transcript.Load(cmd.Context(), store, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Transcript: %s (%d entries, %d skipped)\n", filepath.Base(path), len(t.Entries), t.Skipped)

	res, ok := summary.Extract(t.Entries)
	if !ok {
		fmt.Fprintln(out, "No summary found in transcript; completion would store:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, completion.DefaultSummary)
		return nil
	}

	text := res.Text
	if plain {
		text = summary.PlainText(text)
	}
	fmt.Fprintf(out, "Strategy: %s", res.Strategy)
	if res.Truncated {
		fmt.Fprint(out, " (truncated)")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	fmt.Fprintln(out, text)
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/missioncontrol/mcagent/internal/config"
	"github.com/missioncontrol/mcagent/internal/wizard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCommand() *cobra.Command {
	var (
		force       bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .mcagent.yaml config file",
		Long: `Create a .mcagent.yaml in the given directory (default: current directory).

When stdin is a terminal, a short form asks for the task store URL, the
assignee and where transcripts are stored. Otherwise the defaults are
written. An existing file is kept unless --force is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return initCommandE(cmd, dir, interactive, force)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the setup form even when stdin is not a terminal")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func initCommandE(cmd *cobra.Command, dir string, interactive, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.New()

	// Check TTY from the command's input stream, not os.Stdin directly.
	isTTY := false
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	if isTTY || interactive {
		var err error
		cfg, err = wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if errs := config.ValidateBytes(data); len(errs) > 0 {
		return fmt.Errorf("generated config is invalid: %v", errs)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path) //nolint:errcheck
	return nil
}

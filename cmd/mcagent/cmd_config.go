package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/missioncontrol/mcagent/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}

	cmd.AddCommand(newConfigValidateCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a .mcagent.yaml against the config schema",
		Long: `Validate a config file against the embedded JSON Schema. Without an
argument, the .mcagent.yaml found by walking up from the current directory
is validated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			} else {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				p, _, err := config.Find(wd)
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no %s found", config.FileName)
				}
				if err != nil {
					return err
				}
				path = p
			}

			errs, err := config.ValidateFile(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(errs) == 0 {
				fmt.Fprintf(out, "✓ %s is valid\n", path) //nolint:errcheck
				return nil
			}
			fmt.Fprintf(out, "✗ %s has %d problem(s):\n", path, len(errs)) //nolint:errcheck
			for _, e := range errs {
				fmt.Fprintf(out, "  %s\n", e) //nolint:errcheck
			}
			return fmt.Errorf("invalid config: %s", path)
		},
	}

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after merging .mcagent.yaml, defaults and MC_* environment variables.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := a.cfg.Path
			if source == "" {
				source = "defaults"
			}
			fmt.Fprintf(out, "# source: %s\n", source) //nolint:errcheck
			_, err = out.Write(data)
			return err
		},
	}

	return cmd
}

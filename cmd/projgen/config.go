package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vango-dev/projgen/internal/config"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize projgen.yaml",
		Long: `Print the effective configuration after defaults, projgen.yaml,
PROJGEN_* environment variables and flags have been applied.
Secrets are masked. When a projgen.yaml was read, its path is printed
first as a YAML comment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			if path := cfg.Path(); path != "" {
				fmt.Fprintf(c.out, "# %s\n", path)
			}
			_, err = c.out.Write(data)
			return err
		},
	}

	cmd.AddCommand(c.configInitCmd())

	return cmd
}

func (c *cli) configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default projgen.yaml into the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			path, err := config.WriteDefault(cfg.WorkspacePath(), force)
			if err != nil {
				return err
			}
			c.success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing projgen.yaml")

	return cmd
}

package main

import (
	"github.com/spf13/cobra"
	"github.com/vango-dev/projgen/internal/templates"
)

func (c *cli) templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range templates.List() {
				tmpl, err := templates.Get(name)
				if err != nil {
					return err
				}
				c.success("%s  %s", tmpl.Name, tmpl.Description)
				for _, f := range tmpl.Names() {
					c.info("  %s", f)
				}
			}
			return nil
		},
	}
}

package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vango-dev/projgen/internal/errors"
	"github.com/vango-dev/projgen/internal/generator"
	"github.com/vango-dev/projgen/internal/publish"
)

// createOptions are the per-run flags shared by the root and create commands.
type createOptions struct {
	port    int
	publish bool
	dryRun  bool
	quiet   bool
}

func addCreateFlags(cmd *cobra.Command, opts *createOptions) {
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Dev-server port (default: random in the configured range)")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Upload the generated files to the configured S3 bucket")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Render the project without writing any files")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress log output")
}

func (c *cli) createCmd() *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create <project-name>",
		Short: "Create a new project",
		Long: `Create a new Vite + React project in <workspace>/projects/<project-name>.

An existing project with the same name is overwritten: every generated file
is replaced, other files in the directory are left in place.

Examples:
  projgen create liquid-glass
  projgen create dashboard --port 3100
  projgen create dashboard --publish`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCreate(cmd.Context(), firstArg(args), opts)
		},
	}

	addCreateFlags(cmd, &opts)

	return cmd
}

func (c *cli) runCreate(ctx context.Context, name string, opts createOptions) error {
	// Nothing is read or written before the name is known.
	if name == "" {
		return errors.New("E100")
	}
	if opts.port < 0 || opts.port > 65535 {
		return errors.New("E122").
			WithDetail("--port must be between 1 and 65535").
			WithSuggestion("Omit --port to pick a random port")
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var pub generator.Publisher
	if opts.publish {
		p, err := publish.FromConfig(cfg.Publish.S3)
		if err != nil {
			return err
		}
		pub = p
	}

	gen, err := generator.New(generator.Options{
		Config:    cfg,
		Logger:    c.newLogger(cfg, opts.quiet),
		Publisher: pub,
	})
	if err != nil {
		return err
	}

	res, err := gen.Run(ctx, generator.Request{
		Name:    name,
		Port:    opts.port,
		Publish: opts.publish,
		DryRun:  opts.dryRun,
	})
	if err != nil {
		if res != nil {
			c.warn("Project was written to %s but publishing failed", res.Dir)
		}
		return err
	}

	if res.DryRun {
		c.success("Rendered project: %s (dry run, nothing written)", res.Name)
		for _, f := range res.Files {
			c.info("%s", f)
		}
		return nil
	}

	c.success("Created project: %s", res.Name)
	c.info("Location: %s", res.Dir)
	c.info("Run: cd %s && %s dev", res.Dir, cfg.Runner)
	if len(res.Published) > 0 {
		c.info("Published %d files to s3://%s", len(res.Published), cfg.Publish.S3.Bucket)
	}
	return nil
}

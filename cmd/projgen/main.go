package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vango-dev/projgen/internal/config"
	"github.com/vango-dev/projgen/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(stdout, stderr)
	if !c.errColor {
		errors.DisableColors()
	}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	// A missing project name prints only the usage line, on stdout.
	if errors.HasCode(err, "E100") {
		if e, _ := errors.As(err); e.Detail == "" {
			fmt.Fprintln(stdout, e.Suggestion)
			return e.ExitCode()
		}
	}

	errors.PrintError(stderr, err)
	if e, ok := errors.As(err); ok {
		return e.ExitCode()
	}
	return 1
}

// cli holds state shared by all commands of one invocation.
type cli struct {
	out      io.Writer
	errOut   io.Writer
	color    bool
	errColor bool

	loader     *config.Loader
	configPath string
	noColor    bool
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		out:      stdout,
		errOut:   stderr,
		color:    isTerminal(stdout),
		errColor: isTerminal(stderr),
		loader:   config.NewLoader(),
	}
}

// isTerminal reports whether w is a terminal. Buffers, pipes and regular
// files are not.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *cli) rootCmd() *cobra.Command {
	var opts createOptions

	root := &cobra.Command{
		Use:   "projgen [project-name]",
		Short: "Generate a Vite + React project inside the workspace",
		Long: `projgen scaffolds a Vite + React + TypeScript application into
<workspace>/projects/<name>, wired to the workspace's shared sources
and PostCSS configuration, with a dev-server port picked from 3000-3999.

Running "projgen <name>" is the same as "projgen create <name>".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.noColor || os.Getenv("NO_COLOR") != "" {
				c.color = false
				c.errColor = false
				errors.DisableColors()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCreate(cmd.Context(), firstArg(args), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to projgen.yaml (default: <workspace>/projgen.yaml)")
	flags.StringP("workspace", "w", "", "Workspace root (default: current directory)")
	flags.String("projects-dir", "", "Directory for generated projects, relative to the workspace")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored output")

	c.bind("workspace", flags.Lookup("workspace"))
	c.bind("projectsDir", flags.Lookup("projects-dir"))
	c.bind("log.level", flags.Lookup("log-level"))
	c.bind("log.format", flags.Lookup("log-format"))

	addCreateFlags(root, &opts)

	root.AddCommand(
		c.createCmd(),
		c.serveCmd(),
		c.templatesCmd(),
		c.configCmd(),
		c.versionCmd(),
	)

	return root
}

// bind ties a flag to a configuration key. Flags are declared next to their
// bindings, so a failure here is a programming error.
func (c *cli) bind(key string, flag *pflag.Flag) {
	if err := c.loader.BindFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadConfig layers defaults, projgen.yaml, PROJGEN_* variables and flags.
func (c *cli) loadConfig() (*config.Config, error) {
	return c.loader.Load(c.configPath)
}

// newLogger builds the slog logger described by cfg, writing to stderr.
func (c *cli) newLogger(cfg *config.Config, quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(c.errOut, opts))
	}
	return slog.New(slog.NewTextHandler(c.errOut, opts))
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// success prints a success message.
func (c *cli) success(format string, args ...any) {
	mark := "✓"
	if c.color {
		mark = "\033[32m✓\033[0m"
	}
	fmt.Fprintf(c.out, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

// info prints an info message.
func (c *cli) info(format string, args ...any) {
	fmt.Fprintf(c.out, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func (c *cli) warn(format string, args ...any) {
	mark := "⚠"
	if c.errColor {
		mark = "\033[33m⚠\033[0m"
	}
	fmt.Fprintf(c.errOut, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

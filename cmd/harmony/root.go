package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jvdsande/harmony/internal/cli"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	cfg        *cli.Config
	configPath string

	// Persistent flags
	cfgFile string
	verbose int
	quiet   bool
}

// Command group IDs
const (
	groupSchema  = "schema"
	groupCodegen = "codegen"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "harmony",
		Short: "Model-to-GraphQL compiler",
		Long: `harmony - Model-to-GraphQL compiler

Harmony reads declarative model files and derives a complete GraphQL schema
from them: object types, filter and operator inputs, CRUD root fields and
federation directives.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			a.cfg, a.configPath, err = cli.LoadConfig(a.cfgFile)
			if err != nil {
				return cli.ConfigError("loading configuration", err)
			}
			if a.configPath != "" {
				a.logger(cmd).Debug("configuration loaded", "path", a.configPath)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: auto-discover harmony.yaml)")
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "increase verbosity (can be repeated)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")

	root.AddGroup(
		&cobra.Group{ID: groupSchema, Title: "Schema:"},
		&cobra.Group{ID: groupCodegen, Title: "Code generation:"},
	)
	for _, cmd := range []*cobra.Command{a.printCmd(), a.validateCmd(), a.graphCmd()} {
		cmd.GroupID = groupSchema
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{a.gogenCmd(), a.gqlgenCmd()} {
		cmd.GroupID = groupCodegen
		root.AddCommand(cmd)
	}
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// logger writes to the error stream of cmd. Warnings are shown by default,
// each -v lowers the level by one step.
func (a *app) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn - slog.Level(4*a.verbose)
	if a.quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// stdout is the output stream of cmd, discarded in quiet mode.
func (a *app) stdout(cmd *cobra.Command) io.Writer {
	if a.quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

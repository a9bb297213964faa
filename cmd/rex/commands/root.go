// Package commands implements the CLI commands for the rex build tool.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.trai.ch/rex/internal/adapters/config"
	"go.trai.ch/rex/internal/build"
)

// CLI represents the command line interface for rex.
type CLI struct {
	rootCmd *cobra.Command
}

// New creates a new CLI instance. Global option flags are bound into
// the options viper, so values resolve flag first, then REX_*
// environment variables, then defaults.
func New() *CLI {
	rootCmd := &cobra.Command{
		Use:           "rex",
		Short:         "A build runner for external tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	flags := rootCmd.PersistentFlags()
	flags.Int("timeout-secs", 0, "Overall per-command timeout in seconds (0 disables)")
	flags.Int("output-timeout-secs", 0, "Per-command output inactivity timeout in seconds (0 disables)")
	flags.Bool("show-output", false, "Show captured output of every command")
	flags.BoolP("summary", "s", false, "Print a one-line summary before each command")
	flags.BoolP("verbose", "v", false, "Print resolved command lines before each command")
	flags.IntP("parallelism", "j", 0, "Number of commands to run concurrently (0 = CPU count)")

	// Register the default version/help flags after the persistent flags
	// so cobra sees that -v is taken and leaves --version long-only.
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	v := config.OptionsViper()
	for _, name := range []string{"timeout-secs", "output-timeout-secs", "show-output", "summary", "verbose", "parallelism"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	c := &CLI{rootCmd: rootCmd}
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// Package cli provides the command-line interface for chatlog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/internal/cli/commands"
	"github.com/ccollicutt/chatlog/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	rootCmd := NewRootCommand()

	// A first argument that is not a flag or built-in may be a plugin
	if len(args) > 0 && isPluginCandidate(rootCmd, args[0]) {
		if pluginPath, err := plugins.FindPlugin(args[0]); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
	}

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		if len(args) > 0 && isPluginCandidate(rootCmd, args[0]) {
			_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(args[0]))
			return commands.ExitError
		}
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return commands.ExitError
	}
	return commands.ExitCode
}

func isPluginCandidate(rootCmd *cobra.Command, arg string) bool {
	return arg != "" && arg[0] != '-' && !isBuiltinCommand(rootCmd, arg)
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "chatlog",
		Short: "Turn chat exports into structured conversations",
		Long: `chatlog reads plain-text chat exports and recovers the messages in them.

Every line of the form

  <date>, <time> - <sender>: <message>

starts a message; the lines that follow it are part of the same message.
Dates and times are kept exactly as written.

PLUGINS:
  chatlog supports plugins for extended functionality. Plugins are standalone
  binaries named chatlog-<command> that are automatically discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the chatlog binary
    2. ~/.chatlog/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	g.AddFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(commands.NewParseCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand(g))
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewServeCommand(g))
	rootCmd.AddCommand(commands.NewArchiveCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

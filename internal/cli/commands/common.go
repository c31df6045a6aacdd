// Package commands implements the chatlog subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/internal/logging"
	"github.com/ccollicutt/chatlog/pkg/config"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Exit codes shared by all commands.
const (
	ExitOK         = 0
	ExitNoMessages = 1
	ExitError      = 2
)

// GlobalOptions holds the persistent flags defined on the root command.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// AddFlags registers the persistent flags on root.
func (g *GlobalOptions) AddFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Configuration file (YAML)")
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&g.LogFormat, "log-format", "", "Log format (text|json)")
}

// load reads the configuration named by the global flags and builds the
// diagnostic logger on the command's stderr. Flag values win over the file.
func (g *GlobalOptions) load(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(commandContext(cmd), g.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level, format := cfg.Logging.Level, cfg.Logging.Format
	if g.LogLevel != "" {
		level = g.LogLevel
	}
	if g.LogFormat != "" {
		format = g.LogFormat
	}

	log, err := logging.New(level, format, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

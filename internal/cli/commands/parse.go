package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/pkg/config"
	"github.com/ccollicutt/chatlog/pkg/conversation"
	"github.com/ccollicutt/chatlog/pkg/output"
	"github.com/ccollicutt/chatlog/pkg/parser"
	"github.com/ccollicutt/chatlog/pkg/store"
	"github.com/ccollicutt/chatlog/pkg/webhook"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Output    string
	Self      string
	Verbose   bool
	Quiet     bool
	MaxBytes  int64
	Archive   bool
	StorePath string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewParseCommand creates the parse command.
func NewParseCommand(g *GlobalOptions) *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [export...]",
		Short: "Parse chat exports into messages",
		Long: `Parse one or more chat export files and print the conversation.

Each line of the form

  <date>, <time> - <sender>: <message>

starts a message. Following lines without a header are appended to the
message above. Blank lines and anything before the first header are ignored.

Exports may be given as arguments (globs allowed) or listed under
"exports" in the configuration file.

Exit codes:
  0 - Every export contained messages
  1 - At least one export contained no messages
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Self, "self", "", "Sender shown on the right (default: first sender)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-sender statistics and run metadata")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no messages")
	cmd.Flags().Int64Var(&opts.MaxBytes, "max-bytes", 0, "Maximum export size in bytes (default from config)")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "Save parsed conversations to the archive")
	cmd.Flags().StringVar(&opts.StorePath, "store", "", "Archive database path (default from config)")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnMessages),
		"When to fire webhook (on_messages|always|never)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, g *GlobalOptions, opts *ParseOptions) error {
	ctx := commandContext(cmd)

	cfg, log, err := g.load(cmd)
	if err != nil {
		return err
	}
	applyParseOptions(cfg, opts)
	if cfg.Output.Verbose && cfg.Output.Quiet {
		return errors.New("--verbose and --quiet cannot be used together")
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Exports
	}
	if len(patterns) == 0 {
		return errors.New("no exports given: pass files as arguments or list them under exports in the config")
	}

	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return fmt.Errorf("expanding exports: %w", err)
	}

	formatter, err := output.NewFormatter(cfg.Output.Format, output.FormatOptions{
		Verbose: cfg.Output.Verbose,
		Quiet:   cfg.Output.Quiet,
	})
	if err != nil {
		return err
	}

	var archive *store.Store
	if opts.Archive {
		if cfg.Store.Path == "" {
			return errors.New("--archive needs a store path (--store or store.path in config)")
		}
		if archive, err = store.Open(cfg.Store.Path, log); err != nil {
			return err
		}
		defer archive.Close()
	}

	hooks, err := collectWebhooks(cfg, opts)
	if err != nil {
		return err
	}
	notifier := webhook.NewClient(log)

	for _, file := range files {
		report, err := parseExport(ctx, file, cfg, log, archive)
		if err != nil {
			return err
		}

		if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}

		// Webhook failures are logged but don't fail the run
		notifier.Deliver(ctx, hooks, report)

		if !report.HasMessages() {
			ExitCode = ExitNoMessages
		}
	}

	return nil
}

func applyParseOptions(cfg *config.Config, opts *ParseOptions) {
	if opts.Output != "" {
		cfg.Output.Format = opts.Output
	}
	if opts.Self != "" {
		cfg.Self = opts.Self
	}
	if opts.Verbose {
		cfg.Output.Verbose = true
	}
	if opts.Quiet {
		cfg.Output.Quiet = true
	}
	if opts.MaxBytes > 0 {
		cfg.MaxInputBytes = opts.MaxBytes
	}
	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}
}

// parseExport reads one export and builds its report. An export without
// messages yields an empty report, not an error.
func parseExport(ctx context.Context, file string, cfg *config.Config, log *logrus.Logger, archive *store.Store) (*output.Report, error) {
	start := time.Now()
	entry := log.WithField("export", file)

	text, err := parser.ReadExport(ctx, file, cfg.MaxInputBytes)
	if err != nil {
		return nil, err
	}

	msgs := parser.Parse(text)
	meta := output.Metadata{ParsedAt: start, InputBytes: len(text)}

	conv, err := conversation.New(file, msgs, conversation.WithSelf(cfg.Self))
	if errors.Is(err, conversation.ErrNoMessages) {
		meta.Duration = time.Since(start)
		entry.Warn("no messages found; check this is a genuine chat export")
		return output.NewEmptyReport(file, meta), nil
	}
	if err != nil {
		return nil, err
	}

	if archive != nil {
		if err := archive.Save(ctx, conv); err != nil {
			return nil, fmt.Errorf("archiving %s: %w", file, err)
		}
		entry = entry.WithField("id", conv.ID)
	}

	meta.Duration = time.Since(start)
	entry.WithFields(logrus.Fields{
		"messages": conv.Len(),
		"bytes":    len(text),
	}).Debug("export parsed")

	return output.NewReport(conv, meta), nil
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ParseOptions) ([]config.WebhookConfig, error) {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		cli := config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		}
		if err := config.ValidateWebhook(&cli); err != nil {
			return nil, fmt.Errorf("--webhook-url: %w", err)
		}
		webhooks = append(webhooks, cli)
	}

	return webhooks, nil
}

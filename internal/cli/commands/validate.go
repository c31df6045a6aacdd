package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/pkg/config"
	"github.com/ccollicutt/chatlog/pkg/parser"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	PingWebhooks bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a chatlog configuration file without parsing anything.

Checks:
  - YAML syntax
  - Output and logging settings
  - Webhook URLs and triggers
  - Export file existence (warning only)

With --ping-webhooks each webhook endpoint is contacted with a HEAD request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.PingWebhooks, "ping-webhooks", false, "Check that webhook endpoints are reachable")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Exports:  %d pattern(s)\n", len(cfg.Exports))
	fmt.Fprintf(w, "  Output:   %s\n", cfg.Output.Format)
	if cfg.Self != "" {
		fmt.Fprintf(w, "  Self:     %s\n", cfg.Self)
	}
	if cfg.Store.Path != "" {
		fmt.Fprintf(w, "  Archive:  %s\n", cfg.Store.Path)
	}
	fmt.Fprintf(w, "  Webhooks: %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, wh.DisplayName())
		if opts.PingWebhooks {
			fmt.Fprintf(w, "     %s\n", pingWebhook(ctx, wh))
		}
	}

	// Check if exports exist (warnings only)
	if len(cfg.Exports) == 0 {
		return nil
	}
	files, err := parser.ExpandGlobs(cfg.Exports)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding export patterns: %v\n", err)
		return nil
	}

	fmt.Fprintf(w, "\nExports matched: %d\n", len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			fmt.Fprintf(w, "  - %s (missing)\n", f)
			continue
		}
		fmt.Fprintf(w, "  - %s\n", f)
	}

	return nil
}

// pingWebhook does a HEAD request to check if the endpoint is reachable.
func pingWebhook(ctx context.Context, wh config.WebhookConfig) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		return fmt.Sprintf("cannot create request: %v", err)
	}
	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Sprintf("cannot connect: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Any response means the server is reachable
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return fmt.Sprintf("reachable (status %d)", resp.StatusCode)
	}
	return fmt.Sprintf("reachable but returned status %d (the endpoint may only accept POST)", resp.StatusCode)
}

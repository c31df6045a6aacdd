package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/pkg/server"
	"github.com/ccollicutt/chatlog/pkg/store"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	Addr           string
	Self           string
	MaxUploadBytes int64
	Archive        bool
	StorePath      string
}

// NewServeCommand creates the serve command.
func NewServeCommand(g *GlobalOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser over HTTP",
		Long: `Start an HTTP server that parses uploaded chat exports.

Endpoints:
  POST /api/parse                 Parse an export (raw text body or multipart "file")
  GET  /api/conversations         List archived conversations
  GET  /api/conversations/{id}    Show an archived conversation
  DELETE /api/conversations/{id}  Delete an archived conversation
  GET  /healthz                   Liveness check

Query parameters for /api/parse:
  name   Source name for raw uploads
  self   Sender shown on the right

Status codes: 413 too large, 415 not text, 422 no messages found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.Self, "self", "", "Default sender shown on the right")
	cmd.Flags().Int64Var(&opts.MaxUploadBytes, "max-upload-bytes", 0, "Maximum upload size in bytes")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "Save parsed uploads to the archive")
	cmd.Flags().StringVar(&opts.StorePath, "store", "", "Archive database path (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, g *GlobalOptions, opts *ServeOptions) error {
	cfg, log, err := g.load(cmd)
	if err != nil {
		return err
	}

	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.Self != "" {
		cfg.Self = opts.Self
	}
	if opts.MaxUploadBytes > 0 {
		cfg.Server.MaxUploadBytes = opts.MaxUploadBytes
	}
	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}
	if opts.Archive && cfg.Store.Path == "" {
		return errors.New("--archive needs a store path (--store or store.path in config)")
	}

	var archive *store.Store
	if cfg.Store.Path != "" {
		if archive, err = store.Open(cfg.Store.Path, log); err != nil {
			return err
		}
		defer archive.Close()
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:           cfg.Server.Addr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		ReadTimeout:    cfg.Server.ReadTimeout,
		Self:           cfg.Self,
		Store:          archive,
		Archive:        opts.Archive,
		Webhooks:       cfg.Webhooks,
		Log:            log,
	})
	return srv.Run(ctx)
}

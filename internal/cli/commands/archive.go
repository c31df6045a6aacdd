package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/pkg/output"
	"github.com/ccollicutt/chatlog/pkg/store"
)

// ArchiveOptions holds options shared by the archive subcommands.
type ArchiveOptions struct {
	StorePath string
	Output    string
}

// NewArchiveCommand creates the archive command and its subcommands.
func NewArchiveCommand(g *GlobalOptions) *cobra.Command {
	opts := &ArchiveOptions{}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse archived conversations",
		Long: `Browse conversations saved with 'chatlog parse --archive' or by the server.

Example:
  chatlog archive list --store chatlog.db
  chatlog archive show <id> --store chatlog.db -o json
  chatlog archive delete <id> --store chatlog.db`,
	}

	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "Archive database path (default from config)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveList(cmd, g, opts)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveShow(cmd, args[0], g, opts)
		},
	}
	show.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveDelete(cmd, args[0], g, opts)
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

func openArchive(cmd *cobra.Command, g *GlobalOptions, opts *ArchiveOptions) (*store.Store, string, error) {
	cfg, log, err := g.load(cmd)
	if err != nil {
		return nil, "", err
	}
	path := cfg.Store.Path
	if opts.StorePath != "" {
		path = opts.StorePath
	}
	if path == "" {
		return nil, "", errors.New("no archive configured (--store or store.path in config)")
	}

	s, err := store.Open(path, log)
	if err != nil {
		return nil, "", err
	}
	return s, cfg.Output.Format, nil
}

func runArchiveList(cmd *cobra.Command, g *GlobalOptions, opts *ArchiveOptions) error {
	s, _, err := openArchive(cmd, g, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.List(commandContext(cmd))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No archived conversations.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tSELF\tMESSAGES\tARCHIVED")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			c.ID, c.Source, c.Self, c.Messages, c.ArchivedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runArchiveShow(cmd *cobra.Command, id string, g *GlobalOptions, opts *ArchiveOptions) error {
	s, format, err := openArchive(cmd, g, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	conv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		format = opts.Output
	}
	formatter, err := output.NewFormatter(format, output.FormatOptions{})
	if err != nil {
		return err
	}
	return formatter.Format(ctx, output.NewReport(conv, output.Metadata{}), cmd.OutOrStdout())
}

func runArchiveDelete(cmd *cobra.Command, id string, g *GlobalOptions, opts *ArchiveOptions) error {
	s, _, err := openArchive(cmd, g, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(commandContext(cmd), id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return err
}

package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/chatlog/pkg/conversation"
)

// TextFormatter formats reports as a readable chat transcript.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if !report.HasMessages() {
		_, err := fmt.Fprintf(w, "%s: no messages found; check this is a genuine chat export\n",
			report.Summary.Source)
		return err
	}
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	_, err := fmt.Fprintf(w, "%s: %d messages from %d senders over %d days\n",
		s.Source, s.Messages, s.Senders, s.Days)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	tw := &errWriter{w: w}
	conv := report.Conversation

	tw.printf("=== %s ===\n", conv.Source)

	for _, g := range conv.Groups {
		tw.printf("\n--- %s ---\n", g.Date)
		for _, m := range g.Messages {
			f.formatMessage(tw, &m)
		}
	}

	tw.printf("\n---\n")
	tw.printf("Summary: %d messages from %d senders over %d days\n",
		report.Summary.Messages, report.Summary.Senders, report.Summary.Days)

	if f.opts.Verbose && report.Stats != nil {
		tw.printf("Multi-line messages: %d\n", report.Stats.Multiline)
		tw.printf("Senders:\n")
		for _, s := range report.Stats.Senders {
			marker := ""
			if s.Self {
				marker = " (self)"
			}
			tw.printf("  %-20s %d%s\n", s.Name, s.Messages, marker)
		}
		tw.printf("Input: %d bytes\n", report.Metadata.InputBytes)
		tw.printf("Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return tw.err
}

func (f *TextFormatter) formatMessage(tw *errWriter, m *MessageView) {
	marker := " "
	if m.Side == conversation.SideRight {
		marker = ">"
	}

	lines := strings.Split(m.Content, "\n")
	tw.printf("%s [%s] %s: %s\n", marker, m.Time, m.Sender, lines[0])
	for _, line := range lines[1:] {
		tw.printf("      %s\n", line)
	}
}

// errWriter remembers the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

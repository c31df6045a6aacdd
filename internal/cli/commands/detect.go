package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output     string
	SampleSize int
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(g *GlobalOptions) *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <export>",
		Short: "Check whether a file looks like a chat export",
		Long: `Sample the start of a file and report how well it fits the chat export
header format:

  <date>, <time> - <sender>: <message>

Reports the share of header lines, 12-hour versus 24-hour times, two versus
four digit years, the likely day/month ordering and the senders seen.

Example:
  chatlog detect "WhatsApp Chat with Family.txt"
  chatlog detect --sample 500 chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of non-blank lines to sample")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, g *GlobalOptions, opts *DetectOptions) error {
	export := args[0]

	cfg, log, err := g.load(cmd)
	if err != nil {
		return err
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithMaxBytes(cfg.MaxInputBytes),
	)

	result, err := d.DetectFromFile(commandContext(cmd), export)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	log.WithField("export", export).WithField("headers", result.HeaderLines).Debug("export sampled")

	switch opts.Output {
	case "json":
		return outputDetectJSON(cmd.OutOrStdout(), result, export)
	case "text", "":
		return outputDetectText(cmd.OutOrStdout(), result, export)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, export string) error {
	var b strings.Builder

	b.WriteString("=== Chat Export Detection ===\n\n")
	fmt.Fprintf(&b, "File: %s\n", export)
	fmt.Fprintf(&b, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(&b, "Header lines: %d\n\n", result.HeaderLines)

	if !result.HasMatch() {
		b.WriteString("No chat export headers detected.\n\n")
		b.WriteString("Tip: Each message should start with a line like\n")
		b.WriteString("  12/03/2024, 21:04 - Name: message\n")
		b.WriteString("Check the file is the .txt from the export, not the .zip.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Confidence: %.1f%% (%d/%d lines)\n", result.Confidence*100, result.HeaderLines, result.SampledLines)
	fmt.Fprintf(&b, "Clock: %d 12-hour, %d 24-hour\n", result.TwelveHour, result.TwentyFourHour)
	fmt.Fprintf(&b, "Years: %d two-digit, %d four-digit\n", result.TwoDigitYear, result.FourDigitYear)
	fmt.Fprintf(&b, "Date order: %s\n", result.DateOrder)
	fmt.Fprintf(&b, "Senders: %s\n\n", strings.Join(result.Senders, ", "))
	fmt.Fprintf(&b, "Sample header:\n  %s\n\n", result.SampleLine)

	if result.AmbiguityNote != "" {
		fmt.Fprintf(&b, "Note: %s\n\n", result.AmbiguityNote)
	}

	if result.LooksLikeExport() {
		b.WriteString("Verdict: looks like a chat export\n")
	} else {
		b.WriteString("Verdict: few header lines; this may not be a chat export\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONDetection represents the JSON output of detect.
type JSONDetection struct {
	File            string   `json:"file"`
	SampledLines    int      `json:"sampled_lines"`
	HeaderLines     int      `json:"header_lines"`
	Confidence      float64  `json:"confidence"`
	TwelveHour      int      `json:"twelve_hour"`
	TwentyFourHour  int      `json:"twenty_four_hour"`
	TwoDigitYear    int      `json:"two_digit_year"`
	FourDigitYear   int      `json:"four_digit_year"`
	DateOrder       string   `json:"date_order"`
	Senders         []string `json:"senders"`
	SampleLine      string   `json:"sample_line,omitempty"`
	AmbiguityNote   string   `json:"ambiguity_note,omitempty"`
	LooksLikeExport bool     `json:"looks_like_export"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, export string) error {
	out := JSONDetection{
		File:            export,
		SampledLines:    result.SampledLines,
		HeaderLines:     result.HeaderLines,
		Confidence:      result.Confidence,
		TwelveHour:      result.TwelveHour,
		TwentyFourHour:  result.TwentyFourHour,
		TwoDigitYear:    result.TwoDigitYear,
		FourDigitYear:   result.FourDigitYear,
		DateOrder:       string(result.DateOrder),
		Senders:         result.Senders,
		SampleLine:      result.SampleLine,
		AmbiguityNote:   result.AmbiguityNote,
		LooksLikeExport: result.LooksLikeExport(),
	}
	if out.Senders == nil {
		out.Senders = []string{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

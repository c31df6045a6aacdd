package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlog/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose   bool
	Trace     bool
	NoiseOnly bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// maxDetails caps the per-check line listings.
const maxDetails = 10

// dateLead matches lines that start like a header date. Lines that match it
// but not the header grammar are usually malformed headers.
var dateLead = regexp.MustCompile(`^\s*\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}`)

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <export>",
		Short: "Explain how each line of an export is read",
		Long: `Diagnose why an export parses the way it does.

Checks:
- The file exists and is readable text
- Header lines are present
- Text before the first header (dropped)
- Lines that look like headers but do not match the format

With --trace every line is listed as header, continuation or noise,
together with the message it belongs to.

Exit codes: 0 when messages were found, 1 when the file is readable but
holds no messages, 2 when it cannot be read as text.

Example:
  chatlog diagnose chat.txt
  chatlog diagnose --trace --noise-only chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, args[0], g, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().BoolVarP(&opts.Trace, "trace", "t", false, "Print the classification of every line")
	cmd.Flags().BoolVar(&opts.NoiseOnly, "noise-only", false, "With --trace, only print dropped lines")

	return cmd
}

func runDiagnose(cmd *cobra.Command, path string, g *GlobalOptions, opts *DiagnoseOptions) error {
	cfg, _, err := g.load(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	results := []DiagnosticResult{}

	// 1. Check the export file
	result := checkExportFile(path)
	results = append(results, result)
	if result.Status == "error" {
		ExitCode = ExitError
		return printDiagnostics(w, results, opts)
	}

	// 2. Read and decode
	text, err := parser.ReadExport(commandContext(cmd), path, cfg.MaxInputBytes)
	result = checkEncoding(err)
	results = append(results, result)
	if result.Status == "error" {
		ExitCode = ExitError
		return printDiagnostics(w, results, opts)
	}

	traces := parser.Trace(text)

	// 3. Headers, dropped preamble and near misses
	result = checkHeaders(traces)
	if result.Status == "error" {
		ExitCode = ExitNoMessages
	}
	results = append(results, result)
	results = append(results, checkPreamble(traces))
	results = append(results, checkNearMisses(traces))

	if err := printDiagnostics(w, results, opts); err != nil {
		return err
	}
	if opts.Trace {
		return printTrace(w, traces, opts.NoiseOnly)
	}
	return nil
}

func checkExportFile(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Export File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Export not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access export: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Pass the .txt file inside the extracted export"}
		return result
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "Export is empty (0 bytes)"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkEncoding(err error) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Encoding",
	}

	switch {
	case err == nil:
		result.Status = "ok"
		result.Message = "Readable UTF-8 text"
	case errors.Is(err, parser.ErrNotText):
		result.Status = "error"
		result.Message = err.Error()
		result.Suggests = []string{
			"Exports are plain text; a .zip must be extracted first",
			"Media files (images, audio) cannot be parsed",
		}
	case errors.Is(err, parser.ErrTooLarge):
		result.Status = "error"
		result.Message = err.Error()
		result.Suggests = []string{"Raise max_input_bytes in the config or pass --max-bytes to parse"}
	default:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read export: %v", err)
	}
	return result
}

func checkHeaders(traces []parser.LineTrace) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Message Headers",
	}

	headers, continuations := 0, 0
	senders := make(map[string]bool)
	for _, tr := range traces {
		switch tr.Kind {
		case parser.LineHeader:
			headers++
			if h, ok := parser.MatchHeader(tr.Raw); ok && !senders[h.Sender] {
				senders[h.Sender] = true
				result.Details = append(result.Details, "Sender: "+h.Sender)
			}
		case parser.LineContinuation:
			continuations++
		}
	}

	if headers == 0 {
		result.Status = "error"
		result.Message = "No messages found; check this is a genuine chat export"
		result.Details = nil
		result.Suggests = []string{
			"Each message must start with a line like: 12/03/2024, 21:04 - Name: message",
			"Use 'chatlog detect <export>' to inspect the first lines",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d messages from %d senders, %d continuation lines",
		headers, len(senders), continuations)
	return result
}

func checkPreamble(traces []parser.LineTrace) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Text Before First Message",
	}

	var dropped []parser.LineTrace
	for _, tr := range traces {
		if tr.Kind == parser.LineHeader {
			break
		}
		if strings.TrimSpace(tr.Raw) != "" {
			dropped = append(dropped, tr)
		}
	}

	if len(dropped) == 0 {
		result.Status = "ok"
		result.Message = "Nothing dropped"
		return result
	}

	result.Status = "warning"
	result.Message = fmt.Sprintf("%d line(s) before the first message are ignored", len(dropped))
	result.Details = lineDetails(dropped)
	result.Suggests = []string{"Encryption notices and group banners are expected here"}
	return result
}

func checkNearMisses(traces []parser.LineTrace) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Malformed Headers",
	}

	var misses []parser.LineTrace
	for _, tr := range traces {
		if tr.Kind != parser.LineHeader && dateLead.MatchString(tr.Raw) {
			misses = append(misses, tr)
		}
	}

	if len(misses) == 0 {
		result.Status = "ok"
		result.Message = "No header-like lines were rejected"
		return result
	}

	result.Status = "warning"
	result.Message = fmt.Sprintf("%d line(s) start with a date but are not message headers", len(misses))
	result.Details = lineDetails(misses)
	result.Suggests = []string{
		"System notices without 'Name:' are treated as text, which is expected",
		"A missing comma after the date or a non-ASCII dash prevents a match",
	}
	return result
}

func lineDetails(traces []parser.LineTrace) []string {
	details := make([]string, 0, min(len(traces), maxDetails)+1)
	for i, tr := range traces {
		if i == maxDetails {
			details = append(details, fmt.Sprintf("... and %d more", len(traces)-maxDetails))
			break
		}
		details = append(details, fmt.Sprintf("line %d (%s): %s", tr.LineNum, tr.Kind, truncate(tr.Raw, 80)))
	}
	return details
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) error {
	var b strings.Builder

	b.WriteString("=== Chat Export Diagnostics ===\n\n")

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(&b, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(&b, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(&b, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(&b, "      Hint: %s\n", s)
		}

		b.WriteString("\n")
	}

	// Summary
	b.WriteString("---\n")
	fmt.Fprintf(&b, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	switch {
	case errCount > 0:
		b.WriteString("\nThis file cannot be parsed as a chat export.\n")
	case warnCount > 0:
		b.WriteString("\nExport is usable; some lines are dropped or read as message text.\n")
	default:
		b.WriteString("\nExport looks good!\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func printTrace(w io.Writer, traces []parser.LineTrace, noiseOnly bool) error {
	var b strings.Builder

	b.WriteString("\n=== Line Trace ===\n")
	for _, tr := range traces {
		if noiseOnly && tr.Kind != parser.LineNoise {
			continue
		}
		msg := "-"
		if tr.Index >= 0 {
			msg = fmt.Sprintf("#%d", tr.Index)
		}
		fmt.Fprintf(&b, "%5d  %-12s %-5s %s\n", tr.LineNum, tr.Kind, msg, truncate(tr.Raw, 100))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

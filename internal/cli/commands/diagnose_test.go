package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ccollicutt/chatlog/pkg/parser"
)

func TestRunDiagnose_Weekend(t *testing.T) {
	resetExitCode(t)
	out, _, err := execute(t, NewDiagnoseCommand(&GlobalOptions{}), fixture("weekend.txt"))
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	checks := []string{
		"[PASS] Export File",
		"[PASS] Encoding",
		"[PASS] Message Headers",
		"6 messages from 3 senders, 2 continuation lines",
		"[WARN] Text Before First Message",
		"2 line(s) before the first message are ignored",
		"line 1 (noise): Messages and calls are end-to-end encrypted.",
		"[WARN] Malformed Headers",
		`line 2 (noise): 12/03/2024, 21:04 - Priya created group "Weekend"`,
		"Summary: 3 passed, 2 warnings, 0 errors",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("output missing %q\n%s", check, out)
		}
	}
	if strings.Contains(out, "=== Line Trace ===") {
		t.Error("trace printed without --trace")
	}
	if ExitCode != ExitOK {
		t.Errorf("ExitCode = %d, want %d", ExitCode, ExitOK)
	}
}

func TestRunDiagnose_Clean(t *testing.T) {
	out, _, err := execute(t, NewDiagnoseCommand(&GlobalOptions{}), "-v", fixture("us_12h.txt"))
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	if !strings.Contains(out, "Summary: 5 passed, 0 warnings, 0 errors") {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "- Sender: Dana") {
		t.Errorf("verbose output should list senders:\n%s", out)
	}
	if !strings.Contains(out, "Export looks good!") {
		t.Errorf("output = %s", out)
	}
}

func TestRunDiagnose_Trace(t *testing.T) {
	out, _, err := execute(t, NewDiagnoseCommand(&GlobalOptions{}), "--trace", fixture("weekend.txt"))
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	trace := out[strings.Index(out, "=== Line Trace ==="):]
	lines := strings.Split(strings.TrimSpace(trace), "\n")[1:]
	if len(lines) != 11 {
		t.Fatalf("trace has %d lines, want 11:\n%s", len(lines), trace)
	}
	if !strings.Contains(lines[2], "header") || !strings.Contains(lines[2], "#0") {
		t.Errorf("line 3 = %q, want header of #0", lines[2])
	}
	if !strings.Contains(lines[5], "continuation") || !strings.Contains(lines[5], "#2") {
		t.Errorf("line 6 = %q, want continuation of #2", lines[5])
	}
	if !strings.Contains(lines[7], "noise") {
		t.Errorf("line 8 = %q, want noise", lines[7])
	}
}

func TestRunDiagnose_TraceNoiseOnly(t *testing.T) {
	out, _, err := execute(t, NewDiagnoseCommand(&GlobalOptions{}), "--trace", "--noise-only", fixture("weekend.txt"))
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	trace := out[strings.Index(out, "=== Line Trace ==="):]
	lines := strings.Split(strings.TrimSpace(trace), "\n")[1:]
	if len(lines) != 3 {
		t.Fatalf("noise trace has %d lines, want 3:\n%s", len(lines), trace)
	}
	for _, l := range lines {
		if !strings.Contains(l, "noise") {
			t.Errorf("unexpected line %q", l)
		}
	}
}

func TestRunDiagnose_Failures(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(binary, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		want     string
		wantExit int
	}{
		{"missing", filepath.Join(dir, "missing.txt"), "[FAIL] Export File", ExitError},
		{"directory", dir, "Path is a directory", ExitError},
		{"binary", binary, "[FAIL] Encoding", ExitError},
		{"no headers", fixture("notes.txt"), "[FAIL] Message Headers", ExitNoMessages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetExitCode(t)
			out, _, err := execute(t, NewDiagnoseCommand(&GlobalOptions{}), tt.path)
			if err != nil {
				t.Fatalf("diagnose reports problems without failing: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out)
			}
			if !strings.Contains(out, "cannot be parsed as a chat export") {
				t.Errorf("expected failure summary:\n%s", out)
			}
			if ExitCode != tt.wantExit {
				t.Errorf("ExitCode = %d, want %d", ExitCode, tt.wantExit)
			}
		})
	}
}

func TestLineDetails_Truncates(t *testing.T) {
	var traces []parser.LineTrace
	for i := 1; i <= 15; i++ {
		traces = append(traces, parser.LineTrace{LineNum: i, Kind: parser.LineNoise, Raw: "x", Index: -1})
	}

	details := lineDetails(traces)
	if len(details) != maxDetails+1 {
		t.Fatalf("got %d details, want %d", len(details), maxDetails+1)
	}
	if details[maxDetails] != "... and 5 more" {
		t.Errorf("last detail = %q", details[maxDetails])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456..." {
		t.Errorf("truncate() = %q", got)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	long := strings.Repeat("a", 96) + "🌸🌸🌸"

	got := truncate(long, 100)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate() = %q, not valid UTF-8", got)
	}
	if want := strings.Repeat("a", 96) + "..."; got != want {
		t.Errorf("truncate() = %q, want %q", got, want)
	}
	if len(got) > 100 {
		t.Errorf("len(truncate()) = %d, want <= 100", len(got))
	}
}

func TestRunDiagnose_TraceKeepsUTF8(t *testing.T) {
	dir := t.TempDir()
	line := "1/2/2026, 9:00 - Zoë: " + strings.Repeat("é", 60) + " 🌸🌸"
	path := writeFile(t, dir, "emoji.txt", line+"\n"+strings.Repeat("ü", 70)+"\n")

	out, _, err := execute(t, NewDiagnoseCommand(&GlobalOptions{}), "--trace", path)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	if !utf8.ValidString(out) {
		t.Errorf("trace output is not valid UTF-8:\n%q", out)
	}
}

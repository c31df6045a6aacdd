package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "..", "testdata", "exports", name)
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// resetExitCode clears the package exit code before and after a test.
func resetExitCode(t *testing.T) {
	t.Helper()
	ExitCode = ExitOK
	t.Cleanup(func() { ExitCode = ExitOK })
}

func TestNewParseCommand(t *testing.T) {
	cmd := NewParseCommand(&GlobalOptions{})

	if cmd.Use != "parse [export...]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"output", "self", "verbose", "quiet", "max-bytes", "archive", "store",
		"webhook-url", "webhook-token", "webhook-trigger"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, NewVersionCommand())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "chatlog "+Version+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestGlobalOptions_Load(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "chatlog.yaml", "logging:\n  level: error\n  format: json\n")

	tests := []struct {
		name    string
		opts    GlobalOptions
		wantErr bool
		level   string
	}{
		{"defaults", GlobalOptions{}, false, "info"},
		{"config file", GlobalOptions{ConfigPath: cfgPath}, false, "error"},
		{"flag overrides file", GlobalOptions{ConfigPath: cfgPath, LogLevel: "debug"}, false, "debug"},
		{"bad flag level", GlobalOptions{LogLevel: "loud"}, true, ""},
		{"bad flag format", GlobalOptions{LogFormat: "xml"}, true, ""},
		{"missing config", GlobalOptions{ConfigPath: filepath.Join(dir, "missing.yaml")}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			_, log, err := tt.opts.load(cmd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && log.GetLevel().String() != tt.level {
				t.Errorf("level = %s, want %s", log.GetLevel(), tt.level)
			}
		})
	}
}

package commands

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunValidate_Success(t *testing.T) {
	dir := t.TempDir()
	export := writeFile(t, dir, "chat.txt", "1/2/2026, 9:00 - Alice: hi\n")

	config := `exports:
  - ` + export + `
  - ` + filepath.Join(dir, "missing.txt") + `
self: Alice
output:
  format: json
store:
  path: ` + filepath.Join(dir, "chatlog.db") + `
webhooks:
  - name: team
    url: https://example.com/hook
`
	configPath := writeFile(t, dir, "chatlog.yaml", config)

	out, _, err := execute(t, NewValidateCommand(), configPath)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	checks := []string{
		"Configuration valid!",
		"Exports:  2 pattern(s)",
		"Output:   json",
		"Self:     Alice",
		"Webhooks: 1",
		"1. [on_messages] team",
		"Exports matched: 2",
		"  - " + export + "\n",
		"missing.txt (missing)",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("output missing %q\n%s", check, out)
		}
	}
}

func TestRunValidate_PingWebhooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	configPath := writeFile(t, dir, "chatlog.yaml", "webhooks:\n  - url: "+server.URL+"\n    trigger: always\n")

	out, _, err := execute(t, NewValidateCommand(), "--ping-webhooks", configPath)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "reachable (status 200)") {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "[always]") {
		t.Errorf("output = %s", out)
	}
}

func TestRunValidate_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "invalid: yaml: content"},
		{"bad output format", "output:\n  format: xml\n"},
		{"verbose and quiet", "output:\n  verbose: true\n  quiet: true\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"webhook without url", "webhooks:\n  - name: x\n"},
		{"bad webhook trigger", "webhooks:\n  - url: http://example.com\n    trigger: sometimes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.content)
			if _, _, err := execute(t, NewValidateCommand(), path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	if _, _, err := execute(t, NewValidateCommand(), "/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

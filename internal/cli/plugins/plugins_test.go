package plugins

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindPlugin_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := FindPlugin("nonexistent-plugin-xyz")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestFindPlugin_InPluginsDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	pluginsDir := filepath.Join(home, ".chatlog", "plugins")
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		t.Fatalf("failed to create plugins dir: %v", err)
	}

	pluginPath := filepath.Join(pluginsDir, "chatlog-testplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\necho test"), 0o755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	found, err := FindPlugin("testplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestFindPlugin_InPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv("PATH", dir)

	pluginPath := filepath.Join(dir, "chatlog-pathplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\nexit 0"), 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := FindPlugin("pathplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestExecute_ExitCode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "chatlog-fail")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if code := Execute(script, nil); code != 3 {
		t.Errorf("Execute() = %d, want 3", code)
	}
}

func TestFormatNotFoundError_KnownPlugin(t *testing.T) {
	msg := FormatNotFoundError("render")

	if !strings.Contains(msg, "available as a plugin") {
		t.Error("expected error to mention plugin availability")
	}
	if !strings.Contains(msg, "chatlog-render") {
		t.Error("expected error to mention chatlog-render")
	}
}

func TestFormatNotFoundError_UnknownPlugin(t *testing.T) {
	msg := FormatNotFoundError("unknown")

	if !strings.Contains(msg, `unknown command "unknown"`) {
		t.Errorf("unexpected message: %s", msg)
	}
	if !strings.Contains(msg, "~/.chatlog/plugins/chatlog-unknown") {
		t.Error("expected error to mention the plugins directory")
	}
	if strings.Contains(msg, "available as a plugin") {
		t.Error("should not mention plugin availability for unknown plugins")
	}
}

func TestIsExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	nonExec := filepath.Join(tmpDir, "nonexec")
	if err := os.WriteFile(nonExec, []byte("test"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if isExecutable(nonExec) {
		t.Error("non-executable file should not be detected as executable")
	}

	exec := filepath.Join(tmpDir, "exec")
	if err := os.WriteFile(exec, []byte("test"), 0o755); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if !isExecutable(exec) {
		t.Error("executable file should be detected as executable")
	}

	if isExecutable(tmpDir) {
		t.Error("directory should not be detected as executable")
	}
	if isExecutable(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("non-existent file should not be detected as executable")
	}
}

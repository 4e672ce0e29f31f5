package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a config file pointing every path at base so tests
// never touch the real home directory.
func writeTestConfig(t *testing.T, base string, historyEnabled bool) string {
	t.Helper()
	content := fmt.Sprintf(`[paths]
log_dir = %q
history_db = %q

[history]
enabled = %v
`, filepath.Join(base, "logs"), filepath.Join(base, "history.db"), historyEnabled)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// runCLI executes the command tree in process and captures stdout/stderr.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestRootShowsHelp(t *testing.T) {
	out, err := runCLI(t)
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	requireContains(t, out, "scan")
	requireContains(t, out, "watch")
	requireContains(t, out, "history")
}

func TestScanRequiresInputFlag(t *testing.T) {
	base := t.TempDir()
	cfgPath := writeTestConfig(t, base, false)

	_, err := runCLI(t, "-c", cfgPath, "scan")
	if err == nil {
		t.Fatal("expected error for missing --input")
	}
}

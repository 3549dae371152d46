package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/glyptodon/internal/config"
	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/manuscript"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	for _, k := range []string{config.EnvRoot, config.EnvLogLevel, config.EnvOCRLanguage} {
		t.Setenv(k, "")
	}

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// seedCatalog creates a catalog with one manuscript holding no pages.
func seedCatalog(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	repo, err := manuscript.NewRepository(root)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	md := manuscript.NewMetadata(
		manuscript.KeyWork, "Codex Sinaiticus",
		manuscript.KeyCenturies, "4th century",
	)
	if _, err := repo.Create(md); err != nil {
		t.Fatalf("failed to create manuscript: %v", err)
	}
	return root
}

func TestListCmd_JSON(t *testing.T) {
	root := seedCatalog(t)

	stdout, _, err := execute(t, "", "list", "--json", "--root", root)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("invalid JSON output %q: %v", stdout, err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Work != "Codex Sinaiticus" || entries[0].Centuries != "4th century" || entries[0].Pages != 0 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestListCmd_Table(t *testing.T) {
	root := seedCatalog(t)

	stdout, _, err := execute(t, "", "list", "--root", root)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"NAME", "WORK", "Codex Sinaiticus"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestListCmd_Empty(t *testing.T) {
	stdout, _, err := execute(t, "", "list", "--root", t.TempDir())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(stdout, "no manuscripts") {
		t.Errorf("output = %q", stdout)
	}
}

func TestServeCmd(t *testing.T) {
	in := `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"

	for _, args := range [][]string{
		{"serve", "--root", t.TempDir()},
		{"--root", t.TempDir()},
	} {
		stdout, stderr, err := execute(t, in, args...)
		if err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
		if !strings.Contains(stdout, `"id":7`) {
			t.Errorf("%v: stdout = %q", args, stdout)
		}
		if !strings.Contains(stderr, "serving") {
			t.Errorf("%v: logs should go to stderr, got %q", args, stderr)
		}
	}
}

func TestConfigFile(t *testing.T) {
	root := seedCatalog(t)
	cfgPath := filepath.Join(t.TempDir(), "glyptodon.yaml")
	if err := os.WriteFile(cfgPath, []byte("root: "+root+"\nlog_level: error\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	stdout, _, err := execute(t, "", "list", "--json", "--config", cfgPath)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(stdout, "Codex Sinaiticus") {
		t.Errorf("config root not used: %q", stdout)
	}

	_, _, err = execute(t, "", "list", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing config: got %v, want NOT_FOUND", err)
	}
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := execute(t, "", "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "glyptodon "+Version) {
		t.Errorf("version output = %q", stdout)
	}
}

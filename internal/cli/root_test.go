package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gremlin/internal/config"
	"github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/integrations/npms/npmstest"
)

// isolateConfig keeps tests away from the user's config file and GREMLIN_* env.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{config.EnvBaseURL, config.EnvPageSize, config.EnvDebounce, config.EnvTimeout, config.EnvTheme} {
		t.Setenv(k, "")
	}
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out, errb bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errb)
	root.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), errb.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	for _, name := range []string{"browse", "ui", "search", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd == root {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "base-url", "size", "timeout", "theme"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	isolateConfig(t)
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(out, "gremlin version ") {
		t.Errorf("--version output = %q", out)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "gremlin.toml")
	if err := os.WriteFile(path, []byte("page_size = 7\ntheme = \"light\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvTimeout, "4s")

	out, _, err := execute(t, "--config", path, "--size", "3", "--timeout", "2s", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{path, "3", "2s", "light"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidFlagValue(t *testing.T) {
	isolateConfig(t)

	_, _, err := execute(t, "--size", "0", "config", "show")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("--size 0: err = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}

	_, _, err = execute(t, "--timeout", "soon", "config", "show")
	if err == nil {
		t.Error("--timeout soon should fail")
	}
}

func TestConfigShowTOML(t *testing.T) {
	isolateConfig(t)
	out, _, err := execute(t, "config", "show", "--toml")
	if err != nil {
		t.Fatalf("config show --toml: %v", err)
	}
	if !strings.Contains(out, `base_url = "https://api.npms.io"`) {
		t.Errorf("output = %q", out)
	}
}

func TestConfigPath(t *testing.T) {
	dir := isolateConfig(t)

	out, _, err := execute(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.Join(dir, "gremlin", "config.toml") {
		t.Errorf("config path = %q", out)
	}

	out, _, err = execute(t, "--config", "/tmp/custom.toml", "config", "path")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing explicit config: out=%q err=%v", out, err)
	}
}

func TestCompletion(t *testing.T) {
	isolateConfig(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, _, err := execute(t, "completion", shell)
		if err != nil {
			t.Errorf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, "gremlin") {
			t.Errorf("completion %s output does not mention gremlin", shell)
		}
	}
}

func TestSearchCommand(t *testing.T) {
	isolateConfig(t)
	srv := npmstest.NewServer()
	defer srv.Close()

	out, _, err := execute(t, "--base-url", srv.URL, "--size", "2", "search", "react")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "react-dom") || strings.Contains(out, "react-router") {
		t.Errorf("search output should list exactly two results:\n%s", out)
	}
}

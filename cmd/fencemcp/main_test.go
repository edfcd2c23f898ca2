package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/c3mb0/fencemcp/internal/runner"
)

func TestBuildConfigDefaults(t *testing.T) {
	app := newApp()
	if err := app.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := buildConfig(app, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Roots) != 0 || cfg.Debug || cfg.Compat || cfg.ExecTimeout != runner.DefaultTimeout {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	yaml := "roots:\n  - /file-root\nlog_file: /tmp/file.log\nexec_timeout: \"5s\"\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FENCEMCP_LOG_FILE", "/tmp/env.log")
	t.Setenv("FENCEMCP_DEBUG", "true")

	app := newApp()
	if err := app.ParseFlags([]string{"--config", cfgPath, "--root", "/flag-root"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := buildConfig(app, []string{"/positional-root"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Roots) != 2 || cfg.Roots[0] != "/flag-root" || cfg.Roots[1] != "/positional-root" {
		t.Fatalf("flag roots must win: %+v", cfg.Roots)
	}
	if cfg.LogFile != "/tmp/env.log" {
		t.Fatalf("env log file must beat the config file: %q", cfg.LogFile)
	}
	if cfg.ExecTimeout != 5*time.Second {
		t.Fatalf("exec timeout from file lost: %v", cfg.ExecTimeout)
	}
	if !cfg.Debug {
		t.Fatalf("env debug lost")
	}
}

func TestBuildConfigExplicitBoolWins(t *testing.T) {
	t.Setenv("FENCEMCP_DEBUG", "true")
	t.Setenv("FENCEMCP_EXEC_TIMEOUT", "9s")

	app := newApp()
	if err := app.ParseFlags([]string{"--debug=false", "--exec-timeout", "7s"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := buildConfig(app, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Debug {
		t.Fatalf("explicit --debug=false must beat the environment")
	}
	if cfg.ExecTimeout != 7*time.Second {
		t.Fatalf("exec timeout = %v, want 7s", cfg.ExecTimeout)
	}
}

func TestBuildConfigBadFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("no_such_key: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app := newApp()
	if err := app.ParseFlags([]string{"--config", cfgPath}); err != nil {
		t.Fatal(err)
	}
	if _, err := buildConfig(app, nil); err == nil {
		t.Fatalf("unknown config key accepted")
	}
}

func TestInitLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	logger, err := initLogger(true, path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug().Msg("first")

	// Append mode: a second logger must not truncate.
	logger, err = initLogger(false, path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info().Msg("second")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "first") || !strings.Contains(string(b), "second") {
		t.Fatalf("log file contents wrong: %s", b)
	}

	if _, err := initLogger(false, dir); err == nil {
		t.Fatalf("directory accepted as log file")
	}

	if _, err := initLogger(false, ""); err != nil {
		t.Fatalf("empty log path must disable logging, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	app := newApp()
	var buf bytes.Buffer
	app.SetOut(&buf)
	app.SetErr(&buf)
	app.SetArgs([]string{"version"})
	if err := app.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != version {
		t.Fatalf("version output = %q", buf.String())
	}
}

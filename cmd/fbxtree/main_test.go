package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/fbxtree/internal/testutil/fbxfile"
)

func sceneFile(t *testing.T, dir string) string {
	t.Helper()
	data := fbxfile.Build(7500, fbxfile.Node{Name: "Root", Attrs: [][]byte{fbxfile.I32(5)}})
	return fbxfile.WriteFile(t, dir, "scene.fbx", data)
}

func TestRunPrintsTreeAndWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	scene := sceneFile(t, dir)
	metrics := filepath.Join(dir, "fbxtree.prom")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level", "off", "--metrics-out", metrics, scene}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Root\n  [0] i32 = 5\n") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
	raw, err := os.ReadFile(metrics)
	if err != nil || !strings.Contains(string(raw), "fbxtree_decode_total") {
		t.Fatalf("metrics textfile missing: err=%v\n%s", err, raw)
	}
}

func TestRunConfigAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	scene := sceneFile(t, dir)
	cfgPath := filepath.Join(dir, "fbxtree.toml")
	if err := os.WriteFile(cfgPath, []byte("format = \"yaml\"\nlog_level = \"off\"\nshow_attributes = false\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out := filepath.Join(dir, "out.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", cfgPath, "-f", "json", "-o", out, scene}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, stderr.String())
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(raw), `"name": "Root"`) {
		t.Fatalf("expected json output, got %s", raw)
	}
	if strings.Contains(string(raw), `"attributes"`) {
		t.Fatalf("show_attributes=false from config must hold, got %s", raw)
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	scene := sceneFile(t, dir)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--log-level", "off", scene, filepath.Join(dir, "missing.fbx")}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 when a file fails, got %d", code)
	}
	if !strings.Contains(stderr.String(), "1 of 2 files failed") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "Root") {
		t.Fatalf("good file must still be printed:\n%s", stdout.String())
	}

	stderr.Reset()
	if code := run([]string{"--format", "xml", scene}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 for unknown format, got %d", code)
	}
	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 without input files, got %d", code)
	}

	stdout.Reset()
	if code := run([]string{"-h"}, &stdout, &stderr); code != 0 || !strings.Contains(stdout.String(), "Usage:") {
		t.Fatalf("expected help, code=%d out=%q", code, stdout.String())
	}
}

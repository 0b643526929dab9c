// Package main provides tests for the leapbuild CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapbuild/internal/cli"
	"github.com/leapstack-labs/leapbuild/internal/cli/config"
)

// setupProject creates a temporary project with two pipelines.
func setupProject(t *testing.T) string {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	tmpDir := t.TempDir()
	files := map[string]string{
		"leapbuild.yaml": `pipelines:
  - name: app
    entry_points: [src/client.ts]
    outdir: dist/client
    format: esm
  - name: ssr
    entry_points: [src/server.ts]
    outfile: dist/server.js
    platform: node
progress: false
`,
		"src/client.ts":       "import { greet } from './shared/greet'\nconsole.log(greet('client'))\n",
		"src/server.ts":       "import { greet } from './shared/greet'\nexport const handler = () => greet('server')\n",
		"src/shared/greet.ts": "export const greet = (who: string): string => `hello ${who}`\n",
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return tmpDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Cleanup(config.ResetConfig)

	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "leapbuild") {
		t.Errorf("version output should contain 'leapbuild', got: %s", output)
	}
}

func TestBuildCommand(t *testing.T) {
	dir := setupProject(t)

	output, err := run(t, "build", "--config", filepath.Join(dir, "leapbuild.yaml"))
	if err != nil {
		t.Fatalf("build command error = %v\n%s", err, output)
	}

	for _, f := range []string{"dist/client/client.js", "dist/server.js"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected %s to be written: %v", f, err)
		}
	}
}

func TestBuildCommand_JSONEvents(t *testing.T) {
	dir := setupProject(t)
	if err := os.WriteFile(filepath.Join(dir, "src", "client.ts"), []byte("export const o = { a: 1, a: 2 }\n"), 0600); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, "build", "app", "--project-dir", dir, "-o", "json")
	if err != nil {
		t.Fatalf("build command error = %v\n%s", err, output)
	}

	var kinds []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line is not a JSON event: %q", line)
		}
		kinds = append(kinds, ev["event"].(string))
	}
	if !slices.Contains(kinds, "warnings") {
		t.Errorf("expected a warnings event, got %v", kinds)
	}
	if kinds[len(kinds)-1] != "warning" {
		t.Errorf("expected the warning summary last, got %v", kinds)
	}
}

func TestListCommand_JSON(t *testing.T) {
	dir := setupProject(t)

	output, err := run(t, "list", "--project-dir", dir, "--output", "json")
	if err != nil {
		t.Fatalf("list command error = %v", err)
	}

	var pipelines []struct {
		Name     string `json:"name"`
		Platform string `json:"platform"`
		Format   string `json:"format"`
	}
	if err := json.Unmarshal([]byte(output), &pipelines); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, output)
	}
	if len(pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(pipelines))
	}
	if pipelines[1].Name != "ssr" || pipelines[1].Format != "cjs" {
		t.Errorf("unexpected ssr pipeline: %+v", pipelines[1])
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	dir := setupProject(t)

	_, err := run(t, "list", "--project-dir", dir, "--output", "yaml")
	if err == nil {
		t.Fatal("expected an error for an unknown output format")
	}
	if !strings.Contains(err.Error(), "output") {
		t.Errorf("error should mention the output setting, got: %v", err)
	}
}

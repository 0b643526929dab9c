package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_BuildOptions(t *testing.T) {
	opts := Options{
		Name:        "ssr",
		EntryPoints: []string{"src/server.ts"},
		Outfile:     "dist/server.js",
		Platform:    "node",
		Format:      "CJS",
		Target:      "es2022",
		Sourcemap:   "linked",
		Bundle:      true,
		Minify:      true,
		External:    []string{"react"},
		Loader:      map[string]string{"svg": "text", ".png": "file"},
	}

	got, err := opts.BuildOptions()
	require.NoError(t, err)

	assert.Equal(t, api.PlatformNode, got.Platform)
	assert.Equal(t, api.FormatCommonJS, got.Format)
	assert.Equal(t, api.ES2022, got.Target)
	assert.Equal(t, api.SourceMapLinked, got.Sourcemap)
	assert.True(t, got.MinifyWhitespace)
	assert.True(t, got.MinifyIdentifiers)
	assert.True(t, got.MinifySyntax)
	assert.True(t, got.Write)
	assert.Equal(t, api.LogLevelSilent, got.LogLevel)
	assert.Equal(t, map[string]api.Loader{".svg": api.LoaderText, ".png": api.LoaderFile}, got.Loader)
	assert.Empty(t, got.Plugins)
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		option string
	}{
		{name: "platform", opts: Options{Platform: "deno"}, option: "platform"},
		{name: "format", opts: Options{Format: "amd"}, option: "format"},
		{name: "target", opts: Options{Target: "es3"}, option: "target"},
		{name: "sourcemap", opts: Options{Sourcemap: "hidden"}, option: "sourcemap"},
		{name: "loader", opts: Options{Loader: map[string]string{".x": "wasm"}}, option: "loader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			var optErr *OptionError
			require.ErrorAs(t, err, &optErr)
			assert.Equal(t, tt.option, optErr.Option)
			assert.NotEmpty(t, optErr.Allowed)
			assert.NotContains(t, optErr.Allowed, "")
		})
	}
}

func TestOptions_WatchPaths(t *testing.T) {
	root := t.TempDir()

	opts := Options{
		EntryPoints: []string{"src/a.ts", "src/b.ts", "worker/main.ts"},
		WorkingDir:  root,
	}
	assert.Equal(t, []string{
		filepath.Join(root, "src"),
		filepath.Join(root, "worker"),
	}, opts.WatchPaths())

	opts.Watch = []string{"src", "shared"}
	assert.Equal(t, []string{
		filepath.Join(root, "src"),
		filepath.Join(root, "shared"),
	}, opts.WatchPaths())
}

func TestOptions_OutputDir(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, filepath.Join(root, "dist"), Options{Outdir: "dist", WorkingDir: root}.OutputDir())
	assert.Equal(t, filepath.Join(root, "build"), Options{Outfile: "build/app.js", WorkingDir: root}.OutputDir())
	assert.Empty(t, Options{WorkingDir: root}.OutputDir())
}

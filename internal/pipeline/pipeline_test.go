package pipeline

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/internal/testutil"
)

type progressCall struct {
	percent float64
	message string
	details []string
}

type recordingHooks struct {
	mu       sync.Mutex
	starts   int
	progress []progressCall
	results  []*Result
	closes   int
}

func (h *recordingHooks) OnCompileStart() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnProgress(percent float64, message string, details ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = append(h.progress, progressCall{percent, message, details})
}

func (h *recordingHooks) OnDone(res *Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, res)
}

func (h *recordingHooks) OnSessionClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closes++
}

func (h *recordingHooks) resetProgress() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = nil
}

func newTestPipeline(t *testing.T, files map[string]string) (*Pipeline, *recordingHooks, string) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, files)

	hooks := &recordingHooks{}
	p, err := New(Options{
		Name:        "app",
		EntryPoints: []string{"src/index.ts"},
		Outdir:      "dist",
		Bundle:      true,
		Format:      "esm",
		Platform:    "browser",
		WorkingDir:  dir,
	}, hooks, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, hooks, dir
}

func TestPipeline_Build(t *testing.T) {
	p, hooks, dir := newTestPipeline(t, map[string]string{
		"src/index.ts": "import { greet } from './greet'\nconsole.log(greet('world'))\n",
		"src/greet.ts": "export const greet = (name: string): string => `hello ${name}`\n",
	})

	res, err := p.Build()
	require.NoError(t, err)
	assert.False(t, res.HasErrors())
	assert.False(t, res.HasWarnings())

	assert.Equal(t, 1, hooks.starts)
	require.Len(t, hooks.results, 1)
	assert.False(t, hooks.results[0].HasErrors())

	require.Len(t, hooks.progress, 2, "one progress call per loaded module")
	var details []string
	for _, c := range hooks.progress {
		assert.Equal(t, ProgressMessage, c.message)
		assert.Greater(t, c.percent, 0.0)
		assert.Less(t, c.percent, 1.0)
		require.Len(t, c.details, 1)
		details = append(details, c.details[0])
	}
	assert.ElementsMatch(t, []string{"src/index.ts", "src/greet.ts"}, details)

	_, err = os.Stat(filepath.Join(dir, "dist", "index.js"))
	assert.NoError(t, err, "output is written to disk")
}

func TestPipeline_RebuildUsesPreviousModuleCount(t *testing.T) {
	p, hooks, _ := newTestPipeline(t, map[string]string{
		"src/index.ts": "import { a } from './a'\nconsole.log(a)\n",
		"src/a.ts":     "export const a = 1\n",
	})

	_, err := p.Build()
	require.NoError(t, err)
	hooks.resetProgress()

	_, err = p.Build()
	require.NoError(t, err)

	require.Len(t, hooks.progress, 2)
	var percents []float64
	for _, c := range hooks.progress {
		percents = append(percents, c.percent)
	}
	assert.ElementsMatch(t, []float64{0.5, 0.99}, percents)
	assert.Equal(t, 2, hooks.starts)
}

func TestPipeline_BuildErrors(t *testing.T) {
	p, hooks, _ := newTestPipeline(t, map[string]string{
		"src/index.ts": "import { missing } from './nope'\nconsole.log(missing)\n",
	})

	res, err := p.Build()
	require.NoError(t, err, "compile errors are reported in the result")
	assert.True(t, res.HasErrors())
	require.NotEmpty(t, res.ErrorMessages())

	require.Len(t, hooks.results, 1)
	assert.True(t, hooks.results[0].HasErrors())
}

func TestPipeline_Close(t *testing.T) {
	p, hooks, _ := newTestPipeline(t, map[string]string{
		"src/index.ts": "console.log(1)\n",
	})

	p.Close()
	p.Close()
	assert.Equal(t, 1, hooks.closes)

	_, err := p.Build()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Name: "app", EntryPoints: []string{"a.ts"}, Format: "umd"}, &recordingHooks{}, nil)
	require.Error(t, err)

	var optErr *OptionError
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, "format", optErr.Option)
	assert.Equal(t, []string{"cjs", "esm", "iife"}, optErr.Allowed)
}

func TestEstimator(t *testing.T) {
	var e estimator

	first := []float64{e.next(), e.next()}
	assert.InDelta(t, 1.0/51, first[0], 1e-9)
	assert.InDelta(t, 2.0/52, first[1], 1e-9)
	e.finish()

	e.reset()
	assert.InDelta(t, 0.5, e.next(), 1e-9)
	assert.InDelta(t, 0.99, e.next(), 1e-9)
	assert.InDelta(t, 0.99, e.next(), 1e-9, "estimates are capped below completion")
}

func TestDisplayPath(t *testing.T) {
	root := filepath.FromSlash("/project")
	tests := []struct {
		name      string
		namespace string
		path      string
		want      string
	}{
		{name: "relative to root", namespace: "file", path: filepath.FromSlash("/project/src/a.ts"), want: "src/a.ts"},
		{name: "other namespace", namespace: "virtual", path: "env", want: "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayPath(root, tt.namespace, tt.path))
		})
	}
}

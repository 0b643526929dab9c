package pipeline

import (
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/evanw/esbuild/pkg/api"
)

// ProgressMessage is reported with every module load.
const ProgressMessage = "building"

// firstBuildSpread shapes the estimate before any build has finished, when
// the module count is unknown.
const firstBuildSpread = 50

// estimator turns module loads into a completion estimate, using the size of
// the previous build as the expected total.
type estimator struct {
	loaded   atomic.Int64
	expected atomic.Int64
}

func (e *estimator) reset() {
	e.loaded.Store(0)
}

// finish records the module count of a completed build.
func (e *estimator) finish() {
	if n := e.loaded.Load(); n > 0 {
		e.expected.Store(n)
	}
}

// next counts one module and returns the new estimate.
func (e *estimator) next() float64 {
	n := float64(e.loaded.Add(1))
	if exp := float64(e.expected.Load()); exp > 0 {
		return min(n/exp, 0.99)
	}
	return n / (n + firstBuildSpread)
}

// progressPlugin reports build lifecycle and module loads to hooks.
func progressPlugin(name, root string, hooks Hooks) api.Plugin {
	est := &estimator{}
	var started atomic.Int64

	return api.Plugin{
		Name: "leapbuild-progress:" + name,
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				est.reset()
				started.Store(time.Now().UnixNano())
				hooks.OnCompileStart()
				return api.OnStartResult{}, nil
			})

			// Returning an empty result lets esbuild's own loaders run.
			build.OnLoad(api.OnLoadOptions{Filter: ".*"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				hooks.OnProgress(est.next(), ProgressMessage, displayPath(root, args.Namespace, args.Path))
				return api.OnLoadResult{}, nil
			})

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) == 0 {
					est.finish()
				}
				elapsed := time.Duration(time.Now().UnixNano() - started.Load())
				hooks.OnDone(newResult(result, elapsed))
				return api.OnEndResult{}, nil
			})
		},
	}
}

func displayPath(root, namespace, path string) string {
	if namespace != "file" || root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrClosed is returned by Build after Close.
var ErrClosed = errors.New("pipeline closed")

// ContextError is returned when esbuild rejects a pipeline's options.
type ContextError struct {
	Name     string
	Messages []api.Message
}

func (e *ContextError) Error() string {
	texts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		texts = append(texts, m.Text)
	}
	return fmt.Sprintf("pipeline %q: %s", e.Name, strings.Join(texts, "; "))
}

// Pipeline is one incremental esbuild build context.
type Pipeline struct {
	opts   Options
	hooks  Hooks
	logger *slog.Logger

	mu     sync.Mutex
	ctx    api.BuildContext
	closed bool
}

// New creates a pipeline. No build runs until Build is called.
func New(opts Options, hooks Hooks, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	buildOpts, err := opts.BuildOptions()
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", opts.Name, err)
	}

	root := buildOpts.AbsWorkingDir
	buildOpts.Plugins = append(buildOpts.Plugins, progressPlugin(opts.Name, root, hooks))

	ctx, ctxErr := api.Context(buildOpts)
	if ctxErr != nil {
		return nil, &ContextError{Name: opts.Name, Messages: ctxErr.Errors}
	}

	logger.Debug("pipeline created",
		slog.String("pipeline", opts.Name),
		slog.Int("entry_points", len(opts.EntryPoints)),
		slog.String("working_dir", root))

	return &Pipeline{
		opts:   opts,
		hooks:  hooks,
		logger: logger,
		ctx:    ctx,
	}, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.opts.Name }

// Options returns the options the pipeline was created with.
func (p *Pipeline) Options() Options { return p.opts }

// Build runs one incremental build. Hooks are called during the build.
func (p *Pipeline) Build() (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	res := p.ctx.Rebuild()
	elapsed := time.Since(start)
	p.logger.Debug("build finished",
		slog.String("pipeline", p.opts.Name),
		slog.Duration("duration", elapsed),
		slog.Int("errors", len(res.Errors)),
		slog.Int("warnings", len(res.Warnings)))
	return newResult(&res, elapsed), nil
}

// Close disposes the build context and ends the session. It is safe to call
// more than once.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.ctx.Dispose()
	p.mu.Unlock()

	p.logger.Debug("pipeline closed", slog.String("pipeline", p.opts.Name))
	p.hooks.OnSessionClose()
}

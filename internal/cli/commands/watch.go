package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/leapstack-labs/leapbuild/internal/pipeline"
	"github.com/leapstack-labs/leapbuild/internal/progress"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch [pipeline...]",
		Aliases: []string{"dev"},
		Short:   "Rebuild pipelines when their sources change",
		Long: `Build every configured pipeline, then rebuild a pipeline whenever files
under its watch paths change. Builds are incremental.

Errors and warnings are reported once no pipeline is compiling, so a
change that touches several pipelines produces a single report. The screen
is cleared before errors are printed unless --clear-screen=false is given.

Press Ctrl+C to stop.`,
		Example: `  # Watch everything
  leapbuild watch

  # Watch only the app pipeline, waiting longer for changes to settle
  leapbuild watch app --debounce 300ms

  # Keep previous output on screen
  leapbuild watch --clear-screen=false`,
		ValidArgsFunction: completePipelineNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, args)
		},
	}

	cmd.Flags().Duration("debounce", pipeline.DefaultDebounce, "Wait this long for changes to settle before rebuilding")
	cmd.Flags().Bool("clear-screen", true, "Clear the screen before printing errors")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, names []string) error {
	cc := NewCommandContext(cmd)

	s, err := newSession(cmd, cc, names, progress.ModeWatch)
	if err != nil {
		return err
	}
	defer s.Close()

	// Watchers are created up front so a bad watch path fails before any
	// build starts.
	watchers := make([]*pipeline.Watcher, 0, len(s.pipelines))
	defer func() {
		for _, w := range watchers {
			_ = w.Close()
		}
	}()
	for _, p := range s.pipelines {
		opts := p.Options()
		w, err := pipeline.NewWatcher(opts.WatchPaths(), []string{opts.OutputDir()}, cc.Cfg.Watch.Debounce,
			cc.Logger.With(slog.String("pipeline", p.Name())))
		if err != nil {
			return fmt.Errorf("pipeline %q: %w", p.Name(), err)
		}
		watchers = append(watchers, w)
	}

	if cc.Renderer.EffectiveMode() != output.ModeJSON {
		cc.Renderer.Muted(fmt.Sprintf("Watching %d pipeline(s). Press Ctrl+C to stop.", len(s.pipelines)))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range s.pipelines {
		w := watchers[i]
		g.Go(func() error {
			if _, err := p.Build(); err != nil {
				return err
			}
			return w.Run(gctx, func(changed []string) {
				start := time.Now()
				s.logger.Debug("rebuilding",
					slog.String("pipeline", p.Name()),
					slog.Int("changed", len(changed)))
				if _, err := p.Build(); err != nil {
					s.logger.Warn("rebuild skipped", slog.String("pipeline", p.Name()), slog.String("error", err.Error()))
					return
				}
				s.logger.Debug("rebuilt", slog.String("pipeline", p.Name()), slog.Duration("took", time.Since(start)))
			})
		})
	}

	err = g.Wait()
	cc.Logger.Debug("watch session stopped")
	return err
}

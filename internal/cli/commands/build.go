package commands

import (
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapbuild/internal/progress"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [pipeline...]",
		Short: "Build all pipelines once",
		Long: `Build every configured pipeline once, in parallel.

Progress bars are shown while pipelines compile when the terminal supports
them. Compile errors are printed as soon as a pipeline fails and the process
exits with status 1. Warnings are printed once every pipeline has finished.

Pass pipeline names to build only those pipelines.`,
		Example: `  # Build everything
  leapbuild build

  # Build only the ssr pipeline
  leapbuild build ssr

  # Build without progress bars
  leapbuild build --progress=false

  # Emit JSON events (for CI and scripts)
  leapbuild build --output json`,
		ValidArgsFunction: completePipelineNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args)
		},
	}

	return cmd
}

func runBuild(cmd *cobra.Command, names []string) error {
	cc := NewCommandContext(cmd)

	s, err := newSession(cmd, cc, names, progress.ModeOneShot)
	if err != nil {
		return err
	}
	defer s.Close()

	var g errgroup.Group
	for _, p := range s.pipelines {
		g.Go(func() error {
			_, err := p.Build()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := s.tracker.Failed()
	s.Close()

	cc.Logger.Debug("build session finished", slog.Bool("failed", failed))
	if failed {
		return ErrBuildFailed
	}
	return nil
}

// completePipelineNames completes pipeline names from the config file.
func completePipelineNames(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	cfg := getConfig()
	var names []string
	for _, n := range cfg.Project().Names() {
		if !slices.Contains(args, n) {
			names = append(names, n)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

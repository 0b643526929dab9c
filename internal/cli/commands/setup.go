package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/leapstack-labs/leapbuild/internal/pipeline"
	"github.com/leapstack-labs/leapbuild/internal/progress"
	"github.com/spf13/cobra"
)

// ErrBuildFailed is returned when a build finished with compile errors.
var ErrBuildFailed = errors.New("build failed")

// osExit terminates the process when a one-shot build fails. Tests replace it.
var osExit = os.Exit

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise loads defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return &config.Config{
			Progress:        true,
			RefreshInterval: config.DefaultRefreshInterval,
			Watch:           config.WatchConfig{Debounce: config.DefaultDebounce, ClearScreen: true},
			OutputFormat:    config.DefaultOutput,
		}
	}
	return cfg
}

// session is a set of pipelines reporting to one tracker.
type session struct {
	tracker   *progress.Tracker
	pipelines []*pipeline.Pipeline
	logger    *slog.Logger
}

// newSession creates the pipelines named in names (all when empty) and wires
// them to a tracker in the given mode.
func newSession(cmd *cobra.Command, cc *CommandContext, names []string, mode progress.Mode) (*session, error) {
	cfg := cc.Cfg
	if err := cfg.ValidatePipelines(); err != nil {
		return nil, err
	}
	selected, err := cfg.Project().Select(names)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	jsonMode := cc.Renderer.EffectiveMode() == output.ModeJSON
	bars := cfg.Progress && !jsonMode

	var printer progress.Printer = cc.Renderer
	if jsonMode {
		printer = output.NewEventPrinter(out)
	}

	tracker := progress.NewTracker(progress.Options{
		Out:                  out,
		Profile:              cc.Renderer.Profile(),
		Printer:              printer,
		Mode:                 mode,
		DisplayBars:          bars,
		TerminalSupportsBars: output.SupportsBars(out),
		Width:                output.TerminalWidth(out),
		RefreshInterval:      cfg.RefreshInterval,
		ClearScreen:          cfg.Watch.ClearScreen,
		Exit:                 osExit,
		Logger:               cc.Logger,
	})

	s := &session{tracker: tracker, logger: cc.Logger}
	for i := range selected {
		pc := &selected[i]
		hooks := trackerHooks{tracker.NewAdapter(pc.Name)}
		p, err := pipeline.New(pc.Options(cfg.ProjectRoot), hooks, cc.Logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create pipeline: %w", err)
		}
		s.pipelines = append(s.pipelines, p)
	}

	cc.Logger.Debug("session started",
		slog.String("mode", mode.String()),
		slog.Int("pipelines", len(s.pipelines)),
		slog.Bool("bars", bars && output.SupportsBars(out)))
	return s, nil
}

// Close disposes every pipeline, then stops the tracker.
func (s *session) Close() {
	for _, p := range s.pipelines {
		p.Close()
	}
	s.tracker.Close()
}

// trackerHooks forwards pipeline lifecycle events to a progress adapter.
type trackerHooks struct {
	adapter *progress.Adapter
}

func (h trackerHooks) OnCompileStart() { h.adapter.OnCompileStart() }

func (h trackerHooks) OnProgress(percent float64, message string, details ...string) {
	h.adapter.OnProgress(percent, message, details...)
}

func (h trackerHooks) OnDone(res *pipeline.Result) {
	if res == nil {
		h.adapter.OnDone(nil)
		return
	}
	h.adapter.OnDone(res)
}

func (h trackerHooks) OnSessionClose() { h.adapter.OnSessionClose() }

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/spf13/cobra"
)

// Health check statuses.
const (
	StatusPass  = "pass"
	StatusWarn  = "warn"
	StatusError = "error"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the project and terminal setup",
		Long: `Check that leapbuild.yaml is valid, that every entry point exists, and that
no pipeline watches its own output. Also reports whether the terminal supports
progress bars and which color profile is in use.

Exits with an error when any check fails.`,
		Example: `  # Run all checks
  leapbuild doctor

  # Output as JSON
  leapbuild doctor --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}

	return cmd
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	Name    string   `json:"name"`
	Status  string   `json:"status"` // "pass", "warn", "error"
	Details []string `json:"details,omitempty"`
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	ConfigFile string        `json:"config_file,omitempty"`
	Checks     []HealthCheck `json:"checks"`
	Failed     int           `json:"failed"`
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	doc := buildDoctorOutput(cmdCtx.Cfg, config.GetConfigFileUsed(), cmd.OutOrStdout())

	var err error
	if r.EffectiveMode() == output.ModeJSON {
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	} else {
		renderDoctorText(r, doc)
	}
	if err != nil {
		return err
	}
	if doc.Failed > 0 {
		return fmt.Errorf("%d check(s) failed", doc.Failed)
	}
	return nil
}

func buildDoctorOutput(cfg *config.Config, configFile string, out io.Writer) *DoctorOutput {
	doc := &DoctorOutput{ConfigFile: configFile}
	add := func(c HealthCheck) {
		if c.Status == StatusError {
			doc.Failed++
		}
		doc.Checks = append(doc.Checks, c)
	}

	if configFile == "" {
		add(HealthCheck{Name: "config file", Status: StatusError, Details: []string{"no leapbuild.yaml found, run 'leapbuild init'"}})
		return doc
	}
	add(HealthCheck{Name: "config file", Status: StatusPass, Details: []string{configFile}})

	if err := cfg.ValidatePipelines(); err != nil {
		add(HealthCheck{Name: "pipelines", Status: StatusError, Details: strings.Split(err.Error(), "\n")})
		return doc
	}
	add(HealthCheck{Name: "pipelines", Status: StatusPass, Details: cfg.Project().Names()})

	add(checkEntryPoints(cfg))
	add(checkWatchLoops(cfg))
	add(checkTerminal(cfg, out))
	return doc
}

func checkEntryPoints(cfg *config.Config) HealthCheck {
	check := HealthCheck{Name: "entry points", Status: StatusPass}
	for _, p := range cfg.Pipelines {
		for _, entry := range p.EntryPoints {
			path := entry
			if !filepath.IsAbs(path) {
				path = filepath.Join(cfg.ProjectRoot, entry)
			}
			if _, err := os.Stat(path); err != nil {
				check.Status = StatusError
				check.Details = append(check.Details, fmt.Sprintf("%s: %s does not exist", p.Name, entry))
			}
		}
	}
	return check
}

// checkWatchLoops warns when one pipeline writes into paths another pipeline
// watches. Each watcher ignores its own output only.
func checkWatchLoops(cfg *config.Config) HealthCheck {
	check := HealthCheck{Name: "watch paths", Status: StatusPass}
	for _, producer := range cfg.Pipelines {
		outDir := producer.Options(cfg.ProjectRoot).OutputDir()
		if outDir == "" {
			continue
		}
		for _, watcher := range cfg.Pipelines {
			if watcher.Name == producer.Name {
				continue
			}
			for _, w := range watcher.Options(cfg.ProjectRoot).WatchPaths() {
				if outDir == w || strings.HasPrefix(outDir, w+string(filepath.Separator)) {
					check.Status = StatusWarn
					check.Details = append(check.Details,
						fmt.Sprintf("%s writes into %s, which %s watches", producer.Name, relativeTo(cfg.ProjectRoot, []string{outDir})[0], watcher.Name))
				}
			}
		}
	}
	return check
}

func checkTerminal(cfg *config.Config, w io.Writer) HealthCheck {
	check := HealthCheck{Name: "terminal", Status: StatusPass}
	switch {
	case !cfg.Progress:
		check.Details = append(check.Details, "progress bars disabled by configuration")
	case output.SupportsBars(w):
		check.Details = append(check.Details, "progress bars supported")
	default:
		check.Details = append(check.Details, "progress bars unavailable (not a terminal, CI, or TERM=dumb)")
	}
	check.Details = append(check.Details, fmt.Sprintf("color profile: %s", output.ColorProfile(w).Name()))
	return check
}

func renderDoctorText(r *output.Renderer, doc *DoctorOutput) {
	r.Header("leapbuild doctor")
	r.Println("")
	for _, c := range doc.Checks {
		switch c.Status {
		case StatusPass:
			r.Success(c.Name)
		case StatusWarn:
			r.Warn(c.Name)
		default:
			r.Fail(c.Name)
		}
		for _, d := range c.Details {
			r.Muted("    " + d)
		}
	}
	r.Println("")
}

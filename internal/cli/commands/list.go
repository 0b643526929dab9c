package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured pipelines",
		Long: `List every pipeline defined in leapbuild.yaml with its entry points,
output location, platform and format.

Use --output json for machine-readable output.`,
		Example: `  # List pipelines as a table
  leapbuild list

  # List pipelines as JSON
  leapbuild list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

// PipelineInfo is the JSON form of a pipeline in list output.
type PipelineInfo struct {
	Name        string   `json:"name"`
	EntryPoints []string `json:"entry_points"`
	Output      string   `json:"output"`
	Platform    string   `json:"platform"`
	Format      string   `json:"format,omitempty"`
	Bundle      bool     `json:"bundle"`
	Watch       []string `json:"watch"`
}

func runList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if err := cfg.ValidatePipelines(); err != nil {
		return err
	}

	infos := make([]PipelineInfo, 0, len(cfg.Pipelines))
	for i := range cfg.Pipelines {
		p := &cfg.Pipelines[i]
		opts := p.Options(cfg.ProjectRoot)
		infos = append(infos, PipelineInfo{
			Name:        p.Name,
			EntryPoints: p.EntryPoints,
			Output:      p.Output(),
			Platform:    p.Platform,
			Format:      p.Format,
			Bundle:      p.BundleEnabled(),
			Watch:       relativeTo(cfg.ProjectRoot, opts.WatchPaths()),
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	return listText(r, infos)
}

func listText(r *output.Renderer, infos []PipelineInfo) error {
	r.Header(fmt.Sprintf("Pipelines (%d total)", len(infos)))

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Entry points", "Output", "Platform", "Format", "Bundle"})
	for _, info := range infos {
		format := info.Format
		if format == "" {
			format = "-"
		}
		t.AppendRow(table.Row{
			info.Name,
			strings.Join(info.EntryPoints, ", "),
			info.Output,
			info.Platform,
			format,
			info.Bundle,
		})
	}
	t.Render()
	return nil
}

func relativeTo(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = filepath.ToSlash(rel)
		}
		out = append(out, p)
	}
	return out
}

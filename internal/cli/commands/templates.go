package commands

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"gopkg.in/yaml.v3"
)

//go:embed all:templates
var templateFS embed.FS

// copyTemplate copies an embedded template directory to the target path.
// It handles special file renames (e.g., "gitignore" -> ".gitignore").
// Existing files are kept unless force is set. It returns the files written.
func copyTemplate(templateName, targetDir string, force bool) ([]string, error) {
	root := path.Join("templates", templateName)
	var written []string

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Embedded paths always use forward slashes
		relPath := p[len(root):]
		if relPath == "" {
			return nil
		}
		relPath = renameSpecialFiles(relPath[1:])
		targetPath := filepath.Join(targetDir, filepath.FromSlash(relPath))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}

		// Check if file exists
		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil // Skip existing files
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, content, 0600); err != nil {
			return err
		}
		written = append(written, relPath)
		return nil
	})

	return written, err
}

// renameSpecialFiles handles files that need renaming (e.g., dotfiles).
func renameSpecialFiles(p string) string {
	dir, base := path.Split(p)

	switch base {
	case "gitignore":
		return dir + ".gitignore"
	default:
		return p
	}
}

// starterConfig is the leapbuild.yaml written by init.
type starterConfig struct {
	Pipelines []config.PipelineConfig `yaml:"pipelines"`
	Progress  bool                    `yaml:"progress"`
	Watch     starterWatch            `yaml:"watch"`
}

type starterWatch struct {
	Debounce    string `yaml:"debounce"`
	ClearScreen bool   `yaml:"clear_screen"`
}

// starterPipelines returns the pipelines matching a template.
func starterPipelines(templateName string) []config.PipelineConfig {
	if templateName == "example" {
		return []config.PipelineConfig{
			{
				Name:        "app",
				EntryPoints: []string{"src/client.ts"},
				Outdir:      "dist/client",
				Platform:    "browser",
				Format:      "esm",
				Sourcemap:   "linked",
			},
			{
				Name:        "ssr",
				EntryPoints: []string{"src/server.ts"},
				Outfile:     "dist/server.js",
				Platform:    "node",
				Format:      "cjs",
				Target:      "es2022",
			},
		}
	}
	return []config.PipelineConfig{
		{
			Name:        "app",
			EntryPoints: []string{"src/index.ts"},
			Outdir:      "dist",
			Platform:    "browser",
			Format:      "esm",
			Sourcemap:   "linked",
		},
	}
}

// renderStarterConfig returns the YAML for a template's config file.
func renderStarterConfig(templateName string) ([]byte, error) {
	return yaml.Marshal(starterConfig{
		Pipelines: starterPipelines(templateName),
		Progress:  true,
		Watch: starterWatch{
			Debounce:    config.DefaultDebounce.String(),
			ClearScreen: true,
		},
	})
}

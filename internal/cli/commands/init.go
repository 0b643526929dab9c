package commands

import (
	"fmt"
	"os"
	"path/filepath"

	intconfig "github.com/leapstack-labs/leapbuild/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new leapbuild project",
		Long: `Initialize a new leapbuild project with a starter configuration.

This creates:
  - leapbuild.yaml with one browser pipeline
  - src/index.ts as its entry point
  - .gitignore ignoring dist/ and node_modules/

Use --example to create a project with two pipelines (a browser client and a
node server) sharing code, to see several progress bars at once.`,
		Example: `  # Initialize in current directory
  leapbuild init

  # Initialize with the client + server example
  leapbuild init --example

  # Initialize in a new directory
  leapbuild init my-app --example

  # Force overwrite existing config
  leapbuild init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			templateName := "minimal"
			if example {
				templateName = "example"
			}
			return runInit(cmd, dir, templateName, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create a client + server example project")

	return cmd
}

func runInit(cmd *cobra.Command, dir, templateName string, force bool) error {
	r := NewCommandContext(cmd).Renderer

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Check if config already exists
	if existing := intconfig.FindConfigFile(dir); existing != "" && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", filepath.Base(existing))
	}

	content, err := renderStarterConfig(templateName)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, intconfig.ConfigFileName), content, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	files, err := copyTemplate(templateName, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	r.Success(intconfig.ConfigFileName)
	for _, f := range files {
		r.Success(f)
	}

	r.Println("")
	r.Success("leapbuild project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Run 'leapbuild build' to compile once")
	r.Println("  2. Run 'leapbuild watch' to rebuild on change")
	r.Println("  3. Run 'leapbuild list' to see all pipelines")

	return nil
}

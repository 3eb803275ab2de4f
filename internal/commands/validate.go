package commands

import (
	"context"
	"fmt"
)

// ValidateCommand parses and validates the project's declarations without
// writing any output.
type ValidateCommand struct {
	deps GenerateDependencies
}

// NewValidateCommand creates a validate command with default dependencies
func (c *Controller) NewValidateCommand() *ValidateCommand {
	return &ValidateCommand{
		deps: GenerateDependencies{
			ConfigLoader: &defaultConfigLoader{path: c.Flags.Config},
			Runner:       &defaultPipelineRunner{controller: c},
			Output:       &defaultOutput{},
		},
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (vc *ValidateCommand) WithDependencies(deps GenerateDependencies) *ValidateCommand {
	vc.deps = deps
	return vc
}

// Execute runs the validate command
func (vc *ValidateCommand) Execute(ctx context.Context) error {
	cfg, projectRoot, err := vc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	doc, err := vc.deps.Runner.Check(cfg, projectRoot)
	if err != nil {
		return reportDeclarationErrors(vc.deps.Output, err)
	}

	vc.deps.Output.Printf("✅ %d declaration(s) valid\n", len(doc.Declarations))
	return nil
}

// Validate checks the project's declarations and reports every violation
func (c *Controller) Validate(ctx context.Context) error {
	return c.NewValidateCommand().Execute(ctx)
}

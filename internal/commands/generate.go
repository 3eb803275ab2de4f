package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MolecularSadism/enumgen/internal/build"
	"github.com/MolecularSadism/enumgen/internal/config"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// resultPrecision keeps reported durations readable
const resultPrecision = time.Millisecond

// GenerateDependencies for the generate command
type GenerateDependencies struct {
	ConfigLoader ConfigLoader
	Runner       PipelineRunner
	Output       Output
}

// ConfigLoader loads the project configuration
type ConfigLoader interface {
	LoadConfig() (*config.Config, string, error)
}

// PipelineRunner runs the generation pipeline for a loaded project
type PipelineRunner interface {
	Run(cfg *config.Config, projectRoot string) (*build.Result, error)
	Check(cfg *config.Config, projectRoot string) (*schema.Document, error)
}

type defaultConfigLoader struct {
	path string
}

func (l *defaultConfigLoader) LoadConfig() (*config.Config, string, error) {
	if l.path != "" {
		cfg, err := config.LoadConfigFromPath(l.path)
		if err != nil {
			return nil, "", err
		}
		return cfg, ".", nil
	}
	return config.LoadConfig()
}

type defaultPipelineRunner struct {
	controller *Controller
}

func (r *defaultPipelineRunner) Run(cfg *config.Config, projectRoot string) (*build.Result, error) {
	return build.NewPipeline(cfg, projectRoot, r.controller.Logger).Run()
}

func (r *defaultPipelineRunner) Check(cfg *config.Config, projectRoot string) (*schema.Document, error) {
	return build.NewPipeline(cfg, projectRoot, r.controller.Logger).Check()
}

// GenerateCommand encapsulates the generate logic with injected dependencies
type GenerateCommand struct {
	deps GenerateDependencies
}

// NewGenerateCommand creates a generate command with default dependencies
func (c *Controller) NewGenerateCommand() *GenerateCommand {
	return &GenerateCommand{
		deps: GenerateDependencies{
			ConfigLoader: &defaultConfigLoader{path: c.Flags.Config},
			Runner:       &defaultPipelineRunner{controller: c},
			Output:       &defaultOutput{},
		},
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (gc *GenerateCommand) WithDependencies(deps GenerateDependencies) *GenerateCommand {
	gc.deps = deps
	return gc
}

// Execute runs the generate command
func (gc *GenerateCommand) Execute(ctx context.Context) error {
	cfg, projectRoot, err := gc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	result, err := gc.deps.Runner.Run(cfg, projectRoot)
	if err != nil {
		return reportDeclarationErrors(gc.deps.Output, err)
	}

	for _, a := range result.Artifacts {
		gc.deps.Output.Printf("  %s %s (%d bytes)\n", a.Language, a.Path, a.Size)
	}
	gc.deps.Output.Printf("✅ Generated %d file(s) from %d declaration(s) in %s\n",
		len(result.Artifacts), len(result.Document.Declarations), result.Duration.Round(resultPrecision))
	return nil
}

// Generate expands every declaration through the configured backends
func (c *Controller) Generate(ctx context.Context) error {
	return c.NewGenerateCommand().Execute(ctx)
}

// reportDeclarationErrors prints each violation on its own line so a single
// run surfaces the full diagnostic set, then returns a terse error for the
// CLI exit path.
func reportDeclarationErrors(out Output, err error) error {
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for _, v := range verr.Violations {
		out.Printf("❌ %s\n", v)
	}
	return fmt.Errorf("%d declaration error(s)", len(verr.Violations))
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/MolecularSadism/enumgen/internal/config"
)

type InitOptions struct {
	ProjectName string
	Language    string
}

// FileSystem abstracts the filesystem writes init performs
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// starterDeclarations seeds a new project with one declaration of each kind
// so the syntax is discoverable without reading docs.
const starterDeclarations = `@enumgen(namespace: "%s", version: "0.1.0")

"""Game lifecycle notifications delivered to observers."""
enum GameEvent @event @derive(clone: true, equality: true, debug: true) {
  Started
  PlayerJoined { name: String! }
}

"""Commands buffered between producers and consumers."""
enum GameCommand @message @derive(clone: true, debug: true) {
  Quit
  Say(String!)
}
`

type InitCommand struct {
	filesystem FileSystem
	output     Output
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand() *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
		output:     &defaultOutput{},
	}
}

// Init scaffolds a new project directory with a config and starter declarations
func (c *Controller) Init(ctx context.Context) error {
	return NewInitCommand().Run(ctx)
}

func (ic *InitCommand) Run(ctx context.Context) error {
	options := ic.testOptions
	if options == nil {
		prompted, err := ic.promptInitOptions()
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
		options = prompted
	}

	if err := ic.filesystem.MkdirAll(options.ProjectName, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := config.Config{
		Name:      options.ProjectName,
		Version:   "0.1.0",
		Schema:    "./events.gql",
		Languages: []string{options.Language},
		Output:    "./generated",
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	configPath := filepath.Join(options.ProjectName, "enumgen.json")
	if err := ic.filesystem.WriteFile(configPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	schemaPath := filepath.Join(options.ProjectName, "events.gql")
	starter := fmt.Sprintf(starterDeclarations, options.ProjectName)
	if err := ic.filesystem.WriteFile(schemaPath, []byte(starter), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", schemaPath, err)
	}

	ic.output.Printf("✅ Created project %s\n", options.ProjectName)
	ic.output.Printf("   %s\n", configPath)
	ic.output.Printf("   %s\n", schemaPath)
	ic.output.Println("\nNext: cd into the project and run `enumgen generate`")
	return nil
}

func (ic *InitCommand) promptInitOptions() (*InitOptions, error) {
	var projectName string
	var language string

	form := ic.createInitForm(&projectName, &language)
	if err := form.Run(); err != nil {
		return nil, err
	}

	return &InitOptions{
		ProjectName: projectName,
		Language:    language,
	}, nil
}

func (ic *InitCommand) createInitForm(projectName *string, language *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Description("Directory to create for the new event declarations").
				Value(projectName).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("project name cannot be empty")
					}
					if _, err := ic.filesystem.Stat(s); err == nil {
						return fmt.Errorf("directory %s already exists", s)
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Language").
				Description("Primary output language").
				Options(
					huh.NewOption("Go", "go"),
					huh.NewOption("Rust", "rust"),
				).
				Value(language),
		),
	)
}

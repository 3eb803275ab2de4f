package commands

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MolecularSadism/enumgen/internal/build"
	"github.com/MolecularSadism/enumgen/internal/config"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// Mock implementations for testing

type mockConfigLoader struct {
	config      *config.Config
	projectRoot string
	err         error
}

func (m *mockConfigLoader) LoadConfig() (*config.Config, string, error) {
	return m.config, m.projectRoot, m.err
}

type mockRunner struct {
	result   *build.Result
	document *schema.Document
	err      error
}

func (m *mockRunner) Run(cfg *config.Config, projectRoot string) (*build.Result, error) {
	return m.result, m.err
}

func (m *mockRunner) Check(cfg *config.Config, projectRoot string) (*schema.Document, error) {
	return m.document, m.err
}

type mockOutput struct {
	lines []string
}

func (m *mockOutput) Printf(format string, args ...any) {
	m.lines = append(m.lines, fmt.Sprintf(format, args...))
}

func (m *mockOutput) Println(args ...any) {
	m.lines = append(m.lines, fmt.Sprintln(args...))
}

func (m *mockOutput) all() string {
	return strings.Join(m.lines, "")
}

func testConfig() *config.Config {
	return &config.Config{Name: "test", Languages: []string{"go"}}
}

func TestGenerateCommand_Success(t *testing.T) {
	// Test: A successful run reports every artifact and a summary line
	out := &mockOutput{}
	cmd := (&GenerateCommand{}).WithDependencies(GenerateDependencies{
		ConfigLoader: &mockConfigLoader{config: testConfig(), projectRoot: "/tmp/p"},
		Runner: &mockRunner{result: &build.Result{
			Document: &schema.Document{Declarations: make([]schema.Declaration, 2)},
			Artifacts: []build.Artifact{
				{Language: "go", Namespace: "game_event", Path: "generated/go/game_event/game_event.go", Size: 1024},
			},
			Duration: 12 * time.Millisecond,
		}},
		Output: out,
	})

	err := cmd.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.all(), "game_event.go")
	assert.Contains(t, out.all(), "Generated 1 file(s) from 2 declaration(s)")
}

func TestGenerateCommand_ConfigError(t *testing.T) {
	// Test: A missing config is reported without running the pipeline
	cmd := (&GenerateCommand{}).WithDependencies(GenerateDependencies{
		ConfigLoader: &mockConfigLoader{err: fmt.Errorf("no enumgen.json found")},
		Runner:       &mockRunner{},
		Output:       &mockOutput{},
	})

	err := cmd.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load project config")
}

func TestGenerateCommand_PrintsEveryViolation(t *testing.T) {
	// Test: Validation failures surface the complete diagnostic set
	out := &mockOutput{}
	cmd := (&GenerateCommand{}).WithDependencies(GenerateDependencies{
		ConfigLoader: &mockConfigLoader{config: testConfig()},
		Runner: &mockRunner{err: &schema.ValidationError{Violations: []schema.Violation{
			{Code: schema.CodeEmptyDeclaration, Declaration: "Nothing", Message: "declaration has no variants"},
			{Code: schema.CodeMissingOrAmbiguousKind, Declaration: "Nothing", Message: "exactly one kind is required"},
		}}},
		Output: out,
	})

	err := cmd.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 declaration error(s)")
	assert.Contains(t, out.all(), "EmptyDeclaration")
	assert.Contains(t, out.all(), "MissingOrAmbiguousKind")
}

func TestValidateCommand_Success(t *testing.T) {
	// Test: Validate reports the declaration count and writes nothing
	out := &mockOutput{}
	cmd := (&ValidateCommand{}).WithDependencies(GenerateDependencies{
		ConfigLoader: &mockConfigLoader{config: testConfig()},
		Runner: &mockRunner{document: &schema.Document{
			Declarations: make([]schema.Declaration, 3),
		}},
		Output: out,
	})

	err := cmd.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.all(), "3 declaration(s) valid")
}

func TestValidateCommand_Violations(t *testing.T) {
	// Test: Validate fails with the violation count as the error
	out := &mockOutput{}
	cmd := (&ValidateCommand{}).WithDependencies(GenerateDependencies{
		ConfigLoader: &mockConfigLoader{config: testConfig()},
		Runner: &mockRunner{err: &schema.ValidationError{Violations: []schema.Violation{
			{Code: schema.CodeEntityEventMissingTarget, Declaration: "Damage", Variant: "Hit", Message: "missing target"},
		}}},
		Output: out,
	})

	err := cmd.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.all(), "Damage.Hit")
}

// Package build runs the full generation pipeline for a configured project:
// read the declaration file, parse and validate it, expand every declaration
// through each configured backend, and write the results under the output
// directory.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/MolecularSadism/enumgen/internal/codegen"
	"github.com/MolecularSadism/enumgen/internal/config"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// Artifact is one file written by a pipeline run.
type Artifact struct {
	Language  string
	Namespace string
	Path      string
	Size      int
}

// Result contains everything a pipeline run produced.
type Result struct {
	Document  *schema.Document
	Artifacts []Artifact
	Duration  time.Duration
}

// Pipeline generates code for one project.
type Pipeline struct {
	config      *config.Config
	projectRoot string
	registry    *codegen.Registry
	logger      zerolog.Logger
}

// NewPipeline creates a pipeline using the default backend registry.
func NewPipeline(cfg *config.Config, projectRoot string, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		config:      cfg,
		projectRoot: projectRoot,
		registry:    codegen.DefaultRegistry,
		logger:      logger,
	}
}

// WithRegistry overrides the backend registry, for tests.
func (p *Pipeline) WithRegistry(r *codegen.Registry) *Pipeline {
	p.registry = r
	return p
}

// Parse reads and parses the project's declaration file without generating
// anything. Validation failures surface as a schema.ValidationError.
func (p *Pipeline) Parse() (*schema.Document, error) {
	schemaPath := p.schemaPath()
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file %s: %w", schemaPath, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("declaration file is empty: %s", schemaPath)
	}

	p.logger.Debug().
		Str("path", schemaPath).
		Int("size", len(content)).
		Msg("read declaration file")

	doc, err := schema.ParseDocument(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", schemaPath, err)
	}
	if len(doc.Declarations) == 0 {
		return nil, fmt.Errorf("no event declarations in %s", schemaPath)
	}
	return doc, nil
}

// Check parses and validates without writing output.
func (p *Pipeline) Check() (*schema.Document, error) {
	doc, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// Run executes the pipeline for every configured language. Nothing is
// written unless every backend succeeds for every declaration.
func (p *Pipeline) Run() (*Result, error) {
	start := time.Now()

	doc, err := p.Parse()
	if err != nil {
		return nil, err
	}

	// Assemble everything up front so a late failure never leaves a
	// half-written output tree behind.
	type languageOutput struct {
		language   string
		namespaces []codegen.Namespace
	}
	outputs := make([]languageOutput, 0, len(p.config.Languages))
	for _, lang := range p.config.Languages {
		gen, err := p.registry.Get(lang, codegen.Options{
			RuntimeImport:   p.config.Generate.RuntimeImport,
			ImplicitDeref:   p.config.Generate.ImplicitDerefEnabled(),
			IncludeComments: p.config.Generate.CommentsEnabled(),
		})
		if err != nil {
			return nil, err
		}

		asm := codegen.NewAssembler(gen, p.logger)
		namespaces, err := asm.Assemble(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lang, err)
		}
		outputs = append(outputs, languageOutput{language: lang, namespaces: namespaces})
	}

	result := &Result{Document: doc}
	for _, out := range outputs {
		for _, ns := range out.namespaces {
			target := filepath.Join(p.outputRoot(), out.language, ns.File.Path)
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(target, ns.File.Content, 0644); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", target, err)
			}

			p.logger.Debug().
				Str("language", out.language).
				Str("namespace", ns.Name).
				Str("path", target).
				Msg("wrote generated file")

			result.Artifacts = append(result.Artifacts, Artifact{
				Language:  out.language,
				Namespace: ns.Name,
				Path:      target,
				Size:      len(ns.File.Content),
			})
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (p *Pipeline) schemaPath() string {
	if filepath.IsAbs(p.config.Schema) {
		return p.config.Schema
	}
	return filepath.Join(p.projectRoot, p.config.Schema)
}

func (p *Pipeline) outputRoot() string {
	if filepath.IsAbs(p.config.Output) {
		return p.config.Output
	}
	return filepath.Join(p.projectRoot, p.config.Output)
}

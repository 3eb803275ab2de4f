package codegen

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/MolecularSadism/enumgen/internal/schema"
)

// GeneratedFile is one output file, with a path relative to the output root
type GeneratedFile struct {
	Path    string
	Content []byte
}

// Namespace is the emitted unit for one declaration: the namespace name and
// the file holding every generated record. Immutable once assembled.
type Namespace struct {
	Name        string
	Declaration *schema.Declaration
	File        GeneratedFile
}

// Assembler runs one compilation unit's generation: validate, then expand
// each declaration into a namespace through a backend. It owns the
// namespace-collision state, scoped to the assembler's lifetime rather than
// any process-wide singleton.
type Assembler struct {
	generator Generator
	logger    zerolog.Logger

	// seen maps emitted namespace names to the declaration that produced
	// them, across every Assemble call on this assembler.
	seen map[string]string
}

// NewAssembler creates an assembler for one build invocation
func NewAssembler(g Generator, logger zerolog.Logger) *Assembler {
	return &Assembler{
		generator: g,
		logger:    logger,
		seen:      make(map[string]string),
	}
}

// Assemble validates the document and produces one namespace per declaration,
// in declaration order. Any failure aborts the whole invocation: no partial
// or degraded output is ever returned.
func (a *Assembler) Assemble(doc *schema.Document) ([]Namespace, error) {
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}

	// Names are staged per invocation and merged into seen only once the
	// whole document succeeds, so a failed run leaves no trace behind.
	staged := make(map[string]string)
	namespaces := make([]Namespace, 0, len(doc.Declarations))
	for i := range doc.Declarations {
		decl := &doc.Declarations[i]
		name := NamespaceName(decl.Name)

		prior, exists := a.seen[name]
		if !exists {
			prior, exists = staged[name]
		}
		if exists {
			return nil, schema.NewViolationError(schema.Violation{
				Code:        schema.CodeNamespaceCollision,
				Declaration: decl.Name,
				Message:     fmt.Sprintf("namespace %s already emitted for declaration %s", name, prior),
			})
		}

		content, err := a.generator.Generate(decl)
		if err != nil {
			return nil, fmt.Errorf("declaration %s: %w", decl.Name, err)
		}

		staged[name] = decl.Name
		a.logger.Debug().
			Str("declaration", decl.Name).
			Str("namespace", name).
			Int("variants", len(decl.Variants)).
			Msg("assembled namespace")

		namespaces = append(namespaces, Namespace{
			Name:        name,
			Declaration: decl,
			File: GeneratedFile{
				Path:    filepath.Join(name, name+a.generator.FileExtension()),
				Content: content,
			},
		})
	}

	for name, declName := range staged {
		a.seen[name] = declName
	}
	return namespaces, nil
}

package codegen

import (
	"github.com/MolecularSadism/enumgen/internal/codegen/golang"
	"github.com/MolecularSadism/enumgen/internal/codegen/names"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// Generator is the interface that all target-language backends must implement.
// Generation is a pure function of one declaration: the same input always
// yields the same bytes, and a failed declaration yields no output at all.
type Generator interface {
	// Generate expands one validated sum-type declaration into the full
	// source of its namespace and returns it as bytes.
	Generate(decl *schema.Declaration) ([]byte, error)

	// Language returns the name of the target language (e.g., "go", "rust")
	Language() string

	// FileExtension returns the file extension for generated files (e.g., ".go", ".rs")
	FileExtension() string
}

// Options contains common options for code generation
type Options struct {
	// RuntimeImport is the import path of the host framework package the
	// generated records plug into.
	RuntimeImport string

	// ImplicitDeref enables the single-field convention: a one-field variant
	// gets the deref projection even without an explicit @deref marker.
	ImplicitDeref bool

	// IncludeComments determines whether to carry declaration documentation
	// into the generated output.
	IncludeComments bool
}

// DefaultRuntimeImport is the host runtime shipped with this repository
const DefaultRuntimeImport = golang.DefaultRuntimeImport

// NamespaceName converts a declaration name into its generated namespace
// name. The conversion is a pure function: GlobalGameEvent yields
// global_game_event, HTTPError yields http_error.
func NamespaceName(declName string) string {
	return names.Snake(declName)
}

// Package rust emits Rust source for sum-type declarations: one public
// module per declaration, one struct per variant, with bevy-style capability
// derives, forwarded value semantics, and Deref/DerefMut projections.
// Unlike the Go backend, lifetimes survive into output here.
package rust

import (
	"fmt"
	"strings"

	"github.com/MolecularSadism/enumgen/internal/codegen/names"
	"github.com/MolecularSadism/enumgen/internal/codegen/writer"
	"github.com/MolecularSadism/enumgen/internal/projection"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// Options configures the Rust backend
type Options struct {
	ImplicitDeref   bool
	IncludeComments bool
}

// Generator generates Rust code from a sum-type declaration
type Generator struct {
	opts Options
}

// NewGenerator creates a new Rust code generator
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "rust"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".rs"
}

// Generate expands one declaration into a Rust module, records in variant
// declaration order.
func (g *Generator) Generate(decl *schema.Declaration) ([]byte, error) {
	if decl.Kind() == schema.KindMessage && !decl.Derives.Clone {
		return nil, schema.NewViolationError(schema.Violation{
			Code:        schema.CodeMissingRequiredSemantics,
			Declaration: decl.Name,
			Message:     "@message requires clone in the declaration's @derive set",
		})
	}

	params := make([]projection.ParamSet, len(decl.Variants))
	for i := range decl.Variants {
		set, err := projection.Project(decl, &decl.Variants[i])
		if err != nil {
			return nil, err
		}
		params[i] = set
	}

	if violations := g.checkSemantics(decl); len(violations) > 0 {
		return nil, &schema.ValidationError{Violations: violations}
	}

	w := writer.New("    ")
	w.Linef("// Code generated by enumgen from %s. DO NOT EDIT.", decl.Name)
	w.Blank()
	if g.opts.IncludeComments && decl.Doc != "" {
		w.Doc("///", decl.Doc)
	}
	w.Block(fmt.Sprintf("pub mod %s {", names.Snake(decl.Name)), "}", func() {
		w.Line("use super::*;")
		for i := range decl.Variants {
			w.Blank()
			g.generateRecord(w, decl, &decl.Variants[i], params[i])
		}
	})

	return w.Bytes(), nil
}

// generateRecord emits one variant's struct with its derives, capability
// attributes, and deref projection.
func (g *Generator) generateRecord(w *writer.Writer, decl *schema.Declaration, v *schema.Variant, params projection.ParamSet) {
	if g.opts.IncludeComments && v.Doc != "" {
		w.Doc("///", v.Doc)
	}

	w.Linef("#[derive(%s)]", strings.Join(g.derives(decl), ", "))
	if attrs := g.propagationAttrs(decl); attrs != "" {
		w.Linef("#[entity_event(%s)]", attrs)
	}

	name := v.Name + g.paramDecl(params)
	switch v.Shape {
	case schema.ShapeEmpty:
		w.Linef("pub struct %s;", name)
	case schema.ShapePositional:
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = "pub " + g.rustType(f.Type, f.Required)
		}
		w.Linef("pub struct %s(%s);", name, strings.Join(fields, ", "))
	default:
		w.Block(fmt.Sprintf("pub struct %s {", name), "}", func() {
			for _, f := range v.Fields {
				if g.opts.IncludeComments && f.Doc != "" {
					w.Doc("///", f.Doc)
				}
				w.Linef("pub %s: %s,", f.Name, g.rustType(f.Type, f.Required))
			}
		})
	}

	if f, ok := v.DerefField(g.opts.ImplicitDeref); ok {
		g.generateDeref(w, v, f, params)
	}
}

// derives maps the declaration's kind and value-semantics requests onto the
// derive list every record carries.
func (g *Generator) derives(decl *schema.Declaration) []string {
	var out []string
	switch decl.Kind() {
	case schema.KindEvent:
		out = append(out, "Event")
	case schema.KindMessage:
		out = append(out, "Message")
	case schema.KindEntityEvent:
		out = append(out, "EntityEvent")
	}
	if decl.Derives.Clone {
		out = append(out, "Clone")
	}
	if decl.Derives.Copy {
		out = append(out, "Copy")
	}
	if decl.Derives.Equality {
		out = append(out, "PartialEq")
	}
	if decl.Derives.Debug {
		out = append(out, "Debug")
	}
	if decl.Derives.Default {
		out = append(out, "Default")
	}
	return out
}

// propagationAttrs renders the entity_event attribute arguments for the two
// independent propagation bits.
func (g *Generator) propagationAttrs(decl *schema.Declaration) string {
	if decl.Kind() != schema.KindEntityEvent {
		return ""
	}
	var parts []string
	if decl.Propagate || decl.AutoPropagate {
		parts = append(parts, "propagate")
	}
	if decl.AutoPropagate {
		parts = append(parts, "auto_propagate")
	}
	return strings.Join(parts, ", ")
}

// generateDeref emits Deref and DerefMut with the marked field as target
func (g *Generator) generateDeref(w *writer.Writer, v *schema.Variant, f *schema.Field, params projection.ParamSet) {
	target := g.rustType(f.Type, f.Required)
	implParams := g.paramDecl(params)
	selfType := v.Name + g.paramUse(params)
	access := f.Name

	w.Blank()
	w.Block(fmt.Sprintf("impl%s std::ops::Deref for %s {", implParams, selfType), "}", func() {
		w.Linef("type Target = %s;", target)
		w.Blank()
		w.Block("fn deref(&self) -> &Self::Target {", "}", func() {
			w.Linef("&self.%s", access)
		})
	})
	w.Blank()
	w.Block(fmt.Sprintf("impl%s std::ops::DerefMut for %s {", implParams, selfType), "}", func() {
		w.Block("fn deref_mut(&mut self) -> &mut Self::Target {", "}", func() {
			w.Linef("&mut self.%s", access)
		})
	})
}

// checkSemantics applies Rust's derivability rules: Copy cannot be derived
// for records owning heap data; opaque generic applications have no
// derivable comparison.
func (g *Generator) checkSemantics(decl *schema.Declaration) []schema.Violation {
	var violations []schema.Violation
	for i := range decl.Variants {
		v := &decl.Variants[i]
		for j := range v.Fields {
			f := &v.Fields[j]
			if decl.Derives.Copy && ownsHeapData(f.Type) {
				violations = append(violations, schema.Violation{
					Code:        schema.CodeUnsatisfiableSemantics,
					Declaration: decl.Name,
					Variant:     v.Name,
					Field:       f.Name,
					Message:     fmt.Sprintf("copy requested but field type %s owns heap data", f.Type),
				})
			}
			if decl.Derives.Equality && opaqueGeneric(f.Type) {
				violations = append(violations, schema.Violation{
					Code:        schema.CodeUnsatisfiableSemantics,
					Declaration: decl.Name,
					Variant:     v.Name,
					Field:       f.Name,
					Message:     fmt.Sprintf("equality requested but %s has no derivable comparison", f.Type),
				})
			}
		}
	}
	return violations
}

func ownsHeapData(t *schema.TypeRef) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case schema.TypeBorrow:
		// Borrows are Copy regardless of what they point at.
		return false
	case schema.TypeList:
		return true
	default:
		if len(t.Args) > 0 {
			return true
		}
		return t.Name == "String" || t.Name == "ID"
	}
}

func opaqueGeneric(t *schema.TypeRef) bool {
	opaque := false
	t.Walk(func(n *schema.TypeRef) {
		if n.Kind == schema.TypeNamed && len(n.Args) > 0 {
			opaque = true
		}
	})
	return opaque
}

// paramDecl renders the declaration form of a projected parameter list with
// bounds, lifetimes first: <'a, T: Clone + Debug>
func (g *Generator) paramDecl(params projection.ParamSet) string {
	if params.Empty() {
		return ""
	}
	var parts []string
	for _, lt := range params.Lifetimes {
		parts = append(parts, "'"+lt.Name)
	}
	for _, tp := range params.TypeParams {
		if tp.Bounds != "" {
			parts = append(parts, tp.Name+": "+tp.Bounds)
		} else {
			parts = append(parts, tp.Name)
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// paramUse renders the use form of a projected parameter list: <'a, T>
func (g *Generator) paramUse(params projection.ParamSet) string {
	if params.Empty() {
		return ""
	}
	var parts []string
	for _, lt := range params.Lifetimes {
		parts = append(parts, "'"+lt.Name)
	}
	for _, tp := range params.TypeParams {
		parts = append(parts, tp.Name)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// rustType maps a type reference onto Rust syntax
func (g *Generator) rustType(t *schema.TypeRef, required bool) string {
	if !required {
		return "Option<" + g.rustType(t, true) + ">"
	}
	switch t.Kind {
	case schema.TypeList:
		return "Vec<" + g.rustType(t.Elem, true) + ">"
	case schema.TypeBorrow:
		if t.Lifetime != "" {
			return "&'" + t.Lifetime + " " + g.rustType(t.Elem, true)
		}
		return "&" + g.rustType(t.Elem, true)
	}

	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = g.rustType(a, true)
		}
		return t.Name + "<" + strings.Join(args, ", ") + ">"
	}

	switch t.Name {
	case "Bool", "Boolean":
		return "bool"
	case "Int":
		return "i32"
	case "Int8":
		return "i8"
	case "Int16":
		return "i16"
	case "Int32":
		return "i32"
	case "Int64":
		return "i64"
	case "UInt":
		return "u32"
	case "UInt8":
		return "u8"
	case "UInt16":
		return "u16"
	case "UInt32":
		return "u32"
	case "UInt64":
		return "u64"
	case "Float32":
		return "f32"
	case "Float64", "Float":
		return "f64"
	case "String", "ID":
		return "String"
	case "Byte":
		return "u8"
	default:
		return t.Name
	}
}

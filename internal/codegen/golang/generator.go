// Package golang emits Go source for sum-type declarations: one package per
// declaration, one record type per variant, plus the capability and
// value-semantics methods the host framework expects.
package golang

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/MolecularSadism/enumgen/internal/codegen/names"
	"github.com/MolecularSadism/enumgen/internal/codegen/writer"
	"github.com/MolecularSadism/enumgen/internal/projection"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// DefaultRuntimeImport is the host runtime shipped with this repository
const DefaultRuntimeImport = "github.com/MolecularSadism/enumgen/ecs"

// Options configures the Go backend
type Options struct {
	// RuntimeImport is the import path of the host framework package
	RuntimeImport string

	// ImplicitDeref applies the single-field deref convention without an
	// explicit marker
	ImplicitDeref bool

	// IncludeComments carries declaration documentation into output
	IncludeComments bool
}

// Generator generates Go code from a sum-type declaration
type Generator struct {
	opts    Options
	alias   string // selector for the runtime import
	imports map[string]bool
}

// NewGenerator creates a new Go code generator
func NewGenerator(opts Options) *Generator {
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}
	return &Generator{
		opts:  opts,
		alias: path.Base(opts.RuntimeImport),
	}
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "go"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".go"
}

// Generate expands one declaration into a complete Go package. The record
// order matches the variant declaration order exactly.
func (g *Generator) Generate(decl *schema.Declaration) ([]byte, error) {
	kind := decl.Kind()

	// Buffered messages move between buffer generations by copying; the
	// declaration must have asked for clonability.
	if kind == schema.KindMessage && !decl.Derives.Clone {
		return nil, schema.NewViolationError(schema.Violation{
			Code:        schema.CodeMissingRequiredSemantics,
			Declaration: decl.Name,
			Message:     "@message requires clone in the declaration's @derive set",
		})
	}

	// Project parameters for every variant before emitting anything, so a
	// failed declaration produces no output at all.
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

	g.imports = make(map[string]bool)
	body := writer.New("\t")
	for i := range decl.Variants {
		if i > 0 {
			body.Blank()
		}
		g.generateRecord(body, decl, &decl.Variants[i], params[i])
	}

	ns := names.Snake(decl.Name)
	w := writer.New("\t")
	w.Linef("// Code generated by enumgen from %s. DO NOT EDIT.", decl.Name)
	w.Blank()
	if g.opts.IncludeComments && decl.Doc != "" {
		w.Doc("//", decl.Doc)
	}
	w.Linef("// Package %s holds the record types expanded from the %s declaration.", ns, decl.Name)
	w.Linef("package %s", ns)
	w.Blank()
	g.writeImports(w)
	w.Raw(body.String())

	return w.Bytes(), nil
}

// writeImports emits the collected import block in deterministic order,
// standard library first.
func (g *Generator) writeImports(w *writer.Writer) {
	if len(g.imports) == 0 {
		return
	}
	var std, ext []string
	for imp := range g.imports {
		if strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
			ext = append(ext, imp)
		} else {
			std = append(std, imp)
		}
	}
	sort.Strings(std)
	sort.Strings(ext)

	w.Block("import (", ")", func() {
		for _, imp := range std {
			w.Linef("%q", imp)
		}
		if len(std) > 0 && len(ext) > 0 {
			w.Blank()
		}
		for _, imp := range ext {
			w.Linef("%q", imp)
		}
	})
	w.Blank()
}

// generateRecord emits one variant's record type with its capability
// implementation, forwarded value semantics, and deref projection.
func (g *Generator) generateRecord(w *writer.Writer, decl *schema.Declaration, v *schema.Variant, params projection.ParamSet) {
	if g.opts.IncludeComments && v.Doc != "" {
		w.Doc("//", v.Doc)
	} else if v.Shape == schema.ShapeEmpty {
		w.Linef("// %s is the zero-size record for the %s variant of %s.", v.Name, v.Name, decl.Name)
	} else {
		w.Linef("// %s is the record for the %s variant of %s.", v.Name, v.Name, decl.Name)
	}

	declSuffix := g.typeParamDecl(decl, params)
	useSuffix := g.typeParamUse(params)
	self := v.Name + useSuffix

	if v.Shape == schema.ShapeEmpty {
		w.Linef("type %s%s struct{}", v.Name, declSuffix)
	} else {
		w.Block(fmt.Sprintf("type %s%s struct {", v.Name, declSuffix), "}", func() {
			for _, f := range v.Fields {
				if g.opts.IncludeComments && f.Doc != "" {
					w.Doc("//", f.Doc)
				}
				w.Linef("%s %s `json:%q`", names.Exported(f.Name), g.goType(f.Type, f.Required), f.Name)
			}
		})
	}

	g.generateCapability(w, decl, v, self)

	if decl.Derives.Clone {
		g.generateClone(w, v, self)
	}
	if decl.Derives.Copy {
		w.Blank()
		w.Linef("// Copy returns the record by value.")
		w.Linef("func (r %s) Copy() %s { return r }", self, self)
	}
	if decl.Derives.Equality {
		g.generateEqual(w, v, self)
	}
	if decl.Derives.Debug {
		g.generateString(w, v, self)
	}

	if f, ok := v.DerefField(g.opts.ImplicitDeref); ok {
		w.Blank()
		w.Linef("// Deref gives transparent access to the %s field.", f.Name)
		w.Block(fmt.Sprintf("func (r *%s) Deref() *%s {", self, g.goType(f.Type, f.Required)), "}", func() {
			w.Linef("return &r.%s", names.Exported(f.Name))
		})
	}
}

// generateCapability attaches the capability implementation selected by the
// declaration's kind, plus a compile-time interface assertion.
func (g *Generator) generateCapability(w *writer.Writer, decl *schema.Declaration, v *schema.Variant, self string) {
	g.imports[g.opts.RuntimeImport] = true
	assertSelf := v.Name + g.typeParamAssert(decl, v)

	w.Blank()
	switch decl.Kind() {
	case schema.KindEvent:
		w.Linef("// ObservableEvent marks %s as deliverable to globally registered observers.", v.Name)
		w.Linef("func (%s) ObservableEvent() {}", self)
		w.Blank()
		w.Linef("var _ %s.Event = %s{}", g.alias, assertSelf)

	case schema.KindMessage:
		w.Linef("// BufferedMessage marks %s as eligible for double-buffered queue storage.", v.Name)
		w.Linef("func (%s) BufferedMessage() {}", self)
		w.Blank()
		w.Linef("var _ %s.Message = %s{}", g.alias, assertSelf)

	case schema.KindEntityEvent:
		target, _ := v.EntityTargetField()
		w.Linef("// ObservableEvent marks %s as deliverable to globally registered observers.", v.Name)
		w.Linef("func (%s) ObservableEvent() {}", self)
		w.Blank()
		w.Linef("// EventTarget returns the entity handle the event is addressed to.")
		w.Linef("func (r %s) EventTarget() %s.Entity { return r.%s }", self, g.alias, names.Exported(target.Name))
		w.Blank()
		w.Linef("// Propagation reports how the host framework redelivers the event along")
		w.Linef("// the parent relation after the targeted entity's observers run.")
		w.Block(fmt.Sprintf("func (%s) Propagation() %s.Propagation {", self, g.alias), "}", func() {
			w.Linef("return %s.Propagation{Auto: %t, Available: %t}", g.alias, decl.AutoPropagate, decl.AutoPropagate || decl.Propagate)
		})
		w.Blank()
		w.Linef("var _ %s.EntityEvent = %s{}", g.alias, assertSelf)
	}
}

// generateClone emits a deep copy. Struct assignment covers every field that
// owns no heap data; list and optional fields get explicit copies.
func (g *Generator) generateClone(w *writer.Writer, v *schema.Variant, self string) {
	w.Blank()
	w.Linef("// Clone returns a deep copy of the record.")
	w.Block(fmt.Sprintf("func (r %s) Clone() %s {", self, self), "}", func() {
		w.Line("out := r")
		for _, f := range v.Fields {
			g.emitCloneField(w, f)
		}
		w.Line("return out")
	})
}

func (g *Generator) emitCloneField(w *writer.Writer, f schema.Field) {
	name := names.Exported(f.Name)
	if !f.Required {
		w.Block(fmt.Sprintf("if r.%s != nil {", name), "}", func() {
			if f.Type.Kind == schema.TypeList {
				w.Linef("v := %s", g.cloneListExpr("(*r."+name+")", f.Type, 0, w))
				w.Linef("out.%s = &v", name)
			} else {
				w.Linef("v := *r.%s", name)
				w.Linef("out.%s = &v", name)
			}
		})
		return
	}
	if f.Type.Kind == schema.TypeList {
		w.Linef("out.%s = %s", name, g.cloneListExpr("r."+name, f.Type, 0, w))
	}
}

// cloneListExpr renders a deep-copy expression for a list. One-level lists
// copy with append; nested lists emit an element loop ahead of the returned
// expression via a helper variable.
func (g *Generator) cloneListExpr(src string, t *schema.TypeRef, depth int, w *writer.Writer) string {
	elemType := g.goType(t.Elem, true)
	if t.Elem.Kind != schema.TypeList {
		return fmt.Sprintf("append([]%s(nil), %s...)", elemType, src)
	}
	tmp := fmt.Sprintf("c%d", depth)
	idx := fmt.Sprintf("i%d", depth)
	w.Linef("%s := make([]%s, len(%s))", tmp, elemType, src)
	w.Block(fmt.Sprintf("for %s := range %s {", idx, src), "}", func() {
		w.Linef("%s[%s] = %s", tmp, idx, g.cloneListExpr(src+"["+idx+"]", t.Elem, depth+1, w))
	})
	return tmp
}

// generateEqual emits field-wise equality with the record's declared field
// order.
func (g *Generator) generateEqual(w *writer.Writer, v *schema.Variant, self string) {
	w.Blank()
	w.Linef("// Equal reports whether two records carry equal field values.")
	w.Block(fmt.Sprintf("func (r %s) Equal(other %s) bool {", self, self), "}", func() {
		for _, f := range v.Fields {
			g.emitEqualField(w, f)
		}
		w.Line("return true")
	})
}

func (g *Generator) emitEqualField(w *writer.Writer, f schema.Field) {
	name := names.Exported(f.Name)
	lhs, rhs := "r."+name, "other."+name
	if !f.Required {
		w.Linef("if (%s == nil) != (%s == nil) {", lhs, rhs)
		w.In()
		w.Line("return false")
		w.Out()
		w.Line("}")
		w.Block(fmt.Sprintf("if %s != nil {", lhs), "}", func() {
			g.emitEqualValue(w, "(*"+lhs+")", "(*"+rhs+")", f.Type, 0)
		})
		return
	}
	g.emitEqualValue(w, lhs, rhs, f.Type, 0)
}

func (g *Generator) emitEqualValue(w *writer.Writer, lhs, rhs string, t *schema.TypeRef, depth int) {
	switch t.Kind {
	case schema.TypeList:
		idx := fmt.Sprintf("i%d", depth)
		w.Linef("if len(%s) != len(%s) {", lhs, rhs)
		w.In()
		w.Line("return false")
		w.Out()
		w.Line("}")
		w.Block(fmt.Sprintf("for %s := range %s {", idx, lhs), "}", func() {
			g.emitEqualValue(w, lhs+"["+idx+"]", rhs+"["+idx+"]", t.Elem, depth+1)
		})
	case schema.TypeBorrow:
		g.emitEqualValue(w, "(*"+lhs+")", "(*"+rhs+")", t.Elem, depth)
	default:
		w.Linef("if %s != %s {", lhs, rhs)
		w.In()
		w.Line("return false")
		w.Out()
		w.Line("}")
	}
}

// generateString emits a fmt.Stringer with the record's declared field names
// and order, in the shape the variant was declared with.
func (g *Generator) generateString(w *writer.Writer, v *schema.Variant, self string) {
	w.Blank()
	w.Linef("// String renders the record with its declared field names.")
	w.Block(fmt.Sprintf("func (r %s) String() string {", self), "}", func() {
		switch v.Shape {
		case schema.ShapeEmpty:
			w.Linef("return %q", v.Name)
		case schema.ShapePositional:
			g.imports["fmt"] = true
			verbs := make([]string, len(v.Fields))
			args := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				verbs[i] = "%v"
				args[i] = g.stringArg(w, i, f)
			}
			w.Linef("return fmt.Sprintf(%q, %s)", v.Name+"("+strings.Join(verbs, ", ")+")", strings.Join(args, ", "))
		default:
			g.imports["fmt"] = true
			parts := make([]string, len(v.Fields))
			args := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				parts[i] = f.Name + ": %v"
				args[i] = g.stringArg(w, i, f)
			}
			w.Linef("return fmt.Sprintf(%q, %s)", v.Name+"{"+strings.Join(parts, ", ")+"}", strings.Join(args, ", "))
		}
	})
}

// stringArg returns the Sprintf argument for one field. Optional fields
// print their value through a nil guard rather than the pointer itself.
func (g *Generator) stringArg(w *writer.Writer, i int, f schema.Field) string {
	name := names.Exported(f.Name)
	if f.Required {
		return "r." + name
	}
	local := fmt.Sprintf("v%d", i)
	w.Linef("%s := %q", local, "nil")
	w.Block(fmt.Sprintf("if r.%s != nil {", name), "}", func() {
		w.Linef("%s = fmt.Sprint(*r.%s)", local, name)
	})
	return local
}

// checkSemantics pre-scans every record for behaviors that cannot be
// mechanically derived from its field shape, reporting per record and per
// behavior before any output is produced.
func (g *Generator) checkSemantics(decl *schema.Declaration) []schema.Violation {
	var violations []schema.Violation
	for i := range decl.Variants {
		v := &decl.Variants[i]
		for j := range v.Fields {
			f := &v.Fields[j]
			if decl.Derives.Copy && ownsHeapData(f) {
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

// ownsHeapData reports whether copying the field by assignment would alias
// or duplicate owned storage, which breaks bitwise-copy semantics.
func ownsHeapData(f *schema.Field) bool {
	if !f.Required {
		return true
	}
	return typeOwnsHeap(f.Type)
}

func typeOwnsHeap(t *schema.TypeRef) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case schema.TypeBorrow:
		// A borrow's aliasing is its semantic; copying one is fine.
		return false
	case schema.TypeList:
		return true
	default:
		return len(t.Args) > 0
	}
}

// opaqueGeneric reports whether the type contains a generic application of
// an unknown base type, for which no comparison can be derived.
func opaqueGeneric(t *schema.TypeRef) bool {
	opaque := false
	t.Walk(func(n *schema.TypeRef) {
		if n.Kind == schema.TypeNamed && len(n.Args) > 0 {
			opaque = true
		}
	})
	return opaque
}

// typeParamDecl renders the declaration form of a projected parameter list,
// e.g. [T any]. Lifetimes are erased in Go output.
func (g *Generator) typeParamDecl(decl *schema.Declaration, params projection.ParamSet) string {
	if len(params.TypeParams) == 0 {
		return ""
	}
	constraint := "any"
	if decl.Derives.Equality {
		constraint = "comparable"
	}
	parts := make([]string, len(params.TypeParams))
	for i, tp := range params.TypeParams {
		parts[i] = tp.Name + " " + constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// typeParamUse renders the use form of a projected parameter list, e.g. [T]
func (g *Generator) typeParamUse(params projection.ParamSet) string {
	if len(params.TypeParams) == 0 {
		return ""
	}
	parts := make([]string, len(params.TypeParams))
	for i, tp := range params.TypeParams {
		parts[i] = tp.Name
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// typeParamAssert renders an instantiated form usable in a compile-time
// interface assertion, filling every parameter with struct{}.
func (g *Generator) typeParamAssert(decl *schema.Declaration, v *schema.Variant) string {
	set, err := projection.Project(decl, v)
	if err != nil || len(set.TypeParams) == 0 {
		return ""
	}
	parts := make([]string, len(set.TypeParams))
	for i := range set.TypeParams {
		parts[i] = "struct{}"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// goType maps a type reference onto Go syntax. Borrows erase their lifetime
// into a plain pointer; optional fields wrap in a pointer as well.
func (g *Generator) goType(t *schema.TypeRef, required bool) string {
	if !required {
		return "*" + g.goType(t, true)
	}
	switch t.Kind {
	case schema.TypeList:
		return "[]" + g.goType(t.Elem, true)
	case schema.TypeBorrow:
		return "*" + g.goType(t.Elem, true)
	}

	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = g.goType(a, true)
		}
		return t.Name + "[" + strings.Join(args, ", ") + "]"
	}

	switch t.Name {
	case "Bool", "Boolean":
		return "bool"
	case "Int":
		return "int"
	case "Int8":
		return "int8"
	case "Int16":
		return "int16"
	case "Int32":
		return "int32"
	case "Int64":
		return "int64"
	case "UInt":
		return "uint"
	case "UInt8":
		return "uint8"
	case "UInt16":
		return "uint16"
	case "UInt32":
		return "uint32"
	case "UInt64":
		return "uint64"
	case "Float32":
		return "float32"
	case "Float64", "Float":
		return "float64"
	case "String", "ID":
		return "string"
	case "Byte":
		return "byte"
	case "Time":
		g.imports["time"] = true
		return "time.Time"
	case schema.EntityTypeName:
		g.imports[g.opts.RuntimeImport] = true
		return g.alias + ".Entity"
	default:
		return t.Name
	}
}

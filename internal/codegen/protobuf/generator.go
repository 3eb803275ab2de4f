// Package protobuf generates proto3 definitions for event declarations so
// buffered messages can cross process boundaries with a stable wire format.
// Each variant becomes its own message; the declaration itself becomes a
// wrapper message holding a oneof over the variants.
package protobuf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/MolecularSadism/enumgen/internal/codegen/names"
	"github.com/MolecularSadism/enumgen/internal/schema"
)

// Options configures the protobuf generator.
type Options struct {
	// GoPackagePrefix is joined with the declaration namespace to form the
	// go_package option of each emitted file.
	GoPackagePrefix string

	IncludeComments bool
}

// Generator generates proto3 definitions from event declarations.
type Generator struct {
	opts Options
}

// NewGenerator creates a new protobuf generator.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Language returns the identifier used to select this backend.
func (g *Generator) Language() string {
	return "proto"
}

// FileExtension returns the extension for generated files.
func (g *Generator) FileExtension() string {
	return ".proto"
}

// Generate creates a proto3 file for a single declaration.
//
// Declarations that carry type parameters, lifetimes, or borrow-typed fields
// have no wire representation and are rejected.
func (g *Generator) Generate(decl *schema.Declaration) ([]byte, error) {
	if len(decl.TypeParams) > 0 || len(decl.Lifetimes) > 0 {
		return nil, fmt.Errorf("declaration %s: generic declarations have no proto3 representation", decl.Name)
	}

	pkg := names.Snake(decl.Name)

	var buf bytes.Buffer
	buf.WriteString("syntax = \"proto3\";\n\n")
	buf.WriteString(fmt.Sprintf("package %s;\n\n", pkg))
	if g.opts.GoPackagePrefix != "" {
		buf.WriteString(fmt.Sprintf("option go_package = %q;\n\n", g.opts.GoPackagePrefix+"/"+pkg))
	}

	if declUsesTime(decl) {
		buf.WriteString("import \"google/protobuf/timestamp.proto\";\n\n")
	}

	for _, v := range decl.Variants {
		if err := g.generateVariant(&buf, decl, &v); err != nil {
			return nil, err
		}
	}
	g.generateWrapper(&buf, decl)

	return buf.Bytes(), nil
}

// generateVariant generates one message per variant record.
func (g *Generator) generateVariant(buf *bytes.Buffer, decl *schema.Declaration, v *schema.Variant) error {
	if g.opts.IncludeComments && v.Doc != "" {
		writeComment(buf, "", v.Doc)
	}
	buf.WriteString(fmt.Sprintf("message %s {\n", v.Name))

	for i, field := range v.Fields {
		if g.opts.IncludeComments && field.Doc != "" {
			writeComment(buf, "  ", field.Doc)
		}

		protoType, repeated, err := g.protoType(field.Type)
		if err != nil {
			return fmt.Errorf("declaration %s, variant %s, field %s: %w", decl.Name, v.Name, field.Name, err)
		}

		name := protoFieldName(field.Name)
		num := i + 1
		switch {
		case repeated:
			buf.WriteString(fmt.Sprintf("  repeated %s %s = %d;\n", protoType, name, num))
		case !field.Required:
			buf.WriteString(fmt.Sprintf("  optional %s %s = %d;\n", protoType, name, num))
		default:
			buf.WriteString(fmt.Sprintf("  %s %s = %d;\n", protoType, name, num))
		}
	}
	buf.WriteString("}\n\n")
	return nil
}

// generateWrapper generates the oneof wrapper carrying exactly one variant.
func (g *Generator) generateWrapper(buf *bytes.Buffer, decl *schema.Declaration) {
	if g.opts.IncludeComments && decl.Doc != "" {
		writeComment(buf, "", decl.Doc)
	}
	buf.WriteString(fmt.Sprintf("message %s {\n", decl.Name))
	buf.WriteString("  oneof variant {\n")
	for i, v := range decl.Variants {
		buf.WriteString(fmt.Sprintf("    %s %s = %d;\n", v.Name, names.Snake(v.Name), i+1))
	}
	buf.WriteString("  }\n")
	buf.WriteString("}\n")
}

// protoType maps a field type to its proto3 spelling. The second result
// reports whether the field must be emitted as repeated.
func (g *Generator) protoType(t *schema.TypeRef) (string, bool, error) {
	switch t.Kind {
	case schema.TypeBorrow:
		return "", false, fmt.Errorf("borrow types have no proto3 representation")
	case schema.TypeList:
		// A list of bytes collapses to the bytes scalar.
		if t.Elem.Kind == schema.TypeNamed && t.Elem.Name == "Byte" && len(t.Elem.Args) == 0 {
			return "bytes", false, nil
		}
		if t.Elem.Kind == schema.TypeList {
			return "", false, fmt.Errorf("nested lists have no proto3 representation")
		}
		elem, _, err := g.protoType(t.Elem)
		if err != nil {
			return "", false, err
		}
		return elem, true, nil
	}

	if len(t.Args) > 0 {
		return "", false, fmt.Errorf("generic type %s has no proto3 representation", t.Name)
	}

	switch t.Name {
	case "Bool":
		return "bool", false, nil
	case "Int8", "Int16", "Int32":
		return "int32", false, nil
	case "Int64":
		return "int64", false, nil
	case "UInt8", "UInt16", "UInt32":
		return "uint32", false, nil
	case "UInt64", schema.EntityTypeName:
		return "uint64", false, nil
	case "Float":
		return "double", false, nil
	case "Byte":
		return "uint32", false, nil
	case "String", "ID":
		return "string", false, nil
	case "Time":
		return "google.protobuf.Timestamp", false, nil
	default:
		// Custom types remain as-is and must be defined elsewhere.
		return t.Name, false, nil
	}
}

// protoFieldName converts a field name to a valid proto3 identifier.
// Tuple-style names keep their index but lose the leading underscore,
// which proto3 identifiers may not start with.
func protoFieldName(name string) string {
	if strings.HasPrefix(name, "_") {
		return "f" + strings.TrimPrefix(name, "_")
	}
	return names.Snake(name)
}

// declUsesTime checks whether any field in the declaration uses the Time type.
func declUsesTime(decl *schema.Declaration) bool {
	found := false
	for _, v := range decl.Variants {
		for _, f := range v.Fields {
			f.Type.Walk(func(t *schema.TypeRef) {
				if t.Kind == schema.TypeNamed && t.Name == "Time" {
					found = true
				}
			})
		}
	}
	return found
}

func writeComment(buf *bytes.Buffer, indent, doc string) {
	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		buf.WriteString(fmt.Sprintf("%s// %s\n", indent, line))
	}
}

package schema

import (
	"fmt"
	"strings"

	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
)

// ParseDocument parses a declaration file (after preprocessing) into our
// Document model. One union (or enum-sugar block) becomes one Declaration.
func ParseDocument(input string) (*Document, error) {
	// First preprocess the input
	preprocessed := PreprocessDeclarations(input)

	// Parse the GraphQL document
	doc, report := astparser.ParseGraphqlDocumentString(preprocessed)
	if report.HasErrors() {
		return nil, fmt.Errorf("failed to parse declarations: %v", report)
	}

	out := &Document{
		Declarations: []Declaration{},
		Meta:         Metadata{},
	}

	// First pass: index object type definitions by name. Variant payload
	// types are consumed by the unions that reference them.
	objects := map[string]*objectInfo{}
	for i := range doc.RootNodes {
		node := &doc.RootNodes[i]
		if node.Kind != ast.NodeKindObjectTypeDefinition {
			continue
		}
		typeDef := doc.ObjectTypeDefinitions[node.Ref]
		typeName := doc.Input.ByteSliceString(typeDef.Name)

		if typeName == "_Schema" {
			parseFileMetadata(&doc, typeDef, out)
			continue
		}

		info, err := parseObjectInfo(&doc, typeDef)
		if err != nil {
			return nil, err
		}
		objects[typeName] = info
	}

	// Second pass: build declarations from unions, in source order.
	for i := range doc.RootNodes {
		node := &doc.RootNodes[i]
		if node.Kind != ast.NodeKindUnionTypeDefinition {
			continue
		}
		decl, err := parseDeclaration(&doc, node.Ref, objects)
		if err != nil {
			return nil, err
		}
		out.Declarations = append(out.Declarations, *decl)
	}

	return out, nil
}

// objectInfo is a parsed variant payload type awaiting attachment to a union.
type objectInfo struct {
	doc        string
	directives []directive
	fields     []Field
}

// directive is a parsed directive occurrence
type directive struct {
	name string
	args map[string]string
}

func parseFileMetadata(doc *ast.Document, typeDef ast.ObjectTypeDefinition, out *Document) {
	for _, fieldRef := range typeDef.FieldsDefinition.Refs {
		fieldDef := doc.FieldDefinitions[fieldRef]

		for _, directiveRef := range fieldDef.Directives.Refs {
			d := doc.Directives[directiveRef]
			if doc.Input.ByteSliceString(d.Name) == "enumgen" {
				args := parseDirectiveArgs(doc, d)
				out.Meta.Namespace = args["namespace"]
				out.Meta.Version = args["version"]
				return
			}
		}
	}
}

func parseObjectInfo(doc *ast.Document, typeDef ast.ObjectTypeDefinition) (*objectInfo, error) {
	info := &objectInfo{
		doc:        getDescription(doc, typeDef.Description),
		directives: parseDirectives(doc, typeDef.Directives),
	}

	for _, fieldRef := range typeDef.FieldsDefinition.Refs {
		field, err := parseField(doc, fieldRef)
		if err != nil {
			return nil, err
		}
		info.fields = append(info.fields, field)
	}

	return info, nil
}

func parseDeclaration(doc *ast.Document, ref int, objects map[string]*objectInfo) (*Declaration, error) {
	unionDef := doc.UnionTypeDefinitions[ref]
	name := doc.Input.ByteSliceString(unionDef.Name)

	decl := &Declaration{
		Name:     name,
		Doc:      getDescription(doc, unionDef.Description),
		Variants: []Variant{},
	}

	for _, d := range parseDirectives(doc, unionDef.Directives) {
		if err := applyDeclarationDirective(decl, d); err != nil {
			return nil, err
		}
	}

	// Union members become variants, in declaration order.
	for _, typeRef := range unionDef.UnionMemberTypes.Refs {
		memberName := doc.Input.ByteSliceString(doc.Types[typeRef].Name)
		variantName := strings.TrimPrefix(memberName, name+variantSeparator)

		info, ok := objects[memberName]
		if !ok {
			return nil, fmt.Errorf("declaration %s: variant %s has no type definition", name, variantName)
		}

		variant, err := buildVariant(name, variantName, info)
		if err != nil {
			return nil, err
		}
		decl.Variants = append(decl.Variants, *variant)
	}

	return decl, nil
}

// applyDeclarationDirective interprets one top-level modifier attribute.
// Unknown directives are rejected so typos fail loudly at parse time.
func applyDeclarationDirective(decl *Declaration, d directive) error {
	switch d.name {
	case "event":
		decl.Kinds = append(decl.Kinds, KindEvent)
	case "message":
		decl.Kinds = append(decl.Kinds, KindMessage)
	case "entityEvent":
		decl.Kinds = append(decl.Kinds, KindEntityEvent)
	case "autoPropagate":
		decl.AutoPropagate = true
	case "propagate":
		decl.Propagate = true
	case "derive":
		decl.Derives = DeriveSet{
			Clone:    d.args["clone"] == "true",
			Copy:     d.args["copy"] == "true",
			Equality: d.args["equality"] == "true",
			Debug:    d.args["debug"] == "true",
			Default:  d.args["default"] == "true",
		}
	case "typeParam":
		if d.args["name"] == "" {
			return fmt.Errorf("declaration %s: @typeParam requires a name argument", decl.Name)
		}
		decl.TypeParams = append(decl.TypeParams, TypeParam{
			Name:   d.args["name"],
			Bounds: d.args["bounds"],
		})
	case "lifetime":
		if d.args["name"] == "" {
			return fmt.Errorf("declaration %s: @lifetime requires a name argument", decl.Name)
		}
		decl.Lifetimes = append(decl.Lifetimes, Lifetime{Name: d.args["name"]})
	default:
		return fmt.Errorf("declaration %s: unknown directive @%s", decl.Name, d.name)
	}
	return nil
}

func buildVariant(declName, variantName string, info *objectInfo) (*Variant, error) {
	v := &Variant{
		Name:   variantName,
		Doc:    info.doc,
		Fields: info.fields,
	}

	for _, d := range info.directives {
		switch d.name {
		case "deref":
			v.DerefRequested = true
		default:
			return nil, fmt.Errorf("declaration %s: variant %s: unknown directive @%s", declName, variantName, d.name)
		}
	}

	v.Shape = detectShape(v.Fields)
	return v, nil
}

// detectShape classifies a field list: no fields is Empty, fields named
// _0.._k in order are Positional, anything else is Named.
func detectShape(fields []Field) Shape {
	if len(fields) == 0 {
		return ShapeEmpty
	}
	for i, f := range fields {
		if f.Name != fmt.Sprintf("_%d", i) {
			return ShapeNamed
		}
	}
	return ShapePositional
}

func parseField(doc *ast.Document, fieldRef int) (Field, error) {
	fieldDef := doc.FieldDefinitions[fieldRef]

	field := Field{
		Name: doc.Input.ByteSliceString(fieldDef.Name),
		Doc:  getDescription(doc, fieldDef.Description),
	}

	typeRef, required := typeRefFromAST(doc, fieldDef.Type)
	field.Type = typeRef
	field.Required = required

	for _, d := range parseDirectives(doc, fieldDef.Directives) {
		switch d.name {
		case "deref":
			field.Deref = true
		case "expr":
			text := strings.TrimSpace(d.args["value"])
			parsed, err := ParseTypeExpr(text)
			if err != nil {
				return field, fmt.Errorf("field %s: %w", field.Name, err)
			}
			field.Type = parsed
			// The placeholder is always non-null; the field's real
			// required flag is the marker in the carried expression.
			field.Required = strings.HasSuffix(text, "!")
		default:
			return field, fmt.Errorf("field %s: unknown directive @%s", field.Name, d.name)
		}
	}

	field.Type = field.Type.Normalize()
	return field, nil
}

// typeRefFromAST converts a GraphQL type node into a TypeRef, unwrapping one
// outer NonNull into the required flag.
func typeRefFromAST(doc *ast.Document, typeRef int) (*TypeRef, bool) {
	required := false
	currentRef := typeRef

	if doc.Types[currentRef].TypeKind == ast.TypeKindNonNull {
		required = true
		currentRef = doc.Types[currentRef].OfType
	}

	if doc.Types[currentRef].TypeKind == ast.TypeKindList {
		inner, _ := typeRefFromAST(doc, doc.Types[currentRef].OfType)
		return ListOf(inner), required
	}

	if doc.Types[currentRef].TypeKind == ast.TypeKindNamed {
		return Named(doc.Input.ByteSliceString(doc.Types[currentRef].Name)), required
	}

	return Named("Unknown"), required
}

func parseDirectives(doc *ast.Document, directives ast.DirectiveList) []directive {
	result := []directive{}

	for _, directiveRef := range directives.Refs {
		d := doc.Directives[directiveRef]

		result = append(result, directive{
			name: doc.Input.ByteSliceString(d.Name),
			args: parseDirectiveArgs(doc, d),
		})
	}

	return result
}

func parseDirectiveArgs(doc *ast.Document, d ast.Directive) map[string]string {
	args := make(map[string]string)

	for _, argRef := range d.Arguments.Refs {
		arg := doc.Arguments[argRef]
		argName := doc.Input.ByteSliceString(arg.Name)

		value := doc.ArgumentValue(argRef)
		args[argName] = parseValue(doc, value)
	}

	return args
}

func parseValue(doc *ast.Document, value ast.Value) string {
	switch value.Kind {
	case ast.ValueKindString:
		return doc.StringValueContentString(value.Ref)

	case ast.ValueKindEnum:
		if value.Ref >= 0 && value.Ref < len(doc.EnumValues) {
			return doc.Input.ByteSliceString(doc.EnumValues[value.Ref].Name)
		}

	case ast.ValueKindBoolean:
		if value.Ref >= 0 && value.Ref < len(doc.BooleanValues) {
			if doc.BooleanValues[value.Ref] {
				return "true"
			}
			return "false"
		}

	case ast.ValueKindInteger:
		return fmt.Sprintf("%d", doc.IntValueAsInt(value.Ref))

	case ast.ValueKindFloat:
		return fmt.Sprintf("%f", doc.FloatValueAsFloat32(value.Ref))
	}

	return ""
}

func getDescription(doc *ast.Document, desc ast.Description) string {
	if !desc.IsDefined {
		return ""
	}

	return doc.Input.ByteSliceString(desc.Content)
}

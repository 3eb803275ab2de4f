package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// enumgenDirectiveRegex matches @enumgen(...) at the start of a line.
var enumgenDirectiveRegex = regexp.MustCompile(`(?m)^@enumgen\s*\(((?:[^()]*|\([^)]*\))*)\)`)

// enumStartRegex matches sum-type declarations at the start of a line.
// Captures the declaration name and the directive text before the open brace.
var enumStartRegex = regexp.MustCompile(`(?m)^enum\s+(\w+)([^{]*)\{`)

// exprPlaceholder is the synthetic GraphQL type name that stands in for a
// type expression GraphQL syntax cannot spell. The real expression rides on
// an @expr directive and is re-parsed after the AST walk.
const exprPlaceholder = "_Expr"

// variantSeparator joins a declaration name and a variant name into the
// mangled object-type name used in preprocessed output, so variants of
// different declarations never collide at the GraphQL top level.
const variantSeparator = "__"

// PreprocessDeclarations rewrites `@enumgen(...)` and `enum` sum-type blocks
// into valid GraphQL definitions: one union per declaration plus one object
// type per variant. Input that is already plain SDL passes through untouched.
func PreprocessDeclarations(input string) string {
	// 1. Rewrite @enumgen(...) to a _Schema type with a properly typed field
	input = enumgenDirectiveRegex.ReplaceAllStringFunc(input, func(match string) string {
		args := enumgenDirectiveRegex.FindStringSubmatch(match)[1]
		return `type _Schema {
  _: String @enumgen(` + args + `)
}`
	})

	// 2. Rewrite enum blocks to union + variant type definitions
	for {
		loc := enumStartRegex.FindStringSubmatchIndex(input)
		if loc == nil {
			break
		}
		name := input[loc[2]:loc[3]]
		directives := strings.TrimSpace(input[loc[4]:loc[5]])

		bodyStart := loc[1] // just past the open brace
		bodyEnd, ok := matchBrace(input, bodyStart-1)
		if !ok {
			// Unbalanced braces; leave the text for the parser to reject.
			break
		}

		expanded := expandEnumBlock(name, directives, input[bodyStart:bodyEnd])
		input = input[:loc[0]] + expanded + input[bodyEnd+1:]
	}

	return input
}

// expandEnumBlock turns one enum body into a union definition followed by one
// object type definition per variant.
func expandEnumBlock(name, directives, body string) string {
	variants := scanVariants(body)

	var sb strings.Builder
	sb.WriteString("union " + name)
	if directives != "" {
		sb.WriteString(" " + directives)
	}
	if len(variants) > 0 {
		sb.WriteString(" =")
		for i, v := range variants {
			if i > 0 {
				sb.WriteString(" |")
			}
			sb.WriteString(" " + name + variantSeparator + v.name)
		}
	}
	sb.WriteString("\n")

	for _, v := range variants {
		sb.WriteString("\n")
		if v.doc != "" {
			sb.WriteString(`"""` + v.doc + `"""` + "\n")
		}
		sb.WriteString("type " + name + variantSeparator + v.name)
		if v.directives != "" {
			sb.WriteString(" " + v.directives)
		}
		if len(v.fields) > 0 {
			sb.WriteString(" {\n")
			for _, f := range v.fields {
				sb.WriteString("  " + f + "\n")
			}
			sb.WriteString("}")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// rawVariant is one variant scanned out of an enum body, with its fields
// already rewritten into GraphQL field-definition lines.
type rawVariant struct {
	name       string
	doc        string
	directives string
	fields     []string
}

// scanVariants walks an enum body and extracts each variant. A variant is an
// identifier optionally followed by a positional list `( ... )` or a named
// block `{ ... }`, then trailing directives.
func scanVariants(body string) []rawVariant {
	var variants []rawVariant
	s := &scanner{src: body}

	for {
		s.skip()
		doc := s.docstring()
		s.skip()
		name := s.ident()
		if name == "" {
			break
		}

		v := rawVariant{name: name, doc: doc}
		s.skip()

		switch {
		case s.peek() == '(':
			inner := s.balanced('(', ')')
			for i, arg := range splitTopLevel(inner) {
				typeText, dirs := splitFieldDirectives(arg)
				v.fields = append(v.fields, fieldDefinition(fmt.Sprintf("_%d", i), typeText, dirs))
			}
		case s.peek() == '{':
			inner := s.balanced('{', '}')
			v.fields = namedFields(inner)
		}

		s.skip()
		v.directives = s.directives()
		variants = append(variants, v)

		s.skip()
		if s.peek() == ',' {
			s.pos++
		}
	}

	return variants
}

// namedFields rewrites the entries of a named-variant block into GraphQL
// field definitions, encoding exotic type expressions onto @expr.
func namedFields(block string) []string {
	var fields []string
	for _, entry := range splitTopLevel(block) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		colon := strings.Index(entry, ":")
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(entry[:colon])
		typeText, dirs := splitFieldDirectives(entry[colon+1:])
		fields = append(fields, fieldDefinition(name, typeText, dirs))
	}
	return fields
}

// fieldDefinition renders one GraphQL field definition, routing type
// expressions GraphQL cannot parse through the @expr directive channel.
func fieldDefinition(name, typeText, directives string) string {
	typeText = strings.TrimSpace(typeText)
	def := name + ": "
	if isPlainGraphQLType(typeText) {
		def += typeText
	} else {
		def += exprPlaceholder + `! @expr(value: "` + strings.ReplaceAll(typeText, `"`, `\"`) + `")`
	}
	if directives != "" {
		def += " " + directives
	}
	return def
}

// isPlainGraphQLType reports whether a type text can be handed to the GraphQL
// parser as-is: named types, list wrappers, and ! markers only.
func isPlainGraphQLType(t string) bool {
	for i := 0; i < len(t); i++ {
		c := t[i]
		switch {
		case isIdentChar(c, false), c == '[', c == ']', c == '!', c == ' ', c == '\t':
		default:
			return false
		}
	}
	return true
}

// splitFieldDirectives separates a field's type text from its trailing
// directive text. The first top-level '@' starts the directives.
func splitFieldDirectives(s string) (typeText, directives string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case '@':
			if depth == 0 {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
			}
		}
	}
	return strings.TrimSpace(s), ""
}

// splitTopLevel splits on commas and newlines that sit outside any nesting.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	flush := func(end int) {
		if part := strings.TrimSpace(s[start:end]); part != "" {
			parts = append(parts, part)
		}
		start = end + 1
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case ',', '\n':
			if depth == 0 {
				flush(i)
			}
		}
	}
	flush(len(s))
	return parts
}

// matchBrace returns the index of the brace closing the one at open.
func matchBrace(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// scanner is a cursor over an enum body.
type scanner struct {
	src string
	pos int
}

func (s *scanner) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

// skip advances past whitespace and # comments.
func (s *scanner) skip() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

// docstring consumes a `"""..."""` block if present and returns its content.
func (s *scanner) docstring() string {
	if !strings.HasPrefix(s.src[s.pos:], `"""`) {
		return ""
	}
	end := strings.Index(s.src[s.pos+3:], `"""`)
	if end < 0 {
		return ""
	}
	doc := strings.TrimSpace(s.src[s.pos+3 : s.pos+3+end])
	s.pos += end + 6
	return doc
}

func (s *scanner) ident() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentChar(s.src[s.pos], s.pos == start) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// balanced consumes a bracketed region and returns its inner text.
func (s *scanner) balanced(open, close byte) string {
	depth := 0
	start := s.pos + 1
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				inner := s.src[start:s.pos]
				s.pos++
				return inner
			}
		}
		s.pos++
	}
	return s.src[start:]
}

// directives consumes trailing @directive tokens up to the end of the line.
func (s *scanner) directives() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' || c == ',' {
			break
		}
		if c == '@' {
			s.pos++
			for s.pos < len(s.src) && isIdentChar(s.src[s.pos], false) {
				s.pos++
			}
			// Directive arguments
			rest := s.src[s.pos:]
			trimmed := strings.TrimLeft(rest, " \t")
			if strings.HasPrefix(trimmed, "(") {
				s.pos += len(rest) - len(trimmed)
				s.balanced('(', ')')
			}
			continue
		}
		if c == ' ' || c == '\t' {
			s.pos++
			continue
		}
		break
	}
	return strings.TrimSpace(s.src[start:s.pos])
}

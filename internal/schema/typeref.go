package schema

import (
	"fmt"
	"strings"
)

// TypeRefKind discriminates the forms a type reference can take
type TypeRefKind int

const (
	// TypeNamed is a (possibly generic-applied) named type, e.g. UInt32, Pair<T, UInt32>
	TypeNamed TypeRefKind = iota

	// TypeList is a homogeneous list, e.g. [Byte]
	TypeList

	// TypeBorrow is a borrowed reference, e.g. &'a Int32
	TypeBorrow
)

// EntityTypeName is the name of the host framework's entity-handle type.
// Entity-event declarations designate their target by carrying a field of
// this type.
const EntityTypeName = "Entity"

// TypeRef is a structural type reference. Field types are kept as a small
// tree rather than raw strings so that parameter projection can walk them.
type TypeRef struct {
	Kind TypeRefKind `json:"kind"`

	// Name and Args are set for TypeNamed. Args is non-empty only for
	// generic applications.
	Name string     `json:"name,omitempty"`
	Args []*TypeRef `json:"args,omitempty"`

	// Elem is set for TypeList and TypeBorrow.
	Elem *TypeRef `json:"elem,omitempty"`

	// Lifetime is set for TypeBorrow when the borrow names one, e.g. &'a T.
	Lifetime string `json:"lifetime,omitempty"`
}

// Named constructs a plain named type reference
func Named(name string, args ...*TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeNamed, Name: name, Args: args}
}

// ListOf constructs a list type reference
func ListOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeList, Elem: elem}
}

// BorrowOf constructs a borrow type reference
func BorrowOf(lifetime string, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeBorrow, Lifetime: lifetime, Elem: elem}
}

// Normalize rewrites sugar forms into canonical structure: the Bytes builtin
// becomes a list of Byte so every backend sees one spelling of a byte
// sequence.
func (t *TypeRef) Normalize() *TypeRef {
	if t == nil {
		return nil
	}
	if t.Kind == TypeNamed && t.Name == "Bytes" && len(t.Args) == 0 {
		return ListOf(Named("Byte"))
	}
	for i, arg := range t.Args {
		t.Args[i] = arg.Normalize()
	}
	t.Elem = t.Elem.Normalize()
	return t
}

// IsEntityHandle reports whether the reference is exactly the host
// framework's entity-handle type.
func (t *TypeRef) IsEntityHandle() bool {
	return t != nil && t.Kind == TypeNamed && t.Name == EntityTypeName && len(t.Args) == 0
}

// Walk visits t and every type reference nested inside it, outermost first.
func (t *TypeRef) Walk(visit func(*TypeRef)) {
	if t == nil {
		return
	}
	visit(t)
	for _, arg := range t.Args {
		arg.Walk(visit)
	}
	t.Elem.Walk(visit)
}

// String renders the canonical source form of the reference
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeList:
		return "[" + t.Elem.String() + "]"
	case TypeBorrow:
		if t.Lifetime != "" {
			return "&'" + t.Lifetime + " " + t.Elem.String()
		}
		return "&" + t.Elem.String()
	default:
		if len(t.Args) == 0 {
			return t.Name
		}
		parts := make([]string, len(t.Args))
		for i, arg := range t.Args {
			parts[i] = arg.String()
		}
		return t.Name + "<" + strings.Join(parts, ", ") + ">"
	}
}

// ParseTypeExpr parses a type expression carried through preprocessing on an
// @expr directive. The grammar covers the forms GraphQL's own type syntax
// cannot spell:
//
//	expr   := ( borrow | list | named ) [ '!' ]
//	borrow := '&' [ '\'' ident ] expr
//	list   := '[' expr ']'
//	named  := ident [ '<' expr { ',' expr } '>' ]
//
// Non-null markers may appear anywhere field syntax allows them; they carry
// no structure here, and the outermost one is consumed by the caller as the
// field's required flag.
func ParseTypeExpr(input string) (*TypeRef, error) {
	p := &typeExprParser{src: input}
	ref, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in type expression %q", p.src[p.pos:], p.pos, input)
	}
	return ref, nil
}

type typeExprParser struct {
	src string
	pos int
}

func (p *typeExprParser) parseExpr() (*TypeRef, error) {
	ref, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	p.consume('!')
	return ref, nil
}

func (p *typeExprParser) parsePrimary() (*TypeRef, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of type expression %q", p.src)
	}

	switch p.src[p.pos] {
	case '&':
		p.pos++
		lifetime := ""
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '\'' {
			p.pos++
			lifetime = p.ident()
			if lifetime == "" {
				return nil, fmt.Errorf("missing lifetime name after ' in %q", p.src)
			}
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return BorrowOf(lifetime, elem), nil

	case '[':
		p.pos++
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(']') {
			return nil, fmt.Errorf("missing ] in type expression %q", p.src)
		}
		return ListOf(elem), nil
	}

	name := p.ident()
	if name == "" {
		return nil, fmt.Errorf("expected type name at offset %d in %q", p.pos, p.src)
	}
	ref := Named(name)
	p.skipSpace()
	if p.consume('<') {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			ref.Args = append(ref.Args, arg)
			p.skipSpace()
			if p.consume(',') {
				continue
			}
			if p.consume('>') {
				break
			}
			return nil, fmt.Errorf("missing > in type expression %q", p.src)
		}
	}
	return ref, nil
}

func (p *typeExprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeExprParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeExprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isIdentChar(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9':
		return !first
	default:
		return false
	}
}

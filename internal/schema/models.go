package schema

// Document is the root of a parsed .events.gql file
type Document struct {
	Declarations []Declaration `json:"declarations"`
	Meta         Metadata      `json:"meta"`
}

// Metadata represents global metadata for the declaration file
type Metadata struct {
	Namespace string `json:"namespace"`
	Version   string `json:"version"`
}

// Kind identifies which capability family a declaration's records belong to
type Kind string

const (
	// KindEvent marks records deliverable to globally registered observers
	KindEvent Kind = "event"

	// KindMessage marks records eligible for double-buffered queue storage
	KindMessage Kind = "message"

	// KindEntityEvent marks records carrying an explicit target entity handle
	KindEntityEvent Kind = "entityEvent"
)

// Declaration represents one sum-type declaration ("enum" block)
type Declaration struct {
	Name string `json:"name"`
	Doc  string `json:"doc"`

	// Kinds holds every kind directive seen, in source order. A well-formed
	// declaration has exactly one; the validator enforces it.
	Kinds []Kind `json:"kinds"`

	// AutoPropagate / Propagate are the entity-event propagation modifiers.
	AutoPropagate bool `json:"autoPropagate"`
	Propagate     bool `json:"propagate"`

	Derives    DeriveSet   `json:"derives"`
	TypeParams []TypeParam `json:"typeParams"`
	Lifetimes  []Lifetime  `json:"lifetimes"`
	Variants   []Variant   `json:"variants"`
}

// Kind returns the declaration's kind. Only meaningful after validation has
// established that exactly one kind directive is present.
func (d *Declaration) Kind() Kind {
	if len(d.Kinds) == 0 {
		return ""
	}
	return d.Kinds[0]
}

// DeriveSet is the set of value-semantics behaviors requested on a declaration
type DeriveSet struct {
	Clone    bool `json:"clone"`
	Copy     bool `json:"copy"`
	Equality bool `json:"equality"`
	Debug    bool `json:"debug"`
	Default  bool `json:"default"`
}

// TypeParam is a generic type parameter declared on a sum type
type TypeParam struct {
	Name   string `json:"name"`
	Bounds string `json:"bounds"`
}

// Lifetime is a lifetime parameter declared on a sum type
type Lifetime struct {
	Name string `json:"name"`
}

// Shape classifies a variant's field layout
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapePositional
	ShapeNamed
)

// String returns the shape name for diagnostics
func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapePositional:
		return "positional"
	case ShapeNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Variant represents one alternative of a sum-type declaration
type Variant struct {
	Name   string  `json:"name"`
	Doc    string  `json:"doc"`
	Shape  Shape   `json:"shape"`
	Fields []Field `json:"fields"`

	// DerefRequested is set by a variant-level @deref directive, which marks
	// the variant's single field without naming it.
	DerefRequested bool `json:"derefRequested"`
}

// Field represents a field inside a variant. Positional fields are stored
// with synthetic names _0.._k; Shape distinguishes the access style.
type Field struct {
	Name     string   `json:"name"`
	Doc      string   `json:"doc"`
	Type     *TypeRef `json:"type"`
	Required bool     `json:"required"`
	Deref    bool     `json:"deref"`
}

// DerefField resolves which field, if any, carries the deref projection for
// this variant under the given implicit-single-field policy. An explicit
// marker always wins over the implicit rule.
func (v *Variant) DerefField(implicit bool) (*Field, bool) {
	for i := range v.Fields {
		if v.Fields[i].Deref {
			return &v.Fields[i], true
		}
	}
	if v.DerefRequested && len(v.Fields) == 1 {
		return &v.Fields[0], true
	}
	if implicit && len(v.Fields) == 1 {
		return &v.Fields[0], true
	}
	return nil, false
}

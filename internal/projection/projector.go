// Package projection computes, per variant, the minimal well-formed subset of
// a declaration's generic and lifetime parameters. A parameter is projected
// onto a generated record if and only if it appears free in at least one of
// the variant's field type references; unused parameters must not leak into
// output, and used-but-undeclared parameters cannot compile.
package projection

import (
	"fmt"

	"github.com/MolecularSadism/enumgen/internal/schema"
)

// ParamSet is the ordered parameter subset projected for one variant.
// Ordering matches the original declaration.
type ParamSet struct {
	TypeParams []schema.TypeParam
	Lifetimes  []schema.Lifetime
}

// Empty reports whether the variant's record declares no parameters at all
func (p ParamSet) Empty() bool {
	return len(p.TypeParams) == 0 && len(p.Lifetimes) == 0
}

// HasTypeParam reports whether the named type parameter was projected
func (p ParamSet) HasTypeParam(name string) bool {
	for _, tp := range p.TypeParams {
		if tp.Name == name {
			return true
		}
	}
	return false
}

// Project computes the parameter subset for one variant. It fails with a
// GenericProjectionFailure diagnostic when a field's type uses a lifetime the
// declaration never declared, or applies type arguments to a declared type
// parameter (which makes the reference unresolvable as a free variable).
func Project(decl *schema.Declaration, v *schema.Variant) (ParamSet, error) {
	declared := make(map[string]bool, len(decl.TypeParams))
	for _, tp := range decl.TypeParams {
		declared[tp.Name] = true
	}
	declaredLifetimes := make(map[string]bool, len(decl.Lifetimes))
	for _, lt := range decl.Lifetimes {
		declaredLifetimes[lt.Name] = true
	}

	usedParams := map[string]bool{}
	usedLifetimes := map[string]bool{}
	var failure error

	fail := func(f *schema.Field, msg string) {
		if failure == nil {
			failure = schema.NewViolationError(schema.Violation{
				Code:        schema.CodeGenericProjectionFailure,
				Declaration: decl.Name,
				Variant:     v.Name,
				Field:       f.Name,
				Message:     msg,
			})
		}
	}

	for i := range v.Fields {
		f := &v.Fields[i]
		f.Type.Walk(func(t *schema.TypeRef) {
			switch t.Kind {
			case schema.TypeNamed:
				if declared[t.Name] {
					if len(t.Args) > 0 {
						fail(f, fmt.Sprintf("type parameter %s cannot take type arguments", t.Name))
						return
					}
					usedParams[t.Name] = true
				}
			case schema.TypeBorrow:
				if t.Lifetime == "" {
					return
				}
				if !declaredLifetimes[t.Lifetime] {
					fail(f, fmt.Sprintf("lifetime '%s is not declared on %s", t.Lifetime, decl.Name))
					return
				}
				usedLifetimes[t.Lifetime] = true
			}
		})
	}

	if failure != nil {
		return ParamSet{}, failure
	}

	var out ParamSet
	for _, tp := range decl.TypeParams {
		if usedParams[tp.Name] {
			out.TypeParams = append(out.TypeParams, tp)
		}
	}
	for _, lt := range decl.Lifetimes {
		if usedLifetimes[lt.Name] {
			out.Lifetimes = append(out.Lifetimes, lt)
		}
	}
	return out, nil
}

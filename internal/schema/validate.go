package schema

import (
	"fmt"
	"strings"
)

// Code names one class of declaration failure. The taxonomy is closed:
// diagnostics always carry one of these codes.
type Code string

const (
	CodeEmptyDeclaration         Code = "EmptyDeclaration"
	CodeMissingOrAmbiguousKind   Code = "MissingOrAmbiguousKind"
	CodeModifierKindMismatch     Code = "ModifierKindMismatch"
	CodeMultipleDerefTargets     Code = "MultipleDerefTargets"
	CodeDerefOnEmptyVariant      Code = "DerefOnEmptyVariant"
	CodeEntityEventMissingTarget Code = "EntityEventMissingTarget"
	CodeGenericProjectionFailure Code = "GenericProjectionFailure"
	CodeMissingRequiredSemantics Code = "MissingRequiredSemantics"
	CodeUnsatisfiableSemantics   Code = "UnsatisfiableSemantics"
	CodeNamespaceCollision       Code = "NamespaceCollision"
)

// Violation is one diagnostic, pinned to the declaration/variant/field that
// caused it.
type Violation struct {
	Code        Code   `json:"code"`
	Declaration string `json:"declaration"`
	Variant     string `json:"variant,omitempty"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message"`
}

// String renders the diagnostic in declaration[.variant[.field]] form
func (v Violation) String() string {
	loc := v.Declaration
	if v.Variant != "" {
		loc += "." + v.Variant
	}
	if v.Field != "" {
		loc += "." + v.Field
	}
	return fmt.Sprintf("%s: %s: %s", v.Code, loc, v.Message)
}

// ValidationError aggregates every violation found in one invocation so a
// single run surfaces the complete error set.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("%d declaration error(s):\n%s", len(e.Violations), strings.Join(lines, "\n"))
}

// NewViolationError wraps a single violation for components that fail fast.
func NewViolationError(v Violation) error {
	return &ValidationError{Violations: []Violation{v}}
}

// Validate runs every structural check over every declaration in the
// document. All checks run eagerly; violations are aggregated rather than
// reported one at a time.
func Validate(doc *Document) error {
	var violations []Violation
	for i := range doc.Declarations {
		violations = append(violations, ValidateDeclaration(&doc.Declarations[i])...)
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// ValidateDeclaration checks one declaration's cross-cutting invariants and
// returns every violation found.
func ValidateDeclaration(d *Declaration) []Violation {
	var violations []Violation

	if len(d.Variants) == 0 {
		violations = append(violations, Violation{
			Code:        CodeEmptyDeclaration,
			Declaration: d.Name,
			Message:     "declaration has no variants",
		})
	}

	switch len(d.Kinds) {
	case 1:
		// Exactly one kind directive, as required.
	case 0:
		violations = append(violations, Violation{
			Code:        CodeMissingOrAmbiguousKind,
			Declaration: d.Name,
			Message:     "exactly one of @event, @message, @entityEvent is required",
		})
	default:
		violations = append(violations, Violation{
			Code:        CodeMissingOrAmbiguousKind,
			Declaration: d.Name,
			Message:     fmt.Sprintf("%d kind directives present, exactly one is allowed", len(d.Kinds)),
		})
	}

	if d.AutoPropagate || d.Propagate {
		if !hasKind(d.Kinds, KindEntityEvent) {
			violations = append(violations, Violation{
				Code:        CodeModifierKindMismatch,
				Declaration: d.Name,
				Message:     "@autoPropagate and @propagate require @entityEvent",
			})
		}
	}

	for i := range d.Variants {
		violations = append(violations, validateVariant(d, &d.Variants[i])...)
	}

	return violations
}

func validateVariant(d *Declaration, v *Variant) []Violation {
	var violations []Violation

	marked := 0
	for _, f := range v.Fields {
		if f.Deref {
			marked++
		}
	}
	if marked > 1 {
		violations = append(violations, Violation{
			Code:        CodeMultipleDerefTargets,
			Declaration: d.Name,
			Variant:     v.Name,
			Message:     fmt.Sprintf("%d fields marked @deref, at most one is allowed", marked),
		})
	}

	if v.DerefRequested {
		switch {
		case len(v.Fields) == 0:
			violations = append(violations, Violation{
				Code:        CodeDerefOnEmptyVariant,
				Declaration: d.Name,
				Variant:     v.Name,
				Message:     "@deref requires at least one field",
			})
		case len(v.Fields) > 1 && marked == 0:
			violations = append(violations, Violation{
				Code:        CodeMultipleDerefTargets,
				Declaration: d.Name,
				Variant:     v.Name,
				Message:     "variant-level @deref is ambiguous on a multi-field variant; mark one field instead",
			})
		}
	}

	if hasKind(d.Kinds, KindEntityEvent) {
		if _, ok := v.EntityTargetField(); !ok {
			violations = append(violations, Violation{
				Code:        CodeEntityEventMissingTarget,
				Declaration: d.Name,
				Variant:     v.Name,
				Message:     fmt.Sprintf("entity-event variant needs a required field of type %s", EntityTypeName),
			})
		}
	}

	return violations
}

// EntityTargetField returns the field the host framework extracts the target
// entity handle from: the first required field of the entity-handle type.
func (v *Variant) EntityTargetField() (*Field, bool) {
	for i := range v.Fields {
		f := &v.Fields[i]
		if f.Required && f.Type.IsEntityHandle() {
			return f, true
		}
	}
	return nil, false
}

func hasKind(kinds []Kind, k Kind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

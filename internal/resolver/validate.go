package resolver

import (
	"fmt"

	"github.com/mircodz/bbc/internal/ast"
)

// ValidateDeclarations runs the shape and default-value checks of §4.4.3
// against every declaration, assuming type resolution and view projection
// have already run (fields still carrying an unresolved type are skipped
// here; ResolveTypes already reported them).
func ValidateDeclarations(decls []*ast.Declaration) []*Error {
	var errs []*Error
	for _, d := range decls {
		switch d.Kind {
		case ast.DeclStruct, ast.DeclView:
			errs = append(errs, validateFields(d)...)
		case ast.DeclEnum:
			errs = append(errs, validateEnum(d)...)
		case ast.DeclService:
			errs = append(errs, validateService(d)...)
		}
	}
	return errs
}

func validateFields(d *ast.Declaration) []*Error {
	var errs []*Error
	seenName := make(map[string]bool, len(d.Fields))
	seenOrdinal := make(map[int64]bool, len(d.Fields))
	for _, f := range d.Fields {
		if seenName[f.Name] {
			errs = append(errs, &Error{
				Kind:    DuplicateField,
				Message: fmt.Sprintf("%s: duplicate field name %q", d.QualifiedName(), f.Name),
				Pos:     f.Pos,
			})
		}
		seenName[f.Name] = true

		if !f.OrdinalInRange() {
			errs = append(errs, &Error{
				Kind:    DuplicateOrdinal, // out-of-range is reported alongside ordinal conflicts; both concern the ordinal slot
				Message: fmt.Sprintf("%s.%s: ordinal %d out of range [0, 65535]", d.QualifiedName(), f.Name, f.Ordinal),
				Pos:     f.Pos,
			})
		} else if seenOrdinal[f.Ordinal] {
			errs = append(errs, &Error{
				Kind:    DuplicateOrdinal,
				Message: fmt.Sprintf("%s: duplicate field ordinal %d", d.QualifiedName(), f.Ordinal),
				Pos:     f.Pos,
			})
		}
		seenOrdinal[f.Ordinal] = true

		errs = append(errs, validateField(d, f)...)
	}
	return errs
}

// validateField checks one field's key-type legality and default-value
// compatibility (§4.4.3).
func validateField(d *ast.Declaration, f *ast.Field) []*Error {
	var errs []*Error
	t := f.Type.Unwrap()
	// Follow alias chains to the underlying type; seen cuts alias cycles.
	seen := make(map[*ast.Declaration]bool)
	for t != nil && t.Kind == ast.KindUserDefined && t.Decl != nil && t.Decl.Kind == ast.DeclAlias && !seen[t.Decl] {
		seen[t.Decl] = true
		t = t.Decl.AliasTarget.Unwrap()
	}
	if t == nil || t.HasUnresolved() {
		return errs // already reported by ResolveTypes
	}

	switch t.Kind {
	case ast.KindSet:
		if t.Element != nil && !t.Element.Unwrap().IsValidKey() {
			errs = append(errs, &Error{
				Kind:    InvalidKeyType,
				Message: fmt.Sprintf("%s.%s: set element type is not a valid key type", d.QualifiedName(), f.Name),
				Pos:     f.Pos,
			})
		}
	case ast.KindMap:
		if t.Key != nil && !t.Key.Unwrap().IsValidKey() {
			errs = append(errs, &Error{
				Kind:    InvalidKeyType,
				Message: fmt.Sprintf("%s.%s: map key type is not a valid key type", d.QualifiedName(), f.Name),
				Pos:     f.Pos,
			})
		}
	}

	isEnum := t.Kind == ast.KindUserDefined && t.Decl != nil && t.Decl.Kind == ast.DeclEnum
	hasDefault := f.Default != nil && f.Default.Kind != ast.DefaultNone
	if isEnum && f.Modifier != ast.ModifierRequired && !hasDefault {
		errs = append(errs, &Error{
			Kind:    RequiredDefault,
			Message: fmt.Sprintf("%s.%s: non-required enum field must have a default value", d.QualifiedName(), f.Name),
			Pos:     f.Pos,
		})
	}

	if f.Default == nil {
		return errs
	}

	if t.IsContainer() || (t.Kind == ast.KindUserDefined && t.Decl != nil && (t.Decl.Kind == ast.DeclStruct || t.Decl.Kind == ast.DeclView)) {
		if f.Default.Kind != ast.DefaultNothing && f.Default.Kind != ast.DefaultNone {
			errs = append(errs, &Error{
				Kind:    InvalidStructDefault,
				Message: fmt.Sprintf("%s.%s: only \"nothing\" is a legal default for a struct, view or container type", d.QualifiedName(), f.Name),
				Pos:     f.Pos,
			})
		}
		return errs
	}

	if !defaultCompatibleWithType(f.Default, t) {
		errs = append(errs, &Error{
			Kind:    InvalidDefault,
			Message: fmt.Sprintf("%s.%s: default value is not compatible with the field's type", d.QualifiedName(), f.Name),
			Pos:     f.Pos,
		})
	}
	return errs
}

// defaultCompatibleWithType applies §4.4.3's per-kind leniency rules: float
// types accept either an integer or float literal, everything else must
// match its own literal kind exactly.
func defaultCompatibleWithType(def *ast.Default, t *ast.Type) bool {
	switch def.Kind {
	case ast.DefaultNothing, ast.DefaultNone:
		return true
	case ast.DefaultBool:
		return t.Kind == ast.KindBool
	case ast.DefaultInteger:
		if ast.IsIntegral(t.Kind) {
			min, max := ast.IntegralRange(t.Kind)
			return def.Integer >= min && def.Integer <= max
		}
		return t.Kind == ast.KindFloat || t.Kind == ast.KindDouble
	case ast.DefaultFloat:
		return t.Kind == ast.KindFloat || t.Kind == ast.KindDouble
	case ast.DefaultString:
		return t.Kind == ast.KindString || t.Kind == ast.KindWString
	case ast.DefaultEnumConstant:
		if t.Kind != ast.KindUserDefined || t.Decl == nil || t.Decl.Kind != ast.DeclEnum {
			return false
		}
		for _, c := range t.Decl.Constants {
			if c.Name == def.EnumConstantName {
				def.EnumConstant = c
				return true
			}
		}
		return false
	}
	return false
}

func validateEnum(d *ast.Declaration) []*Error {
	var errs []*Error
	seen := make(map[string]bool, len(d.Constants))
	for _, c := range d.Constants {
		if seen[c.Name] {
			errs = append(errs, &Error{
				Kind:    DuplicateConstant,
				Message: fmt.Sprintf("%s: duplicate enum constant %q", d.QualifiedName(), c.Name),
				Pos:     c.Pos,
			})
		}
		seen[c.Name] = true
	}
	return errs
}

func validateService(d *ast.Declaration) []*Error {
	var errs []*Error

	if d.Base != nil {
		base := d.Base.Unwrap()
		if base.Kind != ast.KindUserDefined || base.Decl == nil || base.Decl.Kind != ast.DeclService {
			errs = append(errs, &Error{
				Kind:    IllegalInheritance,
				Message: fmt.Sprintf("%s: service base must name another service", d.QualifiedName()),
				Pos:     d.Pos,
			})
		}
	}

	seen := make(map[string]bool, len(d.Methods))
	for _, m := range d.Methods {
		if seen[m.Name] {
			errs = append(errs, &Error{
				Kind:    DuplicateMethod,
				Message: fmt.Sprintf("%s: duplicate method %q", d.QualifiedName(), m.Name),
				Pos:     m.Pos,
			})
		}
		seen[m.Name] = true

		if m.Kind == ast.MethodEvent && m.Input != nil && m.Input.Kind == ast.MethodTypeStreaming {
			errs = append(errs, &Error{
				Kind:    IllegalEventInput,
				Message: fmt.Sprintf("%s.%s: an event method cannot take a streaming input", d.QualifiedName(), m.Name),
				Pos:     m.Pos,
			})
		}
	}
	return errs
}

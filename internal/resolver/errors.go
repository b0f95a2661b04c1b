// Package resolver implements the Semantic Analyzer + Symbol Table + Type
// Resolver component (§4.4): transitive import loading, duplicate/shape
// validation, alias flattening, and multi-pass fixpoint resolution of named
// type references to declarations.
package resolver

import (
	"fmt"

	"github.com/mircodz/bbc/internal/ast"
)

// Kind enumerates the semantic error kinds of §7, all reported through the
// same Error record the way the teacher reports GraphError{Kind, Message}
// uniformly regardless of which operation raised it.
type Kind int

const (
	DuplicateDeclaration Kind = iota
	DuplicateField
	DuplicateOrdinal
	DuplicateMethod
	DuplicateConstant
	UnresolvedType
	InvalidDefault
	RequiredDefault
	InvalidKeyType
	InvalidStructDefault
	IllegalInheritance
	IllegalEventInput
	ImportFailure
	ResolutionDivergence
)

func (k Kind) String() string {
	switch k {
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	case DuplicateField:
		return "DuplicateField"
	case DuplicateOrdinal:
		return "DuplicateOrdinal"
	case DuplicateMethod:
		return "DuplicateMethod"
	case DuplicateConstant:
		return "DuplicateConstant"
	case UnresolvedType:
		return "UnresolvedType"
	case InvalidDefault:
		return "InvalidDefault"
	case RequiredDefault:
		return "RequiredDefault"
	case InvalidKeyType:
		return "InvalidKeyType"
	case InvalidStructDefault:
		return "InvalidStructDefault"
	case IllegalInheritance:
		return "IllegalInheritance"
	case IllegalEventInput:
		return "IllegalEventInput"
	case ImportFailure:
		return "ImportFailure"
	case ResolutionDivergence:
		return "ResolutionDivergence"
	}
	return "Unknown"
}

// Error is a semantic diagnostic with a source location (§4.4.5): every
// error "carries a source location: the location of the offending
// declaration, field, enum constant, or method."
type Error struct {
	Kind    Kind
	Message string
	Pos     ast.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

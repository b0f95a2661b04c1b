// Package ast defines the Bond IDL abstract syntax tree: a set of flat,
// Kind-discriminated sum types (Type, Declaration, Default, Method,
// MethodType) that a semantic analyzer resolves in place and a
// compatibility checker later diffs pairwise.
package ast

import "fmt"

// Position is a source location attached to every AST node that can be the
// subject of a diagnostic.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsZero reports whether the position carries no location information.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.File == ""
}

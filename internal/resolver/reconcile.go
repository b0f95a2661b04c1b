package resolver

import "github.com/mircodz/bbc/internal/ast"

// reconcile decides what happens when two declarations are registered under
// the same qualified name (§4.4.2): a forward declaration is absorbed by a
// struct definition of the same arity (recording it in the forward's
// ResolvedBy),
// and a second, structurally-identical copy of the same declaration (the
// usual shape produced when a type is forward-declared once per importing
// file) is silently collapsed into the first. Anything else is a genuine
// conflict, reported to the caller as false.
//
// The surviving declaration is returned as the winner so callers can update
// the symbol table entry in place.
func reconcile(existing, incoming *ast.Declaration) (*ast.Declaration, bool) {
	if existing.Kind == ast.DeclForward && incoming.Kind != ast.DeclForward {
		if forwardMatches(existing, incoming) {
			existing.ResolvedBy = incoming
			return incoming, true
		}
		return nil, false
	}
	if incoming.Kind == ast.DeclForward && existing.Kind != ast.DeclForward {
		if forwardMatches(incoming, existing) {
			incoming.ResolvedBy = existing
			return existing, true
		}
		return nil, false
	}
	if existing.Kind == ast.DeclForward && incoming.Kind == ast.DeclForward {
		if len(existing.GenericParams) == len(incoming.GenericParams) {
			return existing, true
		}
		return nil, false
	}
	if declarationsEquivalent(existing, incoming) {
		return existing, true
	}
	return nil, false
}

// forwardMatches reports whether full is a struct whose generic arity
// matches fwd's, the only shape a forward declaration commits to (§3.1: "a
// forward declaration ... carries no fields, just a name and arity").
func forwardMatches(fwd, full *ast.Declaration) bool {
	return full.Kind == ast.DeclStruct && len(fwd.GenericParams) == len(full.GenericParams)
}

// declarationsEquivalent is a best-effort structural comparison used only
// to decide whether a repeated declaration of the same qualified name is a
// harmless duplicate (the same file reprocessed, or the same declaration
// reachable through two import paths) rather than a real conflict. It does
// not attempt to be a general-purpose deep-equality routine; a mismatch
// anywhere simply falls through to DuplicateDeclaration, which is always a
// safe (if occasionally over-eager) answer.
func declarationsEquivalent(a, b *ast.Declaration) bool {
	if a.Kind != b.Kind || a.Name != b.Name || a.Namespace != b.Namespace {
		return false
	}
	if len(a.GenericParams) != len(b.GenericParams) {
		return false
	}
	switch a.Kind {
	case ast.DeclStruct:
		return len(a.Fields) == len(b.Fields)
	case ast.DeclEnum:
		return len(a.Constants) == len(b.Constants)
	case ast.DeclService:
		return len(a.Methods) == len(b.Methods)
	case ast.DeclAlias, ast.DeclView:
		return true
	}
	return false
}

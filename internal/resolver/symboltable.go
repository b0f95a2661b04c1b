package resolver

import (
	"fmt"

	"github.com/mircodz/bbc/internal/ast"
)

// SymbolTable holds by-identity references to every declaration registered
// across a compilation, keyed by qualified name (§3.3). It owns nothing
// itself, mirroring the teacher's graph store, which likewise holds
// references into node/edge maps it does not allocate on its own behalf.
//
// Aliases are registered here like every other declaration kind; there is
// no per-file alias scope. A second alias with the same qualified name and
// generic arity, from any file, collapses into the first one registered
// (its target is not compared), so all files share one alias namespace.
type SymbolTable struct {
	decls map[string]*ast.Declaration
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{decls: make(map[string]*ast.Declaration)}
}

func qualifiedKey(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// Register adds a global declaration, applying the duplicate/reconciliation
// rules of §4.4.2. A conflicting registration returns a DuplicateDeclaration
// error; a forward declaration reconciled by a matching struct, or a
// structurally identical re-registration, is absorbed silently.
func (t *SymbolTable) Register(d *ast.Declaration) error {
	key := qualifiedKey(d.Namespace, d.Name)
	existing, ok := t.decls[key]
	if !ok {
		t.decls[key] = d
		return nil
	}
	winner, ok := reconcile(existing, d)
	if !ok {
		return &Error{
			Kind:    DuplicateDeclaration,
			Message: fmt.Sprintf("declaration %q conflicts with an earlier declaration at %s", key, existing.Pos),
			Pos:     d.Pos,
		}
	}
	t.decls[key] = winner
	return nil
}

// LookupName resolves a possibly-unqualified name against namespace: first
// as namespace-qualified, falling back to a bare global lookup (§4.4.2,
// "unqualified names searched within the file's namespaces").
func (t *SymbolTable) LookupName(namespace, name string) (*ast.Declaration, bool) {
	if d, ok := t.decls[qualifiedKey(namespace, name)]; ok {
		return d, true
	}
	if d, ok := t.decls[name]; ok {
		return d, true
	}
	return nil, false
}

// All returns every registered global declaration, for callers (such as
// the compatibility checker) that need to enumerate the whole set.
func (t *SymbolTable) All() []*ast.Declaration {
	out := make([]*ast.Declaration, 0, len(t.decls))
	for _, d := range t.decls {
		out = append(out, d)
	}
	return out
}

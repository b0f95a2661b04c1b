package resolver

import (
	"fmt"
	"log/slog"

	"github.com/mircodz/bbc/internal/ast"
)

// maxResolutionPasses bounds the fixpoint loop of §4.4.4. Ten passes is far
// more than any legal Bond file needs — resolving a name never depends on
// more than one intervening level of nesting per pass — so hitting the cap
// while still making progress is treated as a hard error rather than
// silently giving up.
const maxResolutionPasses = 10

// ResolveTypes repeatedly walks every type reachable from decls, resolving
// KindUnresolvedUserType nodes against table (user-defined declarations)
// and ast.PrimitiveKindByName (primitive names), until a pass makes no
// further change. It returns ResolutionDivergence if the cap is reached
// while progress is still being made, any generic-arity mismatches found
// along the way, and the first UnresolvedType error for a node that is
// still unresolved once the walk has genuinely stabilized — resolution
// halts at that first failure (§7/§9) rather than reporting every
// remaining unresolved node.
func ResolveTypes(decls []*ast.Declaration, table *SymbolTable, log *slog.Logger) []*Error {
	if log == nil {
		log = slog.Default()
	}
	selfRefs := make(map[*ast.Declaration]*ast.Declaration)
	var structuralErrs []*Error

	pass := 0
	for {
		progressed := false
		for _, d := range decls {
			if walkDeclaration(d, table, selfRefs, &structuralErrs) {
				progressed = true
			}
		}
		pass++
		log.Debug("type resolution pass", "pass", pass, "progressed", progressed)
		if !progressed {
			break
		}
		if pass >= maxResolutionPasses {
			return []*Error{{
				Kind:    ResolutionDivergence,
				Message: fmt.Sprintf("type resolution did not converge after %d passes", maxResolutionPasses),
			}}
		}
	}

	errs := structuralErrs
	for _, d := range decls {
		if err := unresolvedErrorFor(d); err != nil {
			return append(errs, err)
		}
	}
	return errs
}

func walkDeclaration(d *ast.Declaration, table *SymbolTable, selfRefs map[*ast.Declaration]*ast.Declaration, errs *[]*Error) bool {
	progressed := false
	ns := d.Namespace
	if walkType(d.Base, ns, table, d, selfRefs, errs) {
		progressed = true
	}
	if walkType(d.AliasTarget, ns, table, d, selfRefs, errs) {
		progressed = true
	}
	for _, f := range d.Fields {
		if walkType(f.Type, ns, table, d, selfRefs, errs) {
			progressed = true
		}
	}
	for _, m := range d.Methods {
		if m.Input != nil && walkType(m.Input.Type, ns, table, d, selfRefs, errs) {
			progressed = true
		}
		if m.Result != nil && walkType(m.Result.Type, ns, table, d, selfRefs, errs) {
			progressed = true
		}
	}
	return progressed
}

// walkType resolves every unresolved node reachable from t, innermost
// first, then attempts t itself. Resolving children first means a
// container's own conversion (once attempted) can move an already-resolved
// child straight from UnresolvedArgs into TypeArgs without re-visiting it.
func walkType(t *ast.Type, namespace string, table *SymbolTable, current *ast.Declaration, selfRefs map[*ast.Declaration]*ast.Declaration, errs *[]*Error) bool {
	if t == nil {
		return false
	}
	progressed := false
	if walkType(t.Element, namespace, table, current, selfRefs, errs) {
		progressed = true
	}
	if walkType(t.Key, namespace, table, current, selfRefs, errs) {
		progressed = true
	}
	if walkType(t.Value, namespace, table, current, selfRefs, errs) {
		progressed = true
	}
	for _, a := range t.TypeArgs {
		if walkType(a, namespace, table, current, selfRefs, errs) {
			progressed = true
		}
	}
	for _, a := range t.UnresolvedArgs {
		if walkType(a, namespace, table, current, selfRefs, errs) {
			progressed = true
		}
	}
	if t.Kind == ast.KindUnresolvedUserType && resolveOne(t, namespace, table, current, selfRefs, errs) {
		progressed = true
	}
	return progressed
}

// resolveOne attempts to turn a single UnresolvedUserType node into either a
// primitive Type or a UserDefined Type referencing a symbol-table entry. A
// reference back to the declaration currently being resolved is redirected
// to a synthesized forward stand-in (§4.4.4) rather than the live
// declaration pointer, one per original declaration, memoized in selfRefs.
//
// Once the target declaration is found, the supplied type-argument count is
// checked against the declaration's generic parameter list (§6.4): zero
// arguments (a bare reference to a generic declaration) or exactly the
// declared count are legal, anything else is reported once as an
// UnresolvedType-class error rather than silently accepted.
func resolveOne(t *ast.Type, namespace string, table *SymbolTable, current *ast.Declaration, selfRefs map[*ast.Declaration]*ast.Declaration, errs *[]*Error) bool {
	if prim, ok := ast.PrimitiveKindByName(t.Name); ok {
		pos := t.Pos
		*t = ast.Type{Kind: prim, Pos: pos}
		return true
	}
	decl, ok := table.LookupName(namespace, t.Name)
	if !ok {
		return false
	}
	if decl == current {
		decl = synthesizeSelfForward(current, selfRefs)
	}
	pos, args := t.Pos, t.UnresolvedArgs

	want := genericArity(decl)
	if got := len(args); got != 0 && got != want {
		*errs = append(*errs, &Error{
			Kind:    UnresolvedType,
			Message: fmt.Sprintf("%s: expects %d generic argument(s), got %d", t.Name, want, got),
			Pos:     pos,
		})
	}

	*t = ast.Type{Kind: ast.KindUserDefined, Decl: decl, TypeArgs: args, Pos: pos}
	return true
}

// genericArity returns how many generic parameters decl declares, following
// a forward declaration through to the arity it was synthesized with.
func genericArity(decl *ast.Declaration) int {
	if decl.Kind == ast.DeclForward {
		return decl.ForwardArity
	}
	return len(decl.GenericParams)
}

func synthesizeSelfForward(original *ast.Declaration, selfRefs map[*ast.Declaration]*ast.Declaration) *ast.Declaration {
	if fwd, ok := selfRefs[original]; ok {
		return fwd
	}
	fwd := &ast.Declaration{
		Kind:         ast.DeclForward,
		Name:         original.Name,
		Namespace:    original.Namespace,
		File:         original.File,
		ForwardArity: len(original.GenericParams),
		Pos:          original.Pos,
		ResolvedBy:   original,
	}
	fwd.MarkSynthesized()
	selfRefs[original] = fwd
	return fwd
}

// unresolvedErrorFor reports the first type reference under d that is still
// unresolved once the fixpoint walk has stabilized, or nil if none remain.
// Type resolution halts at the first such failure (§7/§9) rather than
// collecting every remaining unresolved node.
func unresolvedErrorFor(d *ast.Declaration) *Error {
	check := func(t *ast.Type, ctx string) *Error {
		if t != nil && t.HasUnresolved() {
			return &Error{
				Kind:    UnresolvedType,
				Message: ctx + ": unresolved type reference",
				Pos:     t.Pos,
			}
		}
		return nil
	}
	if err := check(d.Base, d.QualifiedName()+" base type"); err != nil {
		return err
	}
	if err := check(d.AliasTarget, d.QualifiedName()+" alias target"); err != nil {
		return err
	}
	for _, f := range d.Fields {
		if err := check(f.Type, fmt.Sprintf("%s.%s", d.QualifiedName(), f.Name)); err != nil {
			return err
		}
	}
	for _, m := range d.Methods {
		if m.Input != nil {
			if err := check(m.Input.Type, fmt.Sprintf("%s.%s input", d.QualifiedName(), m.Name)); err != nil {
				return err
			}
		}
		if m.Result != nil {
			if err := check(m.Result.Type, fmt.Sprintf("%s.%s result", d.QualifiedName(), m.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

package diff

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mircodz/bbc/internal/ast"
)

// Check compares two resolved declaration sets (typically the SymbolTable.All()
// of a resolved old and new AST) and returns every classified difference
// (§4.5). Declaration-level comparisons are independent of one another, so
// they run concurrently via the corpus's index-channel-then-collect
// fan-out pattern (mirroring query.executeConcurrent) purely for
// throughput — compatibility diffing cannot itself fail (§4.5.7), so there
// is nothing to cancel on error, only a context to respect cooperatively.
func Check(ctx context.Context, oldDecls, newDecls []*ast.Declaration, log *slog.Logger) []SchemaChange {
	if log == nil {
		log = slog.Default()
	}
	oldByName := indexByQualifiedName(oldDecls)
	newByName := indexByQualifiedName(newDecls)
	names := unionNames(oldByName, newByName)
	sort.Strings(names)
	log.Debug("compatibility check started", "declarations", len(names))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		index   int
		changes []SchemaChange
	}
	resCh := make(chan indexed, len(names))
	var wg sync.WaitGroup
	wg.Add(len(names))

	for i, name := range names {
		go func(i int, name string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				resCh <- indexed{index: i}
				return
			default:
			}
			resCh <- indexed{index: i, changes: diffDeclaration(name, oldByName[name], newByName[name])}
		}(i, name)
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()

	perDecl := make([][]SchemaChange, len(names))
	for r := range resCh {
		perDecl[r.index] = r.changes
	}

	var out []SchemaChange
	for _, changes := range perDecl {
		out = append(out, changes...)
	}
	sortChanges(out)
	log.Debug("compatibility check finished", "changes", len(out))
	return out
}

func indexByQualifiedName(decls []*ast.Declaration) map[string]*ast.Declaration {
	out := make(map[string]*ast.Declaration, len(decls))
	for _, d := range decls {
		if d.Kind == ast.DeclForward {
			continue // reconciled forwards never represent an independent wire shape
		}
		out[d.QualifiedName()] = d
	}
	return out
}

func unionNames(a, b map[string]*ast.Declaration) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var names []string
	for name := range a {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range b {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func sortChanges(changes []SchemaChange) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Location != changes[j].Location {
			return changes[i].Location < changes[j].Location
		}
		if changes[i].Category != changes[j].Category {
			return changes[i].Category < changes[j].Category
		}
		return changes[i].Description < changes[j].Description
	})
}

func diffDeclaration(name string, o, n *ast.Declaration) []SchemaChange {
	switch {
	case o == nil && n == nil:
		return nil
	case o == nil:
		return []SchemaChange{change(Compatible, name, "declaration added")}
	case n == nil:
		return []SchemaChange{change(BreakingWire, name, "declaration removed")}
	case o.Kind != n.Kind:
		return []SchemaChange{change(BreakingWire, name, fmt.Sprintf("declaration kind changed from %s to %s", o.Kind, n.Kind))}
	}

	switch o.Kind {
	case ast.DeclStruct, ast.DeclView:
		return diffStruct(name, o, n)
	case ast.DeclEnum:
		return diffEnum(name, o, n)
	case ast.DeclService:
		return diffService(name, o, n)
	case ast.DeclAlias:
		return diffAlias(name, o, n)
	}
	return nil
}

func diffBase(name string, o, n *ast.Type) []SchemaChange {
	if o == nil && n == nil {
		return nil
	}
	if o == nil || n == nil || !ast.StructurallyEqual(o, n) {
		return []SchemaChange{change(BreakingWire, name, "inheritance hierarchy changed")}
	}
	return nil
}

func diffStruct(name string, o, n *ast.Declaration) []SchemaChange {
	var changes []SchemaChange
	changes = append(changes, diffBase(name, o.Base, n.Base)...)

	oFields := fieldsByOrdinal(o.Fields)
	nFields := fieldsByOrdinal(n.Fields)

	ordinals := make(map[int64]bool, len(oFields)+len(nFields))
	for ord := range oFields {
		ordinals[ord] = true
	}
	for ord := range nFields {
		ordinals[ord] = true
	}
	sorted := make([]int64, 0, len(ordinals))
	for ord := range ordinals {
		sorted = append(sorted, ord)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, ord := range sorted {
		of, oIn := oFields[ord]
		nf, nIn := nFields[ord]
		switch {
		case oIn && !nIn:
			cat := Compatible
			if of.Modifier == ast.ModifierRequired {
				cat = BreakingWire
			}
			changes = append(changes, change(cat, name, fmt.Sprintf("field ordinal %d (%s) removed", ord, of.Name)))
		case !oIn && nIn:
			cat := Compatible
			if nf.Modifier == ast.ModifierRequired {
				cat = BreakingWire
			}
			changes = append(changes, change(cat, name, fmt.Sprintf("field ordinal %d (%s) added", ord, nf.Name)))
		default:
			changes = append(changes, diffField(name, of, nf)...)
		}
	}
	return changes
}

func fieldsByOrdinal(fields []*ast.Field) map[int64]*ast.Field {
	out := make(map[int64]*ast.Field, len(fields))
	for _, f := range fields {
		out[f.Ordinal] = f
	}
	return out
}

func diffField(declName string, o, n *ast.Field) []SchemaChange {
	loc := fmt.Sprintf("%s.%d", declName, o.Ordinal)
	var changes []SchemaChange

	if o.Name != n.Name {
		changes = append(changes, change(BreakingText, loc, fmt.Sprintf("field name changed from %q to %q", o.Name, n.Name)))
	}

	if mc, ok := diffModifier(o.Modifier, n.Modifier); ok {
		mc.Location = loc
		changes = append(changes, mc)
	}

	if !ast.StructurallyEqual(o.Type, n.Type) {
		cat, desc, rec := ClassifyTypeChange(o.Type, n.Type)
		changes = append(changes, changeWithRecommendation(cat, loc, desc, rec))
	}

	if !defaultsEqual(o.Default, n.Default) {
		changes = append(changes, change(BreakingWire, loc, "default value changed"))
	}

	return changes
}

func defaultsEqual(o, n *ast.Default) bool {
	if o == nil || n == nil {
		return o == n
	}
	return o.Equal(n)
}

// diffModifier implements §4.5.3's modifier matrix: a direct optional<->required
// transition is BreakingWire; any transition touching required_optional is
// Compatible and carries a two-step migration recommendation. A struct
// field with no explicit modifier is treated as optional.
func diffModifier(o, n ast.Modifier) (SchemaChange, bool) {
	if o == n {
		return SchemaChange{}, false
	}
	ob, nb := normalizeModifierBucket(o), normalizeModifierBucket(n)
	if ob == nb {
		return SchemaChange{}, false
	}
	if ob == bucketRequiredOptional || nb == bucketRequiredOptional {
		return changeWithRecommendation(
			Compatible, "",
			fmt.Sprintf("modifier changed from %s to %s via required_optional", o, n),
			"migrate through required_optional in two releases: widen before narrowing",
		), true
	}
	return change(BreakingWire, "", fmt.Sprintf("modifier changed directly from %s to %s", o, n)), true
}

type modifierBucket int

const (
	bucketOptional modifierBucket = iota
	bucketRequired
	bucketRequiredOptional
)

func normalizeModifierBucket(m ast.Modifier) modifierBucket {
	switch m {
	case ast.ModifierRequired:
		return bucketRequired
	case ast.ModifierRequiredOptional:
		return bucketRequiredOptional
	default:
		return bucketOptional
	}
}

func diffEnum(name string, o, n *ast.Declaration) []SchemaChange {
	var changes []SchemaChange

	oByName := make(map[string]*ast.EnumConstant, len(o.Constants))
	for _, c := range o.Constants {
		oByName[c.Name] = c
	}
	nByName := make(map[string]*ast.EnumConstant, len(n.Constants))
	for _, c := range n.Constants {
		nByName[c.Name] = c
	}

	for _, oc := range o.Constants {
		nc, ok := nByName[oc.Name]
		if !ok {
			changes = append(changes, change(BreakingWire, name, fmt.Sprintf("enum constant %q removed", oc.Name)))
			continue
		}
		if nc.Value != oc.Value {
			changes = append(changes, change(BreakingWire, name,
				fmt.Sprintf("enum constant %q effective value changed from %d to %d", oc.Name, oc.Value, nc.Value)))
		}
	}

	for i, nc := range n.Constants {
		if _, ok := oByName[nc.Name]; ok {
			continue
		}
		if i < len(o.Constants) && !nc.HasExplicitValue {
			changes = append(changes, change(BreakingWire, name,
				fmt.Sprintf("enum constant %q inserted before the old end with an implicit value, shifting subsequent values", nc.Name)))
			continue
		}
		changes = append(changes, change(Compatible, name, fmt.Sprintf("enum constant %q added", nc.Name)))
	}

	return changes
}

func diffService(name string, o, n *ast.Declaration) []SchemaChange {
	var changes []SchemaChange
	changes = append(changes, diffBase(name, o.Base, n.Base)...)

	oByName := make(map[string]*ast.Method, len(o.Methods))
	for _, m := range o.Methods {
		oByName[m.Name] = m
	}
	nByName := make(map[string]*ast.Method, len(n.Methods))
	for _, m := range n.Methods {
		nByName[m.Name] = m
	}

	for _, om := range o.Methods {
		nm, ok := nByName[om.Name]
		loc := name + "." + om.Name
		if !ok {
			changes = append(changes, change(BreakingWire, loc, "method removed"))
			continue
		}
		if methodSignatureChanged(om, nm) {
			changes = append(changes, change(BreakingWire, loc, "method signature changed"))
		}
	}
	for _, nm := range n.Methods {
		if _, ok := oByName[nm.Name]; !ok {
			changes = append(changes, change(Compatible, name+"."+nm.Name, "method added"))
		}
	}
	return changes
}

func methodSignatureChanged(o, n *ast.Method) bool {
	if o.Kind != n.Kind {
		return true
	}
	return !methodTypeEqual(o.Input, n.Input) || !methodTypeEqual(o.Result, n.Result)
}

func methodTypeEqual(o, n *ast.MethodType) bool {
	if o == nil || n == nil {
		return o == n
	}
	if o.Kind != n.Kind {
		return false
	}
	return ast.StructurallyEqual(o.Type, n.Type)
}

func diffAlias(name string, o, n *ast.Declaration) []SchemaChange {
	if ast.StructurallyEqual(o.AliasTarget, n.AliasTarget) {
		return nil
	}
	cat, desc, rec := ClassifyTypeChange(o.AliasTarget, n.AliasTarget)
	return []SchemaChange{changeWithRecommendation(cat, name, desc, rec)}
}

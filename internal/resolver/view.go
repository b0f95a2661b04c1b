package resolver

import (
	"fmt"

	"github.com/mircodz/bbc/internal/ast"
)

// ResolveViews fills in ViewOf and Fields for every view declaration by
// projecting the named fields out of the resolved base struct. The Open
// Question of whether a view narrows or fully mirrors its base is resolved
// as full field projection: a view field is an exact copy of the base
// field's ordinal, modifier, type and default, never a redeclaration with
// its own shape.
func ResolveViews(decls []*ast.Declaration, table *SymbolTable) []*Error {
	var errs []*Error
	for _, d := range decls {
		if d.Kind != ast.DeclView {
			continue
		}
		base, ok := table.LookupName(d.Namespace, d.ViewBaseName)
		if !ok || base.Kind != ast.DeclStruct {
			errs = append(errs, &Error{
				Kind:    UnresolvedType,
				Message: fmt.Sprintf("view %q: base struct %q not found", d.QualifiedName(), d.ViewBaseName),
				Pos:     d.Pos,
			})
			continue
		}
		d.ViewOf = base

		byName := make(map[string]*ast.Field, len(base.Fields))
		for _, f := range base.Fields {
			byName[f.Name] = f
		}
		for _, name := range d.ViewFieldNames {
			bf, ok := byName[name]
			if !ok {
				errs = append(errs, &Error{
					Kind:    UnresolvedType,
					Message: fmt.Sprintf("view %q: base struct %q has no field %q", d.QualifiedName(), d.ViewBaseName, name),
					Pos:     d.Pos,
				})
				continue
			}
			projected := *bf
			d.Fields = append(d.Fields, &projected)
		}
	}
	return errs
}

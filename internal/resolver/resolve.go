package resolver

import (
	"context"
	"log/slog"

	"github.com/mircodz/bbc/internal/ast"
	"github.com/mircodz/bbc/internal/parser"
)

// Resolve performs full semantic analysis (§4.4) of a parsed entry file:
// transitively loading and parsing its imports, registering every file's
// declarations into one symbol table, resolving type references and view
// projections, and validating the result. It returns the symbol table
// (the compatibility checker needs it to look up declarations by name
// across old/new schema versions) alongside every diagnostic collected
// along the way. Every stage runs regardless of errors in earlier ones.
// Registration, import loading, view projection and validation report every
// problem they find; type resolution reports arity mismatches but only the
// first reference still unresolved (see ResolveTypes).
func Resolve(ctx context.Context, entry *ast.BondFile, loadImport ImportResolver, log *slog.Logger) (*SymbolTable, []*Error) {
	if log == nil {
		log = slog.Default()
	}
	table := NewSymbolTable()
	var errs []*Error
	var allDecls []*ast.Declaration

	visited := map[string]bool{entry.Path: true}
	queue := []*ast.BondFile{entry}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]

		for _, d := range file.Declarations {
			if err := table.Register(d); err != nil {
				errs = append(errs, asResolverError(err, d.Pos))
			}
			allDecls = append(allDecls, d)
		}

		_, ignoringImports := loadImport.(NoImportResolver)

		for _, imp := range file.Imports {
			if ignoringImports {
				// §4.6: import statements are still parsed but not loaded;
				// semantic analysis proceeds best-effort against only the
				// locally visible declarations, so this is not a diagnostic.
				continue
			}

			select {
			case <-ctx.Done():
				errs = append(errs, &Error{Kind: ImportFailure, Message: ctx.Err().Error(), Pos: imp.Pos})
				continue
			default:
			}

			canonical, content, err := loadImport.Resolve(ctx, file.Path, imp.Path)
			if err != nil {
				errs = append(errs, asResolverError(err, imp.Pos))
				continue
			}
			if visited[canonical] {
				continue
			}
			visited[canonical] = true

			tree, perr := parser.Parse(canonical, content)
			if perr != nil {
				errs = append(errs, &Error{Kind: ImportFailure, Message: perr.Error(), Pos: imp.Pos})
				continue
			}
			imported, berr := parser.Build(canonical, tree)
			if berr != nil {
				errs = append(errs, &Error{Kind: ImportFailure, Message: berr.Error(), Pos: imp.Pos})
				continue
			}
			queue = append(queue, imported)
		}
	}

	errs = append(errs, ResolveTypes(allDecls, table, log)...)
	errs = append(errs, ResolveViews(allDecls, table)...)
	errs = append(errs, ValidateDeclarations(allDecls)...)

	log.Debug("semantic analysis finished", "declarations", len(allDecls), "errors", len(errs))
	return table, errs
}

func asResolverError(err error, pos ast.Position) *Error {
	if re, ok := err.(*Error); ok {
		return re
	}
	return &Error{Kind: ImportFailure, Message: err.Error(), Pos: pos}
}

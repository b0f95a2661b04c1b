// Package bondc is the root facade of the schema compiler (§4.6): it wires
// lexing, parsing, semantic analysis and compatibility checking into a
// small set of entry points, the way the teacher's pgraph.go wires graph
// construction, DSL parsing and (de)serialization behind New/Load/Query.
package bondc

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mircodz/bbc/internal/ast"
	"github.com/mircodz/bbc/internal/diff"
	"github.com/mircodz/bbc/internal/parser"
	"github.com/mircodz/bbc/internal/resolver"
)

// Re-exported so callers never need to import internal/diff or
// internal/resolver directly.
type (
	Category       = diff.Category
	SchemaChange   = diff.SchemaChange
	ImportResolver = resolver.ImportResolver
)

const (
	Compatible   = diff.Compatible
	BreakingWire = diff.BreakingWire
	BreakingText = diff.BreakingText
)

// ParseError is a single lex/parse/semantic diagnostic (§4.6.3: "Returns a
// result object ... {ok: null|partial AST, errors: [ParseError]}").
type ParseError struct {
	Kind     string
	Message  string
	FilePath string
	Line     int
	Column   int
}

func (e ParseError) Error() string {
	return e.FilePath + ": " + e.Kind + ": " + e.Message
}

// ParseResult is the outcome of compiling one entry file (§4.6). File is
// non-nil whenever the lexer and grammar parser both succeeded, even if
// semantic analysis reported errors against it (a "best-effort partial
// AST"); Success is true only when Errors is empty.
type ParseResult struct {
	File    *ast.BondFile
	Symbols *resolver.SymbolTable
	Errors  []ParseError
	Success bool
}

// Options configures a compilation (§4.6). The documented zero value is
// usable directly: IgnoreImports false, a fresh random CompilationID, and a
// default logger.
type Options struct {
	// IgnoreImports parses and records import statements but does not load
	// them; semantic analysis and type resolution run best-effort against
	// only the locally visible declarations. Used by compatibility diffing
	// when loading a sibling file would fail (e.g. an old git revision).
	IgnoreImports bool

	// Importer loads import statements when IgnoreImports is false. Defaults
	// to DefaultImportResolver.
	Importer ImportResolver

	// Logger receives one Info line per compilation start/end and Debug
	// lines per resolver fixpoint pass. Defaults to slog.Default().
	Logger *slog.Logger

	// CompilationID correlates the log lines of one compilation. Defaults
	// to a fresh random UUID.
	CompilationID string
}

func (o Options) withDefaults() Options {
	if o.Importer == nil {
		if o.IgnoreImports {
			o.Importer = resolver.NoImportResolver{}
		} else {
			o.Importer = DefaultImportResolver{}
		}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.CompilationID == "" {
		o.CompilationID = uuid.New().String()
	}
	return o
}

// DefaultImportResolver loads imports from the local filesystem, resolving
// a relative import path against the importing file's directory.
type DefaultImportResolver struct{}

func (DefaultImportResolver) Resolve(_ context.Context, fromFile, importPath string) (string, string, error) {
	dir := filepath.Dir(fromFile)
	canonical := filepath.Join(dir, importPath)
	content, err := os.ReadFile(canonical)
	if err != nil {
		return "", "", err
	}
	return canonical, string(content), nil
}

// ParseFile compiles the file at path (§4.6).
func ParseFile(ctx context.Context, path string, opts Options) ParseResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{Errors: []ParseError{{Kind: "ImportFailure", Message: err.Error(), FilePath: path}}}
	}
	return ParseContent(ctx, path, string(content), opts)
}

// ParseString compiles src as an in-memory file with the given virtual
// path (§4.6: "an in-memory (content, virtual path)").
func ParseString(ctx context.Context, virtualPath, src string, opts Options) ParseResult {
	return ParseContent(ctx, virtualPath, src, opts)
}

// ParseContent is the shared implementation behind ParseFile and
// ParseString: lex -> parse -> build AST -> semantic analyze -> resolve
// types (§4.6 step 2).
func ParseContent(ctx context.Context, virtualPath, src string, opts Options) ParseResult {
	opts = opts.withDefaults()
	log := opts.Logger.With("compilation_id", opts.CompilationID, "file", virtualPath)
	log.Info("compilation started")

	select {
	case <-ctx.Done():
		log.Info("compilation cancelled")
		return ParseResult{Errors: []ParseError{{Kind: "Cancelled", Message: ctx.Err().Error(), FilePath: virtualPath}}}
	default:
	}

	tree, err := parser.Parse(virtualPath, src)
	if err != nil {
		log.Info("compilation finished", "errors", 1)
		return ParseResult{Errors: []ParseError{toParseError(err, virtualPath)}}
	}

	file, err := parser.Build(virtualPath, tree)
	if err != nil {
		log.Info("compilation finished", "errors", 1)
		return ParseResult{Errors: []ParseError{toParseError(err, virtualPath)}}
	}

	importer := opts.Importer
	if opts.IgnoreImports {
		importer = resolver.NoImportResolver{}
	}

	table, errs := resolver.Resolve(ctx, file, importer, log)
	result := ParseResult{File: file, Symbols: table}
	for _, e := range errs {
		result.Errors = append(result.Errors, ParseError{
			Kind:     e.Kind.String(),
			Message:  e.Message,
			FilePath: e.Pos.File,
			Line:     e.Pos.Line,
			Column:   e.Pos.Column,
		})
	}
	result.Success = len(result.Errors) == 0

	log.Info("compilation finished", "errors", len(result.Errors), "success", result.Success)
	return result
}

func toParseError(err error, path string) ParseError {
	if pe, ok := err.(*parser.Error); ok {
		f := pe.File
		if f == "" {
			f = path
		}
		return ParseError{Kind: pe.Kind.String(), Message: pe.Message, FilePath: f, Line: pe.Line, Column: pe.Column}
	}
	return ParseError{Kind: "SyntaxError", Message: err.Error(), FilePath: path}
}

// CheckCompatibility classifies every difference between two independently
// resolved schemas (§4.5). Both results should have Success == true;
// comparing a partial AST produces a best-effort, not a guaranteed,
// answer.
func CheckCompatibility(ctx context.Context, old, new_ ParseResult, opts Options) []SchemaChange {
	opts = opts.withDefaults()
	log := opts.Logger.With("compilation_id", opts.CompilationID)
	var oldDecls, newDecls []*ast.Declaration
	if old.Symbols != nil {
		oldDecls = old.Symbols.All()
	}
	if new_.Symbols != nil {
		newDecls = new_.Symbols.All()
	}
	return diff.Check(ctx, oldDecls, newDecls, log)
}

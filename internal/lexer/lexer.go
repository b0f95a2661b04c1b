// Package lexer tokenizes Bond IDL source into the token stream the grammar
// parser consumes. It is built on participle's lexer.MustSimple the same
// way the teacher's DSL lexer is: an ordered list of regexp rules, with
// whitespace and comments routed to a hidden channel via participle.Elide
// rather than dropped, so an external formatter could still recover them
// from the raw token stream (§4.1).
package lexer

import "github.com/alecthomas/participle/v2/lexer"

// Rule order matters: participle's regexp-backed simple lexer takes the
// first rule whose pattern matches at the current position, not the
// longest. Keywords must precede Ident (otherwise "struct" lexes as an
// identifier); MetaName/MetaFullName must precede Ident (otherwise Ident
// takes "bond_meta" on its own, leaving "::" and "name" as separate
// tokens);
// Float must precede Int (otherwise "1.5" lexes as Int "1" then a stray
// "."); HexInt must precede Int (otherwise "0x1A" lexes as Int "0" then
// Ident "x1A").
var bondLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*[^/])*\*/`},
	{Name: "MetaName", Pattern: `bond_meta::name`},
	{Name: "MetaFullName", Pattern: `bond_meta::full_name`},
	{Name: "Keyword", Pattern: `\b(import|namespace|using|struct|enum|service|view_of|optional|required_optional|required|void|stream|nothing|value|cpp|csharp|cs|java)\b`},
	{Name: "Float", Pattern: `[+-]?\d+\.\d+([eE][+-]?\d+)?`},
	{Name: "HexInt", Pattern: `[+-]?0[xX][0-9a-fA-F]+`},
	{Name: "Int", Pattern: `[+-]?\d+`},
	{Name: "String", Pattern: `L?"([^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `::|[{}\[\]()<>;:,.=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Definition exposes the built lexer definition for participle.Build options
// and for any caller that wants the raw unfiltered token stream (including
// Whitespace and Comment tokens) rather than going through the grammar
// parser at all.
func Definition() lexer.Definition {
	return bondLexer
}

// Tokenize returns every token in src, including hidden-channel ones, with
// line/column positions starting at 1. filename is attached to each token's
// position for diagnostics; it may be empty for in-memory content.
func Tokenize(filename, src string) ([]lexer.Token, error) {
	lex, err := bondLexer.LexString(filename, src)
	if err != nil {
		return nil, err
	}
	return lexer.ConsumeAll(lex)
}

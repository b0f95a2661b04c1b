// Package parser turns a token stream into a concrete parse tree (§4.2,
// the Grammar Parser component) and then builds the typed AST of
// internal/ast from that tree (§4.3, the AST Builder component). Both
// stages live here because the struct tags that drive participle's parse
// *are* the grammar, and the build pass over those same struct types is
// the natural next step once parsing succeeds — splitting them across
// packages would only add an import for no isolation benefit, mirroring
// how the teacher's dsl package keeps grammar.go (grammar) and convert.go
// (concrete tree -> domain types) as sibling files of one package.
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	bondlexer "github.com/mircodz/bbc/internal/lexer"
)

// Positions is embedded in every concrete-tree node participle should
// annotate with a source range. participle recognizes the field names Pos
// and EndPos by convention and fills them in automatically, the same
// convention the vdl toolchain example's AST package documents and relies
// on throughout.
type Positions struct {
	Pos    lexer.Position
	EndPos lexer.Position
}

// File is the root of the concrete parse tree, mirroring the `bond`
// production of §6.1: import* namespace+ declaration*.
type File struct {
	Positions
	Imports      []*ImportNode      `parser:"@@*"`
	Namespaces   []*NamespaceNode   `parser:"@@+"`
	Declarations []*DeclarationNode `parser:"@@*"`
}

// ImportNode: import := 'import' string_literal ';'?
type ImportNode struct {
	Positions
	Path string `parser:"\"import\" @String \";\"?"`
}

// NamespaceNode: namespace := 'namespace' lang? qualified_name ';'?
type NamespaceNode struct {
	Positions
	Language string             `parser:"\"namespace\" @(\"cpp\"|\"cs\"|\"csharp\"|\"java\")?"`
	Name     *QualifiedNameNode `parser:"@@ \";\"?"`
}

// QualifiedNameNode: qualified_name := ident ('.' ident)*
type QualifiedNameNode struct {
	Positions
	Parts []string `parser:"@Ident (\".\" @Ident)*"`
}

// GenericParamsNode: type_params := '<' ident (',' ident)* '>'
type GenericParamsNode struct {
	Positions
	Names []string `parser:"\"<\" @Ident (\",\" @Ident)* \">\""`
}

// AttributeNode: one bracketed attribute, '[' qualified_name '('
// string_literal ')' ']'. Each node consumes its own '[' and ']'; several
// attributes are written as consecutive bracketed entries, collected by the
// repeating `@@*` at each use site. A comma-separated list inside one pair
// of brackets is not accepted.
type AttributeNode struct {
	Positions
	Name  *QualifiedNameNode `parser:"\"[\" @@"`
	Value string             `parser:"\"(\" @String \")\" \"]\""`
}

// DeclarationNode dispatches the five declaration kinds of §3.1.
// Forward and Struct are merged into StructLikeDeclNode because they share
// an unbounded "struct ident type_params?" prefix (§6.1's forward and
// struct productions); splitting them into sibling alternatives would make
// the parser backtrack across that whole prefix for every struct.
type DeclarationNode struct {
	Positions
	StructLike *StructLikeDeclNode `parser:"  @@"`
	Alias      *AliasDeclNode      `parser:"| @@"`
	Enum       *EnumDeclNode       `parser:"| @@"`
	Service    *ServiceDeclNode    `parser:"| @@"`
}

// StructLikeDeclNode covers forward, struct-with-view, and
// struct-with-definition: all three share `attrs? 'struct' ident
// type_params?` and are distinguished only by what follows. Build()
// classifies the result into ast.DeclForward / ast.DeclView / ast.DeclStruct.
type StructLikeDeclNode struct {
	Positions
	Attributes []*AttributeNode   `parser:"@@*"`
	Name       string             `parser:"\"struct\" @Ident"`
	Params     *GenericParamsNode `parser:"@@?"`
	Forward    bool               `parser:"  @\";\""`
	View       *ViewDeclNode      `parser:"| @@"`
	Def        *StructDefNode     `parser:"| @@"`
}

// ViewDeclNode: view := 'view_of' qualified_name '{' ident (sep ident)* sep? '}' ';'?
type ViewDeclNode struct {
	Positions
	BaseName *QualifiedNameNode `parser:"\"view_of\" @@"`
	Fields   []string           `parser:"\"{\" @Ident ( (\";\"|\",\") @Ident )* (\";\"|\",\")? \"}\" \";\"?"`
}

// StructDefNode: def := (':' user_type)? '{' (field ';')* '}' ';'?
type StructDefNode struct {
	Positions
	Base   *UserTypeNode `parser:"(\":\" @@)?"`
	Fields []*FieldNode  `parser:"\"{\" (@@ \";\")* \"}\" \";\"?"`
}

// FieldNode: field := attrs? int ':' modifier? field_type ident ('=' default)?
type FieldNode struct {
	Positions
	Attributes []*AttributeNode `parser:"@@*"`
	Ordinal    *IntLiteralNode  `parser:"@@ \":\""`
	Modifier   string           `parser:"@(\"optional\"|\"required_optional\"|\"required\")?"`
	Type       *TypeNode        `parser:"@@"`
	Name       string           `parser:"@Ident"`
	Default    *DefaultNode     `parser:"(\"=\" @@)?"`
}

// TypeNode is the concrete-tree counterpart of ast.Type. Container
// keywords (list, vector, set, map, nullable, bonded) are matched as
// literals against plain Ident tokens rather than declared in the lexer's
// Keyword rule — participle matches a quoted literal against any token
// whose text equals it, the same mechanism the teacher's grammar uses to
// match "CREATE"/"NODE" against its single merged Keyword token. A bare
// identifier that is none of those six (including every primitive type
// name) falls through to User and is resolved later: primitive names in
// §4.4.4 of the resolver, generic-scope single-segment names as
// TypeParameter in Build() below.
type TypeNode struct {
	Positions
	List         *TypeNode     `parser:"  \"list\" \"<\" @@ \">\""`
	Vector       *TypeNode     `parser:"| \"vector\" \"<\" @@ \">\""`
	Set          *TypeNode     `parser:"| \"set\" \"<\" @@ \">\""`
	Map          *MapTypeNode  `parser:"| \"map\" \"<\" @@ \">\""`
	Nullable     *TypeNode     `parser:"| \"nullable\" \"<\" @@ \">\""`
	Bonded       *UserTypeNode `parser:"| \"bonded\" \"<\" @@ \">\""`
	MetaName     bool          `parser:"| @MetaName"`
	MetaFullName bool          `parser:"| @MetaFullName"`
	User         *UserTypeNode `parser:"| @@"`
}

// MapTypeNode: the two type arguments of 'map' '<' type ',' type '>'.
type MapTypeNode struct {
	Positions
	Key   *TypeNode `parser:"@@ \",\""`
	Value *TypeNode `parser:"@@"`
}

// UserTypeNode: qualified_name optionally followed by generic type
// arguments. Used both for field/return types naming a declaration and for
// the `: user_type` base-type clauses of struct/service.
type UserTypeNode struct {
	Positions
	Name string         `parser:"@Ident"`
	More []string       `parser:"(\".\" @Ident)*"`
	Args []*TypeArgNode `parser:"(\"<\" @@ (\",\" @@)* \">\")?"`
}

// TypeArgNode: a generic argument is either a type or an integer literal
// (§3.2 IntTypeArg, used for fixed-width types).
type TypeArgNode struct {
	Positions
	Type *TypeNode       `parser:"  @@"`
	Int  *IntLiteralNode `parser:"| @@"`
}

// IntLiteralNode captures a decimal or hex integer token verbatim; Build()
// decodes sign and base rather than relying on participle's generic
// numeric-capture conversion, since that conversion does not understand
// Bond's `0x…` hex literals.
type IntLiteralNode struct {
	Positions
	Text string `parser:"@(Int | HexInt)"`
}

// DefaultNode: default := 'nothing' | bool | float | int | string | ident.
// An ident default names an enum constant; which enum constant is resolved
// during semantic analysis (§4.4.3), not here.
type DefaultNode struct {
	Positions
	Nothing bool            `parser:"  @\"nothing\""`
	Bool    string          `parser:"| @(\"true\"|\"false\")"`
	Float   string          `parser:"| @Float"`
	Int     *IntLiteralNode `parser:"| @@"`
	Str     string          `parser:"| @String"`
	Ident   string          `parser:"| @Ident"`
}

// AliasDeclNode: alias := 'using' ident type_params? '=' type ';'
type AliasDeclNode struct {
	Positions
	Name   string             `parser:"\"using\" @Ident"`
	Params *GenericParamsNode `parser:"@@?"`
	Target *TypeNode          `parser:"\"=\" @@ \";\""`
}

// EnumDeclNode: enum := attrs? 'enum' ident '{' constant (sep constant)* sep? '}' ';'?
type EnumDeclNode struct {
	Positions
	Attributes []*AttributeNode    `parser:"@@*"`
	Name       string              `parser:"\"enum\" @Ident"`
	Constants  []*EnumConstantNode `parser:"\"{\" @@ ( (\";\"|\",\") @@ )* (\";\"|\",\")? \"}\" \";\"?"`
}

// EnumConstantNode: constant := attrs? ident ('=' int)?
type EnumConstantNode struct {
	Positions
	Attributes []*AttributeNode `parser:"@@*"`
	Name       string           `parser:"@Ident"`
	Value      *IntLiteralNode  `parser:"(\"=\" @@)?"`
}

// ServiceDeclNode: service := attrs? 'service' ident type_params? (':' service_type)? '{' method* '}' ';'?
type ServiceDeclNode struct {
	Positions
	Attributes []*AttributeNode   `parser:"@@*"`
	Name       string             `parser:"\"service\" @Ident"`
	Params     *GenericParamsNode `parser:"@@?"`
	Base       *UserTypeNode      `parser:"(\":\" @@)?"`
	Methods    []*MethodNode      `parser:"\"{\" @@* \"}\" \";\"?"`
}

// MethodNode: method := attrs? ((result_type | 'nothing') ident '(' param? ')') ';'?
// A leading 'nothing' marks an Event method (implicit nothing result); a
// leading method_type marks a Function method with that result.
type MethodNode struct {
	Positions
	Attributes []*AttributeNode `parser:"@@*"`
	Nothing    bool             `parser:"(  @\"nothing\""`
	Result     *MethodTypeNode  `parser:" | @@ )"`
	Name       string           `parser:"@Ident"`
	Param      *MethodTypeNode  `parser:"\"(\" @@? \")\" \";\"?"`
}

// MethodTypeNode: a method's result or input slot: void, stream<T>, or a
// bare user type (§3.1 Void / Unary(UserStruct) / Streaming(UserStruct)).
type MethodTypeNode struct {
	Positions
	Void   bool          `parser:"  @\"void\""`
	Stream *UserTypeNode `parser:"| \"stream\" \"<\" @@ \">\""`
	User   *UserTypeNode `parser:"| @@"`
}

// Parser is the participle singleton built from the grammar above. A
// generous lookahead is needed because StructLikeDeclNode, TypeNode and
// MethodNode all commit to a branch only after a multi-token shared
// prefix; without it participle would reject valid input the moment one
// alternative's early tokens matched but its continuation did not.
var Parser = participle.MustBuild[File](
	participle.Lexer(bondlexer.Definition()),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(1024),
)

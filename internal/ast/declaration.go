package ast

// DeclKind discriminates the Declaration sum type (§3.1, §3.3).
type DeclKind int

const (
	DeclInvalid DeclKind = iota
	DeclStruct
	DeclView
	DeclEnum
	DeclService
	DeclAlias
	DeclForward
)

func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct"
	case DeclView:
		return "view"
	case DeclEnum:
		return "enum"
	case DeclService:
		return "service"
	case DeclAlias:
		return "alias"
	case DeclForward:
		return "forward"
	}
	return "invalid"
}

// GenericParam is one entry of a struct/alias's generic parameter list
// (§3.2). Bond generic parameters are unconstrained names substituted with
// concrete types or integer literals at use sites.
type GenericParam struct {
	Name string
	Pos  Position
}

// Attribute is a `[Name("value")]` decoration attached to a declaration,
// field or enum constant (§3.1). Bond attributes are opaque metadata: the
// compiler records them but assigns them no semantics of its own.
type Attribute struct {
	Name  string
	Value string
	Pos   Position
}

// EnumConstant is one `name = value` (or bare `name`) member of an enum
// declaration (§3.1, §4.3 implicit-value assignment).
type EnumConstant struct {
	Name       string
	Value      int32
	HasExplicitValue bool
	Attributes []*Attribute
	Pos        Position
}

// Declaration is the flat sum type covering every kind of top-level Bond
// declaration, mirroring ast.Type's Kind-discriminated shape and the
// teacher's result.Result/Kind() split: exactly the fields relevant to Kind
// are populated.
type Declaration struct {
	Kind DeclKind
	Pos  Position

	Name      string
	Namespace string // name of the file's unqualified namespace, e.g. "T"; "" if the file declares only language-qualified ones
	File      string // source file path the declaration came from

	GenericParams []*GenericParam
	Attributes    []*Attribute

	// Struct and View.
	Fields []*Field
	Base   *Type // struct base type, nil if none

	// View-only: ViewBaseName/ViewFieldNames are the as-written
	// `view_of` base name and projected field names; ViewOf and Fields
	// are filled in once the resolver has looked the base struct up and
	// projected the named fields (§4.4, Open Question resolution: full
	// field projection against the named base).
	ViewBaseName   string
	ViewFieldNames []string
	ViewOf         *Declaration

	// Enum.
	Constants []*EnumConstant

	// Service.
	Methods []*Method

	// Alias: the type the alias names, resolved in place (§4.4.4). Use
	// sites are not flattened: a reference to the alias resolves to a
	// UserDefined type whose Decl is this alias, and the target may itself
	// be another alias. The declaration keeps it for diagnostics and for
	// diffing alias declarations directly (§4.5.5).
	AliasTarget *Type

	// Forward: the number of generic parameters the eventual definition
	// must carry (bare count, since a forward declaration has no names
	// for them yet).
	ForwardArity int

	// ResolvedBy is set once a forward declaration is reconciled against
	// its matching full declaration (§4.4.2); nil until then, and always
	// nil on non-forward declarations.
	ResolvedBy *Declaration

	// synthesized marks a declaration the resolver manufactured to stand
	// in for an otherwise-unreachable self-reference rather than one
	// that appeared in source as `forward`.
	synthesized bool
}

// QualifiedName returns "Namespace.Name", or bare Name when Namespace is
// empty.
func (d *Declaration) QualifiedName() string {
	if d == nil {
		return ""
	}
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

// IsGeneric reports whether the declaration takes generic parameters.
func (d *Declaration) IsGeneric() bool {
	return len(d.GenericParams) > 0
}

// Synthesized reports whether the resolver manufactured this declaration to
// break a self-reference cycle rather than finding it in source.
func (d *Declaration) Synthesized() bool {
	return d.synthesized
}

// MarkSynthesized flags d as resolver-manufactured. Called only from
// internal/resolver during forward-declaration synthesis.
func (d *Declaration) MarkSynthesized() {
	d.synthesized = true
}

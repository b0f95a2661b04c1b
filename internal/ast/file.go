package ast

// Namespace is one `namespace [lang] Name` statement (§3.1). A file may
// declare several, one per target language plus at most one unqualified
// default; Language is "" for the unqualified form.
type Namespace struct {
	Language string
	Name     string
	Pos      Position
}

// Import is one `import "path";` statement (§3.1, §4.4.1 import loading).
type Import struct {
	Path string
	Pos  Position
}

// BondFile is the root of a single compiled .bond file's AST (§3.1): the
// result the AST builder hands to the resolver, and what a caller of
// bondc.ParseFile ultimately inspects.
type BondFile struct {
	Path         string
	Namespaces   []*Namespace
	Imports      []*Import
	Declarations []*Declaration
}

// NamespaceFor returns the namespace name that applies for the given
// target language, falling back to the unqualified default namespace, and
// ok=false if neither is declared.
func (f *BondFile) NamespaceFor(language string) (string, bool) {
	var def string
	haveDef := false
	for _, ns := range f.Namespaces {
		if ns.Language == language {
			return ns.Name, true
		}
		if ns.Language == "" {
			def = ns.Name
			haveDef = true
		}
	}
	return def, haveDef
}

// DeclarationByName returns the first top-level declaration with the given
// unqualified name, or nil if none matches.
func (f *BondFile) DeclarationByName(name string) *Declaration {
	for _, d := range f.Declarations {
		if d.Name == name {
			return d
		}
	}
	return nil
}

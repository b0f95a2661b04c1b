package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mircodz/bbc/internal/ast"
)

// Build converts a concrete parse tree into the typed AST of internal/ast,
// applying the deterministic policies of §4.3: ordinal sort, Maybe-wrapping
// of `nothing`-defaulted fields, literal unescaping, and generic-scope
// classification of single-segment type references. Every other type
// reference is left as ast.KindUnresolvedUserType; resolving those against
// declarations is internal/resolver's job (§4.4.4).
func Build(filename string, tree *File) (*ast.BondFile, error) {
	b := &builder{file: filename}
	return b.buildFile(tree)
}

type builder struct {
	file string
}

func (b *builder) pos(p Positions) ast.Position {
	return ast.Position{File: b.file, Line: p.Pos.Line, Column: p.Pos.Column}
}

func (b *builder) lexicalErr(p Positions, format string, args ...any) error {
	return &Error{
		Kind:    LexicalError,
		Message: fmt.Sprintf(format, args...),
		File:    b.file,
		Line:    p.Pos.Line,
		Column:  p.Pos.Column,
	}
}

func (b *builder) buildFile(tree *File) (*ast.BondFile, error) {
	out := &ast.BondFile{Path: b.file}

	for _, imp := range tree.Imports {
		path, err := unescapeBondString(imp.Path)
		if err != nil {
			return nil, b.lexicalErr(imp.Positions, "import path: %v", err)
		}
		out.Imports = append(out.Imports, &ast.Import{Path: path, Pos: b.pos(imp.Positions)})
	}

	for _, ns := range tree.Namespaces {
		out.Namespaces = append(out.Namespaces, &ast.Namespace{
			Language: ns.Language,
			Name:     strings.Join(ns.Name.Parts, "."),
			Pos:      b.pos(ns.Positions),
		})
	}

	defaultNamespace, _ := out.NamespaceFor("")

	for _, decl := range tree.Declarations {
		d, err := b.buildDeclaration(decl)
		if err != nil {
			return nil, err
		}
		d.Namespace = defaultNamespace
		d.File = b.file
		out.Declarations = append(out.Declarations, d)
	}
	return out, nil
}

// genericScope maps a struct/alias/service's declared generic parameter
// names to the ast.GenericParam they produced, so a single-segment type
// reference matching one of them becomes TypeParameter rather than
// UnresolvedUserType (§4.3).
type genericScope map[string]*ast.GenericParam

func (b *builder) buildGenericParams(node *GenericParamsNode) ([]*ast.GenericParam, genericScope) {
	if node == nil {
		return nil, nil
	}
	params := make([]*ast.GenericParam, 0, len(node.Names))
	scope := make(genericScope, len(node.Names))
	for _, name := range node.Names {
		p := &ast.GenericParam{Name: name, Pos: b.pos(node.Positions)}
		params = append(params, p)
		scope[name] = p
	}
	return params, scope
}

func (b *builder) buildAttributes(nodes []*AttributeNode) ([]*ast.Attribute, error) {
	var out []*ast.Attribute
	for _, n := range nodes {
		value, err := unescapeBondString(n.Value)
		if err != nil {
			return nil, b.lexicalErr(n.Positions, "attribute value: %v", err)
		}
		out = append(out, &ast.Attribute{
			Name:  strings.Join(n.Name.Parts, "."),
			Value: value,
			Pos:   b.pos(n.Positions),
		})
	}
	return out, nil
}

func (b *builder) buildDeclaration(node *DeclarationNode) (*ast.Declaration, error) {
	switch {
	case node.StructLike != nil:
		return b.buildStructLike(node.StructLike)
	case node.Alias != nil:
		return b.buildAlias(node.Alias)
	case node.Enum != nil:
		return b.buildEnum(node.Enum)
	case node.Service != nil:
		return b.buildService(node.Service)
	}
	return nil, b.lexicalErr(node.Positions, "empty declaration node")
}

func (b *builder) buildStructLike(node *StructLikeDeclNode) (*ast.Declaration, error) {
	attrs, err := b.buildAttributes(node.Attributes)
	if err != nil {
		return nil, err
	}
	params, scope := b.buildGenericParams(node.Params)

	d := &ast.Declaration{
		Pos:           b.pos(node.Positions),
		Name:          node.Name,
		GenericParams: params,
		Attributes:    attrs,
	}

	switch {
	case node.Forward:
		d.Kind = ast.DeclForward
		d.ForwardArity = len(params)
		return d, nil

	case node.View != nil:
		d.Kind = ast.DeclView
		d.ViewBaseName = strings.Join(node.View.BaseName.Parts, ".")
		d.ViewFieldNames = append([]string(nil), node.View.Fields...)
		return d, nil

	case node.Def != nil:
		d.Kind = ast.DeclStruct
		if node.Def.Base != nil {
			base, err := b.buildUserType(node.Def.Base, scope)
			if err != nil {
				return nil, err
			}
			d.Base = base
		}
		fields, err := b.buildFields(node.Def.Fields, scope)
		if err != nil {
			return nil, err
		}
		d.Fields = fields
		return d, nil
	}
	return nil, b.lexicalErr(node.Positions, "struct declaration with neither forward, view, nor definition body")
}

// buildFields applies the §4.3 ordinal-sort policy: the returned slice is
// ascending by Ordinal regardless of source order. Duplicate ordinals are
// left for validation (§4.4.3) to reject; sort.SliceStable preserves
// source order among them so diagnostics are reproducible.
func (b *builder) buildFields(nodes []*FieldNode, scope genericScope) ([]*ast.Field, error) {
	fields := make([]*ast.Field, 0, len(nodes))
	for _, n := range nodes {
		f, err := b.buildField(n, scope)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Ordinal < fields[j].Ordinal })
	return fields, nil
}

func (b *builder) buildField(node *FieldNode, scope genericScope) (*ast.Field, error) {
	attrs, err := b.buildAttributes(node.Attributes)
	if err != nil {
		return nil, err
	}
	ordinal, err := parseIntLiteral(node.Ordinal.Text)
	if err != nil {
		return nil, b.lexicalErr(node.Ordinal.Positions, "field ordinal %q: %v", node.Ordinal.Text, err)
	}
	typ, err := b.buildType(node.Type, scope)
	if err != nil {
		return nil, err
	}
	def, err := b.buildDefault(node.Default)
	if err != nil {
		return nil, err
	}
	// A `nothing` default wraps the declared type in Maybe(T); the
	// original default is retained alongside it (§4.3).
	if def != nil && def.Kind == ast.DefaultNothing {
		typ = &ast.Type{Kind: ast.KindMaybe, Element: typ, Pos: typ.Pos}
	}
	return &ast.Field{
		Ordinal:    ordinal,
		Name:       node.Name,
		Modifier:   modifierFromString(node.Modifier),
		Type:       typ,
		Default:    def,
		Attributes: attrs,
		Pos:        b.pos(node.Positions),
	}, nil
}

func modifierFromString(s string) ast.Modifier {
	switch s {
	case "optional":
		return ast.ModifierOptional
	case "required":
		return ast.ModifierRequired
	case "required_optional":
		return ast.ModifierRequiredOptional
	}
	return ast.ModifierNone
}

func (b *builder) buildType(node *TypeNode, scope genericScope) (*ast.Type, error) {
	pos := b.pos(node.Positions)
	switch {
	case node.List != nil:
		inner, err := b.buildType(node.List, scope)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.KindList, Element: inner, Pos: pos}, nil
	case node.Vector != nil:
		inner, err := b.buildType(node.Vector, scope)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.KindVector, Element: inner, Pos: pos}, nil
	case node.Set != nil:
		inner, err := b.buildType(node.Set, scope)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.KindSet, Element: inner, Pos: pos}, nil
	case node.Map != nil:
		key, err := b.buildType(node.Map.Key, scope)
		if err != nil {
			return nil, err
		}
		value, err := b.buildType(node.Map.Value, scope)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.KindMap, Key: key, Value: value, Pos: pos}, nil
	case node.Nullable != nil:
		inner, err := b.buildType(node.Nullable, scope)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.KindNullable, Element: inner, Pos: pos}, nil
	case node.Bonded != nil:
		inner, err := b.buildUserType(node.Bonded, scope)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Kind: ast.KindBonded, Element: inner, Pos: pos}, nil
	case node.MetaName:
		return &ast.Type{Kind: ast.KindMetaName, Pos: pos}, nil
	case node.MetaFullName:
		return &ast.Type{Kind: ast.KindMetaFullName, Pos: pos}, nil
	case node.User != nil:
		return b.buildUserType(node.User, scope)
	}
	return nil, b.lexicalErr(node.Positions, "empty type node")
}

func (b *builder) buildUserType(node *UserTypeNode, scope genericScope) (*ast.Type, error) {
	pos := b.pos(node.Positions)
	if len(node.More) == 0 && len(node.Args) == 0 && scope != nil {
		if param, ok := scope[node.Name]; ok {
			return &ast.Type{Kind: ast.KindTypeParameter, Param: param, Pos: pos}, nil
		}
	}
	name := node.Name
	if len(node.More) > 0 {
		name = strings.Join(append([]string{node.Name}, node.More...), ".")
	}
	var args []*ast.Type
	for _, a := range node.Args {
		arg, err := b.buildTypeArg(a, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &ast.Type{Kind: ast.KindUnresolvedUserType, Name: name, UnresolvedArgs: args, Pos: pos}, nil
}

func (b *builder) buildTypeArg(node *TypeArgNode, scope genericScope) (*ast.Type, error) {
	pos := b.pos(node.Positions)
	switch {
	case node.Type != nil:
		return b.buildType(node.Type, scope)
	case node.Int != nil:
		v, err := parseIntLiteral(node.Int.Text)
		if err != nil {
			return nil, b.lexicalErr(node.Int.Positions, "integer type argument: %v", err)
		}
		return &ast.Type{Kind: ast.KindIntTypeArg, IntValue: v, Pos: pos}, nil
	}
	return nil, b.lexicalErr(node.Positions, "empty type argument")
}

func (b *builder) buildDefault(node *DefaultNode) (*ast.Default, error) {
	if node == nil {
		return nil, nil
	}
	pos := b.pos(node.Positions)
	switch {
	case node.Nothing:
		return &ast.Default{Kind: ast.DefaultNothing, Pos: pos}, nil
	case node.Bool != "":
		return &ast.Default{Kind: ast.DefaultBool, Bool: node.Bool == "true", Pos: pos}, nil
	case node.Float != "":
		v, err := strconv.ParseFloat(node.Float, 64)
		if err != nil {
			return nil, b.lexicalErr(node.Positions, "float default %q: %v", node.Float, err)
		}
		return &ast.Default{Kind: ast.DefaultFloat, Float: v, Pos: pos}, nil
	case node.Int != nil:
		v, err := parseIntLiteral(node.Int.Text)
		if err != nil {
			return nil, b.lexicalErr(node.Int.Positions, "integer default: %v", err)
		}
		return &ast.Default{Kind: ast.DefaultInteger, Integer: v, Pos: pos}, nil
	case node.Str != "":
		s, err := unescapeBondString(node.Str)
		if err != nil {
			return nil, b.lexicalErr(node.Positions, "string default: %v", err)
		}
		return &ast.Default{Kind: ast.DefaultString, String: s, Pos: pos}, nil
	case node.Ident != "":
		return &ast.Default{Kind: ast.DefaultEnumConstant, EnumConstantName: node.Ident, Pos: pos}, nil
	}
	return nil, b.lexicalErr(node.Positions, "empty default node")
}

func (b *builder) buildAlias(node *AliasDeclNode) (*ast.Declaration, error) {
	params, scope := b.buildGenericParams(node.Params)
	target, err := b.buildType(node.Target, scope)
	if err != nil {
		return nil, err
	}
	return &ast.Declaration{
		Kind:          ast.DeclAlias,
		Pos:           b.pos(node.Positions),
		Name:          node.Name,
		GenericParams: params,
		AliasTarget:   target,
	}, nil
}

func (b *builder) buildEnum(node *EnumDeclNode) (*ast.Declaration, error) {
	attrs, err := b.buildAttributes(node.Attributes)
	if err != nil {
		return nil, err
	}
	d := &ast.Declaration{
		Kind:       ast.DeclEnum,
		Pos:        b.pos(node.Positions),
		Name:       node.Name,
		Attributes: attrs,
	}
	var previous int32 = -1
	for _, cn := range node.Constants {
		cattrs, err := b.buildAttributes(cn.Attributes)
		if err != nil {
			return nil, err
		}
		c := &ast.EnumConstant{Name: cn.Name, Attributes: cattrs, Pos: b.pos(cn.Positions)}
		if cn.Value != nil {
			v, err := parseIntLiteral(cn.Value.Text)
			if err != nil {
				return nil, b.lexicalErr(cn.Value.Positions, "enum constant value: %v", err)
			}
			c.Value = int32(v)
			c.HasExplicitValue = true
		} else {
			c.Value = previous + 1
		}
		previous = c.Value
		d.Constants = append(d.Constants, c)
	}
	return d, nil
}

func (b *builder) buildService(node *ServiceDeclNode) (*ast.Declaration, error) {
	attrs, err := b.buildAttributes(node.Attributes)
	if err != nil {
		return nil, err
	}
	params, scope := b.buildGenericParams(node.Params)
	d := &ast.Declaration{
		Kind:          ast.DeclService,
		Pos:           b.pos(node.Positions),
		Name:          node.Name,
		GenericParams: params,
		Attributes:    attrs,
	}
	if node.Base != nil {
		base, err := b.buildUserType(node.Base, scope)
		if err != nil {
			return nil, err
		}
		d.Base = base
	}
	for _, mn := range node.Methods {
		m, err := b.buildMethod(mn, scope)
		if err != nil {
			return nil, err
		}
		d.Methods = append(d.Methods, m)
	}
	return d, nil
}

func (b *builder) buildMethod(node *MethodNode, scope genericScope) (*ast.Method, error) {
	attrs, err := b.buildAttributes(node.Attributes)
	if err != nil {
		return nil, err
	}
	m := &ast.Method{Name: node.Name, Attributes: attrs, Pos: b.pos(node.Positions)}
	if node.Nothing {
		m.Kind = ast.MethodEvent
		m.Result = &ast.MethodType{Kind: ast.MethodTypeVoid}
	} else {
		m.Kind = ast.MethodRequestResponse
		result, err := b.buildMethodType(node.Result, scope)
		if err != nil {
			return nil, err
		}
		m.Result = result
	}
	input, err := b.buildMethodType(node.Param, scope)
	if err != nil {
		return nil, err
	}
	m.Input = input
	return m, nil
}

func (b *builder) buildMethodType(node *MethodTypeNode, scope genericScope) (*ast.MethodType, error) {
	if node == nil {
		return &ast.MethodType{Kind: ast.MethodTypeVoid}, nil
	}
	pos := b.pos(node.Positions)
	switch {
	case node.Void:
		return &ast.MethodType{Kind: ast.MethodTypeVoid, Pos: pos}, nil
	case node.Stream != nil:
		t, err := b.buildUserType(node.Stream, scope)
		if err != nil {
			return nil, err
		}
		return &ast.MethodType{Kind: ast.MethodTypeStreaming, Type: t, Pos: pos}, nil
	case node.User != nil:
		t, err := b.buildUserType(node.User, scope)
		if err != nil {
			return nil, err
		}
		return &ast.MethodType{Kind: ast.MethodTypeUnary, Type: t, Pos: pos}, nil
	}
	return &ast.MethodType{Kind: ast.MethodTypeVoid, Pos: pos}, nil
}

// parseIntLiteral decodes a decimal or `0x…` hex integer literal with an
// optional leading sign. strconv.ParseInt's base-0 auto-detection is
// deliberately not used: it treats a leading "0" as an octal prefix, but
// §4.3 only grants octal meaning inside string escapes, not integer
// literals — "010" must parse as decimal 10, not octal 8.
func parseIntLiteral(text string) (int64, error) {
	sign := int64(1)
	rest := text
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		if rest[0] == '-' {
			sign = -1
		}
		rest = rest[1:]
	}
	if len(rest) > 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		v, err := strconv.ParseUint(rest[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return sign * int64(v), nil
	}
	v, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, err
	}
	return sign * v, nil
}

// unescapeBondString decodes a Bond string literal token (quotes included,
// optional leading wide-string `L` prefix) per §4.3/§6.1: backslash escapes
// `\\ \" \' \b \t \n \f \r`, `\xHH`, `\uHHHH`, `\UHHHHHHHH`, and octal
// `\NNN` (one to three digits).
func unescapeBondString(raw string) (string, error) {
	s := raw
	if strings.HasPrefix(s, "L") {
		s = s[1:]
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("malformed string literal %q", raw)
	}
	s = s[1 : len(s)-1]

	var out strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("trailing backslash in string literal")
		}
		switch e := s[i]; e {
		case '\\', '"', '\'':
			out.WriteByte(e)
		case 'b':
			out.WriteByte('\b')
		case 't':
			out.WriteByte('\t')
		case 'n':
			out.WriteByte('\n')
		case 'f':
			out.WriteByte('\f')
		case 'r':
			out.WriteByte('\r')
		case 'x':
			if i+2 >= len(s) {
				return "", fmt.Errorf("truncated \\x escape")
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape: %w", err)
			}
			out.WriteByte(byte(v))
			i += 2
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("truncated \\u escape")
			}
			v, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\u escape: %w", err)
			}
			out.WriteRune(rune(v))
			i += 4
		case 'U':
			if i+8 >= len(s) {
				return "", fmt.Errorf("truncated \\U escape")
			}
			v, err := strconv.ParseUint(s[i+1:i+9], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\U escape: %w", err)
			}
			if !utf8.ValidRune(rune(v)) {
				return "", fmt.Errorf("invalid code point in \\U escape: %x", v)
			}
			out.WriteRune(rune(v))
			i += 8
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := 1
			for n < 3 && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '7' {
				n++
			}
			v, err := strconv.ParseUint(s[i:i+n], 8, 8)
			if err != nil {
				return "", fmt.Errorf("bad octal escape: %w", err)
			}
			out.WriteByte(byte(v))
			i += n - 1
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c", e)
		}
	}
	return out.String(), nil
}

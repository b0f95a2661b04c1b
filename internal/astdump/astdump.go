// Package astdump provides a test-only, human-readable JSON rendering of a
// resolved ast.BondFile, grounded on the teacher's
// internal/serialization/serialization.go mirror-struct marshal pattern
// (graph.Value{Kind, ...} -> serializedValue{Kind, Value}), adapted here
// from graph.Value to ast.Type/ast.Default. This is deliberately not the
// stable §6.3 JSON AST envelope: its shape may change freely, and it exists
// only so this module's own tests have a readable golden-fixture and
// failure-output format.
package astdump

import (
	"encoding/json"

	"github.com/mircodz/bbc/internal/ast"
)

type dumpType struct {
	Kind     string      `json:"kind"`
	Element  *dumpType   `json:"element,omitempty"`
	Key      *dumpType   `json:"key,omitempty"`
	Value    *dumpType   `json:"value,omitempty"`
	Decl     string      `json:"decl,omitempty"`
	TypeArgs []*dumpType `json:"typeArgs,omitempty"`
	Param    string      `json:"param,omitempty"`
	IntValue int64       `json:"intValue,omitempty"`
	Name     string      `json:"name,omitempty"`
}

func dumpTypeOf(t *ast.Type) *dumpType {
	if t == nil {
		return nil
	}
	d := &dumpType{Kind: typeKindName(t.Kind), Name: t.Name, IntValue: t.IntValue}
	d.Element = dumpTypeOf(t.Element)
	d.Key = dumpTypeOf(t.Key)
	d.Value = dumpTypeOf(t.Value)
	if t.Decl != nil {
		d.Decl = t.Decl.QualifiedName()
	}
	if t.Param != nil {
		d.Param = t.Param.Name
	}
	for _, arg := range t.TypeArgs {
		d.TypeArgs = append(d.TypeArgs, dumpTypeOf(arg))
	}
	for _, arg := range t.UnresolvedArgs {
		d.TypeArgs = append(d.TypeArgs, dumpTypeOf(arg))
	}
	return d
}

func typeKindName(k ast.TypeKind) string {
	switch k {
	case ast.KindInt8:
		return "int8"
	case ast.KindInt16:
		return "int16"
	case ast.KindInt32:
		return "int32"
	case ast.KindInt64:
		return "int64"
	case ast.KindUint8:
		return "uint8"
	case ast.KindUint16:
		return "uint16"
	case ast.KindUint32:
		return "uint32"
	case ast.KindUint64:
		return "uint64"
	case ast.KindFloat:
		return "float"
	case ast.KindDouble:
		return "double"
	case ast.KindBool:
		return "bool"
	case ast.KindString:
		return "string"
	case ast.KindWString:
		return "wstring"
	case ast.KindBlob:
		return "blob"
	case ast.KindList:
		return "list"
	case ast.KindVector:
		return "vector"
	case ast.KindSet:
		return "set"
	case ast.KindMap:
		return "map"
	case ast.KindNullable:
		return "nullable"
	case ast.KindBonded:
		return "bonded"
	case ast.KindMaybe:
		return "maybe"
	case ast.KindUserDefined:
		return "userDefined"
	case ast.KindTypeParameter:
		return "typeParameter"
	case ast.KindIntTypeArg:
		return "intTypeArg"
	case ast.KindMetaName:
		return "metaName"
	case ast.KindMetaFullName:
		return "metaFullName"
	case ast.KindUnresolvedUserType:
		return "unresolvedUserType"
	}
	return "invalid"
}

type dumpDefault struct {
	Kind             string  `json:"kind"`
	Bool             bool    `json:"bool,omitempty"`
	Integer          int64   `json:"integer,omitempty"`
	Float            float64 `json:"float,omitempty"`
	String           string  `json:"string,omitempty"`
	EnumConstantName string  `json:"enumConstant,omitempty"`
}

func dumpDefaultOf(d *ast.Default) *dumpDefault {
	if d == nil {
		return nil
	}
	kind := "none"
	switch d.Kind {
	case ast.DefaultNothing:
		kind = "nothing"
	case ast.DefaultBool:
		kind = "bool"
	case ast.DefaultInteger:
		kind = "integer"
	case ast.DefaultFloat:
		kind = "float"
	case ast.DefaultString:
		kind = "string"
	case ast.DefaultEnumConstant:
		kind = "enumConstant"
	}
	return &dumpDefault{
		Kind:             kind,
		Bool:             d.Bool,
		Integer:          d.Integer,
		Float:            d.Float,
		String:           d.String,
		EnumConstantName: d.EnumConstantName,
	}
}

type dumpField struct {
	Ordinal  int64        `json:"ordinal"`
	Name     string       `json:"name"`
	Modifier string       `json:"modifier"`
	Type     *dumpType    `json:"type"`
	Default  *dumpDefault `json:"default,omitempty"`
}

func dumpFieldOf(f *ast.Field) *dumpField {
	return &dumpField{
		Ordinal:  f.Ordinal,
		Name:     f.Name,
		Modifier: f.Modifier.String(),
		Type:     dumpTypeOf(f.Type),
		Default:  dumpDefaultOf(f.Default),
	}
}

type dumpConstant struct {
	Name             string `json:"name"`
	Value            int32  `json:"value"`
	HasExplicitValue bool   `json:"hasExplicitValue"`
}

type dumpMethodType struct {
	Kind string    `json:"kind"`
	Type *dumpType `json:"type,omitempty"`
}

func dumpMethodTypeOf(m *ast.MethodType) *dumpMethodType {
	if m == nil {
		return nil
	}
	kind := "void"
	switch m.Kind {
	case ast.MethodTypeUnary:
		kind = "unary"
	case ast.MethodTypeStreaming:
		kind = "streaming"
	}
	return &dumpMethodType{Kind: kind, Type: dumpTypeOf(m.Type)}
}

type dumpMethod struct {
	Kind   string          `json:"kind"`
	Name   string          `json:"name"`
	Input  *dumpMethodType `json:"input,omitempty"`
	Result *dumpMethodType `json:"result,omitempty"`
}

type dumpDeclaration struct {
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Namespace      string          `json:"namespace,omitempty"`
	Fields         []*dumpField    `json:"fields,omitempty"`
	Base           *dumpType       `json:"base,omitempty"`
	ViewBaseName   string          `json:"viewBaseName,omitempty"`
	ViewFieldNames []string        `json:"viewFieldNames,omitempty"`
	Constants      []*dumpConstant `json:"constants,omitempty"`
	Methods        []*dumpMethod   `json:"methods,omitempty"`
	AliasTarget    *dumpType       `json:"aliasTarget,omitempty"`
}

func dumpDeclarationOf(d *ast.Declaration) *dumpDeclaration {
	out := &dumpDeclaration{
		Kind:           d.Kind.String(),
		Name:           d.Name,
		Namespace:      d.Namespace,
		Base:           dumpTypeOf(d.Base),
		ViewBaseName:   d.ViewBaseName,
		ViewFieldNames: d.ViewFieldNames,
		AliasTarget:    dumpTypeOf(d.AliasTarget),
	}
	for _, f := range d.Fields {
		out.Fields = append(out.Fields, dumpFieldOf(f))
	}
	for _, c := range d.Constants {
		out.Constants = append(out.Constants, &dumpConstant{Name: c.Name, Value: c.Value, HasExplicitValue: c.HasExplicitValue})
	}
	for _, m := range d.Methods {
		kind := "requestResponse"
		if m.Kind == ast.MethodEvent {
			kind = "event"
		}
		out.Methods = append(out.Methods, &dumpMethod{
			Kind:   kind,
			Name:   m.Name,
			Input:  dumpMethodTypeOf(m.Input),
			Result: dumpMethodTypeOf(m.Result),
		})
	}
	return out
}

type dumpFile struct {
	Path         string             `json:"path"`
	Namespaces   []string           `json:"namespaces,omitempty"`
	Imports      []string           `json:"imports,omitempty"`
	Declarations []*dumpDeclaration `json:"declarations,omitempty"`
}

// DebugJSON renders f as indented JSON for use in golden fixtures and test
// failure output. It is not a stable wire format.
func DebugJSON(f *ast.BondFile) ([]byte, error) {
	out := &dumpFile{Path: f.Path}
	for _, ns := range f.Namespaces {
		out.Namespaces = append(out.Namespaces, ns.Name)
	}
	for _, imp := range f.Imports {
		out.Imports = append(out.Imports, imp.Path)
	}
	for _, d := range f.Declarations {
		out.Declarations = append(out.Declarations, dumpDeclarationOf(d))
	}
	return json.MarshalIndent(out, "", "  ")
}

package diff

import (
	"fmt"

	"github.com/mircodz/bbc/internal/ast"
)

// ClassifyTypeChange implements §4.5.6. It is only meaningful when
// ast.StructurallyEqual(old, new) is already false; callers are expected to
// check that first the same way diffField and diffAlias do.
func ClassifyTypeChange(o, n *ast.Type) (category Category, description string, recommendation string) {
	if o == nil || n == nil {
		return BreakingWire, "type became unavailable", ""
	}

	if o.Kind == ast.KindBonded && ast.StructurallyEqual(o.Element, n) {
		return Compatible, "bonded<T> unwrapped to T", ""
	}
	if n.Kind == ast.KindBonded && ast.StructurallyEqual(o, n.Element) {
		return Compatible, "T wrapped in bonded<T>", ""
	}

	if isVectorOrList(o.Kind) && isVectorOrList(n.Kind) && ast.StructurallyEqual(o.Element, n.Element) {
		return Compatible, "vector/list representation changed, element type unchanged", ""
	}

	if isBlobLike(o) && isBlobLike(n) {
		return Compatible, "blob/byte-vector representation changed", ""
	}

	if cat, desc, rec, ok := classifyIntEnum(o, n); ok {
		return cat, desc, rec
	}

	if isNumericPromotion(o.Kind, n.Kind) {
		return Compatible, fmt.Sprintf("numeric type widened from %s to %s", typeName(o), typeName(n)), ""
	}

	return BreakingWire, fmt.Sprintf("type changed from %s to %s", typeName(o), typeName(n)), ""
}

func isVectorOrList(k ast.TypeKind) bool {
	return k == ast.KindVector || k == ast.KindList
}

func isBlobLike(t *ast.Type) bool {
	if t.Kind == ast.KindBlob {
		return true
	}
	return isVectorOrList(t.Kind) && t.Element != nil && t.Element.Kind == ast.KindInt8
}

func isEnumType(t *ast.Type) bool {
	return t.Kind == ast.KindUserDefined && t.Decl != nil && t.Decl.Kind == ast.DeclEnum
}

// classifyIntEnum covers int32<->enum (both directions, any width modeled
// here since enum constants are always stored as int32) and the one-way
// int8/int16 -> enum promotion, which additionally carries a rollout
// recommendation (§4.5.6: "update consumers before producers").
func classifyIntEnum(o, n *ast.Type) (Category, string, string, bool) {
	switch {
	case o.Kind == ast.KindInt32 && isEnumType(n):
		return Compatible, "int32 widened to an enum of compatible width", "", true
	case isEnumType(o) && n.Kind == ast.KindInt32:
		return Compatible, "enum narrowed to int32 of compatible width", "", true
	case (o.Kind == ast.KindInt8 || o.Kind == ast.KindInt16) && isEnumType(n):
		return Compatible,
			fmt.Sprintf("%s promoted to an enum of compatible width", typeName(o)),
			"roll out consumers before producers: older readers of the narrower integer will reject unrecognized high values",
			true
	}
	return Compatible, "", "", false
}

// isNumericPromotion reports whether (o, n) is a narrower-to-wider
// promotion in the one direction §4.5.6 allows.
func isNumericPromotion(o, n ast.TypeKind) bool {
	switch o {
	case ast.KindFloat:
		return n == ast.KindDouble
	case ast.KindUint8:
		return n == ast.KindUint16 || n == ast.KindUint32 || n == ast.KindUint64
	case ast.KindUint16:
		return n == ast.KindUint32 || n == ast.KindUint64
	case ast.KindUint32:
		return n == ast.KindUint64
	case ast.KindInt8:
		return n == ast.KindInt16 || n == ast.KindInt32 || n == ast.KindInt64
	case ast.KindInt16:
		return n == ast.KindInt32 || n == ast.KindInt64
	case ast.KindInt32:
		return n == ast.KindInt64
	}
	return false
}

// typeName renders a best-effort human-readable name for a change
// description; it is not a stable serialization format.
func typeName(t *ast.Type) string {
	if t == nil {
		return "<none>"
	}
	switch t.Kind {
	case ast.KindList:
		return "list<" + typeName(t.Element) + ">"
	case ast.KindVector:
		return "vector<" + typeName(t.Element) + ">"
	case ast.KindSet:
		return "set<" + typeName(t.Element) + ">"
	case ast.KindMap:
		return "map<" + typeName(t.Key) + ", " + typeName(t.Value) + ">"
	case ast.KindNullable:
		return "nullable<" + typeName(t.Element) + ">"
	case ast.KindBonded:
		return "bonded<" + typeName(t.Element) + ">"
	case ast.KindMaybe:
		return typeName(t.Element)
	case ast.KindUserDefined:
		if t.Decl != nil {
			return t.Decl.QualifiedName()
		}
		return "<unresolved>"
	case ast.KindTypeParameter:
		if t.Param != nil {
			return t.Param.Name
		}
		return "<type parameter>"
	case ast.KindMetaName:
		return "bond_meta::name"
	case ast.KindMetaFullName:
		return "bond_meta::full_name"
	}
	if name, ok := primitiveTypeName(t.Kind); ok {
		return name
	}
	return "<unknown type>"
}

func primitiveTypeName(k ast.TypeKind) (string, bool) {
	switch k {
	case ast.KindInt8:
		return "int8", true
	case ast.KindInt16:
		return "int16", true
	case ast.KindInt32:
		return "int32", true
	case ast.KindInt64:
		return "int64", true
	case ast.KindUint8:
		return "uint8", true
	case ast.KindUint16:
		return "uint16", true
	case ast.KindUint32:
		return "uint32", true
	case ast.KindUint64:
		return "uint64", true
	case ast.KindFloat:
		return "float", true
	case ast.KindDouble:
		return "double", true
	case ast.KindBool:
		return "bool", true
	case ast.KindString:
		return "string", true
	case ast.KindWString:
		return "wstring", true
	case ast.KindBlob:
		return "blob", true
	}
	return "", false
}

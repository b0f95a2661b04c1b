package ast

import "testing"

func TestPrimitiveKindByName(t *testing.T) {
	tests := []struct {
		name string
		want TypeKind
		ok   bool
	}{
		{"int32", KindInt32, true},
		{"String", KindString, true},
		{"WSTRING", KindWString, true},
		{"blob", KindBlob, true},
		{"bogus", KindInvalid, false},
	}
	for _, tt := range tests {
		got, ok := PrimitiveKindByName(tt.name)
		if ok != tt.ok {
			t.Errorf("PrimitiveKindByName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("PrimitiveKindByName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIntegralRange(t *testing.T) {
	min, max := IntegralRange(KindInt8)
	if min != -128 || max != 127 {
		t.Errorf("int8 range = [%d, %d], want [-128, 127]", min, max)
	}
	min, max = IntegralRange(KindUint8)
	if min != 0 || max != 255 {
		t.Errorf("uint8 range = [%d, %d], want [0, 255]", min, max)
	}
}

func TestTypeIsValidKey(t *testing.T) {
	str := &Type{Kind: KindString}
	if !str.IsValidKey() {
		t.Error("string should be a valid key")
	}
	flt := &Type{Kind: KindFloat}
	if flt.IsValidKey() {
		t.Error("float must not be a valid key")
	}
	enumType := &Type{Kind: KindUserDefined, Decl: &Declaration{Kind: DeclEnum}}
	if !enumType.IsValidKey() {
		t.Error("enum should be a valid key")
	}
	structType := &Type{Kind: KindUserDefined, Decl: &Declaration{Kind: DeclStruct}}
	if structType.IsValidKey() {
		t.Error("struct must not be a valid key")
	}
}

func TestTypeUnwrap(t *testing.T) {
	inner := &Type{Kind: KindInt32}
	maybe := &Type{Kind: KindMaybe, Element: inner}
	if maybe.Unwrap() != inner {
		t.Error("Unwrap of Maybe should return Element")
	}
	if inner.Unwrap() != inner {
		t.Error("Unwrap of non-Maybe should return itself")
	}
}

func TestTypeHasUnresolved(t *testing.T) {
	resolved := &Type{Kind: KindInt32}
	if resolved.HasUnresolved() {
		t.Error("primitive should not report unresolved")
	}
	unresolved := &Type{Kind: KindUnresolvedUserType, Name: "Foo"}
	wrapped := &Type{Kind: KindVector, Element: unresolved}
	if !wrapped.HasUnresolved() {
		t.Error("vector<UnresolvedUserType> should report unresolved")
	}
	mapType := &Type{Kind: KindMap, Key: &Type{Kind: KindString}, Value: unresolved}
	if !mapType.HasUnresolved() {
		t.Error("map value unresolved should propagate")
	}
}

func TestStructurallyEqual(t *testing.T) {
	a := &Type{Kind: KindVector, Element: &Type{Kind: KindInt32}}
	b := &Type{Kind: KindVector, Element: &Type{Kind: KindInt32}}
	if !StructurallyEqual(a, b) {
		t.Error("identical vector<int32> types should be structurally equal")
	}

	c := &Type{Kind: KindVector, Element: &Type{Kind: KindInt64}}
	if StructurallyEqual(a, c) {
		t.Error("vector<int32> and vector<int64> must not be structurally equal")
	}

	declA := &Declaration{Kind: DeclStruct, Name: "Point", Namespace: "geo"}
	declB := &Declaration{Kind: DeclStruct, Name: "Point", Namespace: "geo"}
	userA := &Type{Kind: KindUserDefined, Decl: declA}
	userB := &Type{Kind: KindUserDefined, Decl: declB}
	if !StructurallyEqual(userA, userB) {
		t.Error("user-defined types with same qualified name and no args should be equal")
	}

	userA.TypeArgs = []*Type{{Kind: KindInt32}}
	userB.TypeArgs = []*Type{{Kind: KindInt64}}
	if StructurallyEqual(userA, userB) {
		t.Error("differing generic type arguments must break equality")
	}
}

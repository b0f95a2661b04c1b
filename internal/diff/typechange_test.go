package diff

import (
	"testing"

	"github.com/mircodz/bbc/internal/ast"
)

func primType(k ast.TypeKind) *ast.Type { return &ast.Type{Kind: k} }

func TestClassifyTypeChangeNumericPromotionsAreCompatible(t *testing.T) {
	cases := []struct {
		name string
		o, n ast.TypeKind
	}{
		{"int8->int32", ast.KindInt8, ast.KindInt32},
		{"int16->int64", ast.KindInt16, ast.KindInt64},
		{"uint8->uint16", ast.KindUint8, ast.KindUint16},
		{"uint32->uint64", ast.KindUint32, ast.KindUint64},
		{"float->double", ast.KindFloat, ast.KindDouble},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cat, _, _ := ClassifyTypeChange(primType(c.o), primType(c.n))
			if cat != Compatible {
				t.Errorf("expected Compatible, got %v", cat)
			}
		})
	}
}

func TestClassifyTypeChangeNarrowingIsBreaking(t *testing.T) {
	cat, _, _ := ClassifyTypeChange(primType(ast.KindInt64), primType(ast.KindInt32))
	if cat != BreakingWire {
		t.Errorf("expected BreakingWire for a narrowing change, got %v", cat)
	}
}

func TestClassifyTypeChangeBlobAndByteVectorAreCompatible(t *testing.T) {
	blob := primType(ast.KindBlob)
	byteVector := &ast.Type{Kind: ast.KindVector, Element: primType(ast.KindInt8)}
	cat, _, _ := ClassifyTypeChange(blob, byteVector)
	if cat != Compatible {
		t.Errorf("expected Compatible for blob<->vector<int8>, got %v", cat)
	}
}

func TestClassifyTypeChangeBondedUnwrapIsCompatible(t *testing.T) {
	inner := &ast.Type{Kind: ast.KindUserDefined, Decl: &ast.Declaration{Name: "Widget"}}
	bonded := &ast.Type{Kind: ast.KindBonded, Element: inner}

	cat, _, _ := ClassifyTypeChange(bonded, inner)
	if cat != Compatible {
		t.Errorf("expected Compatible for bonded<T> -> T, got %v", cat)
	}
	cat, _, _ = ClassifyTypeChange(inner, bonded)
	if cat != Compatible {
		t.Errorf("expected Compatible for T -> bonded<T>, got %v", cat)
	}
}

func TestClassifyTypeChangeInt32EnumRoundTripIsCompatible(t *testing.T) {
	enumDecl := &ast.Declaration{Name: "Color", Kind: ast.DeclEnum}
	enum := &ast.Type{Kind: ast.KindUserDefined, Decl: enumDecl}
	int32Type := primType(ast.KindInt32)

	cat, _, rec := ClassifyTypeChange(int32Type, enum)
	if cat != Compatible {
		t.Errorf("expected Compatible for int32 -> enum, got %v", cat)
	}
	if rec != "" {
		t.Errorf("expected no rollout recommendation for int32 -> enum, got %q", rec)
	}

	cat, _, _ = ClassifyTypeChange(enum, int32Type)
	if cat != Compatible {
		t.Errorf("expected Compatible for enum -> int32, got %v", cat)
	}
}

func TestClassifyTypeChangeNarrowIntToEnumCarriesRolloutRecommendation(t *testing.T) {
	enumDecl := &ast.Declaration{Name: "Color", Kind: ast.DeclEnum}
	enum := &ast.Type{Kind: ast.KindUserDefined, Decl: enumDecl}

	cat, _, rec := ClassifyTypeChange(primType(ast.KindInt8), enum)
	if cat != Compatible {
		t.Errorf("expected Compatible for int8 -> enum, got %v", cat)
	}
	if rec == "" {
		t.Errorf("expected a rollout recommendation for int8 -> enum")
	}
}

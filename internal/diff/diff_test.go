package diff

import (
	"context"
	"testing"

	"github.com/mircodz/bbc/internal/ast"
	"github.com/mircodz/bbc/internal/parser"
	"github.com/mircodz/bbc/internal/resolver"
)

func resolveSource(t *testing.T, src string) []*ast.Declaration {
	t.Helper()
	tree, err := parser.Parse("t.bond", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	file, err := parser.Build("t.bond", tree)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	table, errs := resolver.Resolve(context.Background(), file, resolver.NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("Resolve errors: %v", errs)
	}
	return table.All()
}

func findChange(t *testing.T, changes []SchemaChange, substr string) *SchemaChange {
	t.Helper()
	for i := range changes {
		if contains(changes[i].Description, substr) {
			return &changes[i]
		}
	}
	return nil
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestCheckNoChangesIsEmpty(t *testing.T) {
	src := `
namespace T
struct User
{
    0: required string id;
}
`
	old := resolveSource(t, src)
	new_ := resolveSource(t, src)
	changes := Check(context.Background(), old, new_, nil)
	if len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestCheckFieldNameChangeIsBreakingText(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct User
{
    0: required string id;
}
`)
	new_ := resolveSource(t, `
namespace T
struct User
{
    0: required string email;
}
`)
	changes := Check(context.Background(), old, new_, nil)
	c := findChange(t, changes, "name changed")
	if c == nil {
		t.Fatalf("expected a name-change entry, got %v", changes)
	}
	if c.Category != BreakingText {
		t.Errorf("expected BreakingText, got %v", c.Category)
	}
}

func TestCheckVectorListIsCompatible(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct User
{
    0: required vector<string> tags;
}
`)
	new_ := resolveSource(t, `
namespace T
struct User
{
    0: required list<string> tags;
}
`)
	changes := Check(context.Background(), old, new_, nil)
	for _, c := range changes {
		if c.Category == BreakingWire {
			t.Errorf("expected no BreakingWire changes for vector->list, got %+v", c)
		}
	}
	if findChange(t, changes, "vector/list") == nil {
		t.Fatalf("expected a vector/list compatibility entry, got %v", changes)
	}
}

func TestCheckRemovedRequiredFieldIsBreakingWire(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct User
{
    0: required string id;
    1: required string email;
}
`)
	new_ := resolveSource(t, `
namespace T
struct User
{
    0: required string id;
}
`)
	changes := Check(context.Background(), old, new_, nil)
	c := findChange(t, changes, "removed")
	if c == nil || c.Category != BreakingWire {
		t.Fatalf("expected a BreakingWire removal entry, got %v", changes)
	}
}

func TestCheckDirectOptionalToRequiredIsBreakingWire(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct User
{
    0: optional string id;
}
`)
	new_ := resolveSource(t, `
namespace T
struct User
{
    0: required string id;
}
`)
	changes := Check(context.Background(), old, new_, nil)
	c := findChange(t, changes, "modifier changed directly")
	if c == nil || c.Category != BreakingWire {
		t.Fatalf("expected a direct-modifier-change BreakingWire entry, got %v", changes)
	}
}

func TestCheckModifierViaRequiredOptionalIsCompatible(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct User
{
    0: optional string id;
}
`)
	new_ := resolveSource(t, `
namespace T
struct User
{
    0: required_optional string id;
}
`)
	changes := Check(context.Background(), old, new_, nil)
	c := findChange(t, changes, "via required_optional")
	if c == nil || c.Category != Compatible {
		t.Fatalf("expected a Compatible via-required_optional entry, got %v", changes)
	}
}

func TestCheckEnumConstantInsertedShiftsImplicitValue(t *testing.T) {
	old := resolveSource(t, `
namespace T
enum Color { Red, Green, Blue }
`)
	new_ := resolveSource(t, `
namespace T
enum Color { Red, Yellow, Green, Blue }
`)
	changes := Check(context.Background(), old, new_, nil)
	found := false
	for _, c := range changes {
		if c.Category == BreakingWire {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one BreakingWire entry from the implicit-value shift, got %v", changes)
	}
}

func TestCheckEnumConstantAppendedIsCompatible(t *testing.T) {
	old := resolveSource(t, `
namespace T
enum Color { Red, Green, Blue }
`)
	new_ := resolveSource(t, `
namespace T
enum Color { Red, Green, Blue, Purple }
`)
	changes := Check(context.Background(), old, new_, nil)
	if len(changes) != 1 || changes[0].Category != Compatible {
		t.Fatalf("expected exactly one Compatible change, got %v", changes)
	}
}

func TestCheckAddingOptionalFieldIsCompatible(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct U
{
    0: required string id;
}
`)
	new_ := resolveSource(t, `
namespace T
struct U
{
    0: required string id;
    1: optional string email;
}
`)
	changes := Check(context.Background(), old, new_, nil)
	if len(changes) != 1 {
		t.Fatalf("expected exactly one change, got %v", changes)
	}
	if changes[0].Category != Compatible {
		t.Errorf("expected Compatible, got %v", changes[0].Category)
	}
	if !contains(changes[0].Description, "email") {
		t.Errorf("expected the change to mention \"email\", got %q", changes[0].Description)
	}
}

func TestCheckOrdinalChangeIsRemovePlusAdd(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct U
{
    0: required string id;
}
`)
	new_ := resolveSource(t, `
namespace T
struct U
{
    1: required string id;
}
`)
	changes := Check(context.Background(), old, new_, nil)
	if len(changes) != 2 {
		t.Fatalf("expected exactly two changes, got %v", changes)
	}
	var sawRemoved, sawAdded bool
	for _, c := range changes {
		if c.Category != BreakingWire {
			t.Errorf("expected both changes to be BreakingWire, got %v", c)
		}
		if contains(c.Description, "removed") {
			sawRemoved = true
		}
		if contains(c.Description, "added") {
			sawAdded = true
		}
	}
	if !sawRemoved || !sawAdded {
		t.Fatalf("expected one \"removed\" and one \"added\" entry, got %v", changes)
	}
}

func TestCheckAliasVectorToListIsNotBreaking(t *testing.T) {
	old := resolveSource(t, `
namespace T
using Items = vector<int32>;
`)
	new_ := resolveSource(t, `
namespace T
using Items = list<int32>;
`)
	changes := Check(context.Background(), old, new_, nil)
	for _, c := range changes {
		if c.Category == BreakingWire {
			t.Errorf("expected no BreakingWire changes, got %+v", c)
		}
	}
}

func TestCheckDeclarationRemovedIsBreakingWire(t *testing.T) {
	old := resolveSource(t, `
namespace T
struct A {}
struct B {}
`)
	new_ := resolveSource(t, `
namespace T
struct A {}
`)
	changes := Check(context.Background(), old, new_, nil)
	c := findChange(t, changes, "declaration removed")
	if c == nil || c.Category != BreakingWire {
		t.Fatalf("expected a declaration-removed BreakingWire entry, got %v", changes)
	}
}

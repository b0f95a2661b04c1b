package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/mircodz/bbc/internal/ast"
	"github.com/mircodz/bbc/internal/parser"
)

func buildFile(t *testing.T, filename, src string) *ast.BondFile {
	t.Helper()
	tree, err := parser.Parse(filename, src)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", filename, err)
	}
	file, err := parser.Build(filename, tree)
	if err != nil {
		t.Fatalf("Build(%s) failed: %v", filename, err)
	}
	return file
}

func TestResolveSimpleStructNoErrors(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct User
{
    0: required string id;
    1: optional int32 age;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestResolveSelfReferentialStruct(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct Node
{
    0: optional Node next;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	d := file.Declarations[0]
	next := d.Fields[0].Type.Unwrap()
	if next.Kind != ast.KindUserDefined {
		t.Fatalf("expected Node.next to resolve to UserDefined, got %v", next.Kind)
	}
	if next.Decl == d {
		t.Errorf("self-reference should point at a synthesized forward, not the live declaration")
	}
	if !next.Decl.Synthesized() {
		t.Errorf("expected synthesized forward declaration for self-reference")
	}
}

func TestResolveUnresolvedTypeReported(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct User
{
    0: required Ghost missing;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	found := false
	for _, e := range errs {
		if e.Kind == UnresolvedType {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UnresolvedType error, got %v", errs)
	}
}

func TestResolveDuplicateOrdinal(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct User
{
    0: required string a;
    0: required string b;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	found := false
	for _, e := range errs {
		if e.Kind == DuplicateOrdinal {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DuplicateOrdinal error, got %v", errs)
	}
}

func TestResolveViewFullProjection(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct Base
{
    0: required string id;
    1: required string secret;
}
struct PublicView view_of Base { id }
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	var view *ast.Declaration
	for _, d := range file.Declarations {
		if d.Kind == ast.DeclView {
			view = d
		}
	}
	if view == nil {
		t.Fatalf("expected a view declaration")
	}
	if view.ViewOf == nil || view.ViewOf.Name != "Base" {
		t.Fatalf("expected ViewOf to resolve to Base, got %+v", view.ViewOf)
	}
	if len(view.Fields) != 1 || view.Fields[0].Name != "id" {
		t.Fatalf("expected projected field \"id\", got %+v", view.Fields)
	}
}

func TestResolveEventCannotStream(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct Ping {}
service Example
{
    nothing notify(stream<Ping>);
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	found := false
	for _, e := range errs {
		if e.Kind == IllegalEventInput {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an IllegalEventInput error, got %v", errs)
	}
}

func TestResolveServiceBaseMustBeService(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct NotAService {}
service Example : NotAService
{
    nothing ping(void);
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	found := false
	for _, e := range errs {
		if e.Kind == IllegalInheritance {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an IllegalInheritance error, got %v", errs)
	}
}

func TestResolveOptionalEnumFieldWithoutDefaultFails(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
enum S { A = 0 }
struct U
{
    0: optional S f;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if !contains(errs[0].Message, "must have a default value") {
		t.Errorf("expected message to mention \"must have a default value\", got %q", errs[0].Message)
	}
	if errs[0].Pos.Line <= 0 {
		t.Errorf("expected a positive line number, got %d", errs[0].Pos.Line)
	}
}

func TestResolveIntegerDefaultOutOfRangeFails(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct U
{
    0: optional int8 x = 9999;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	found := false
	for _, e := range errs {
		if e.Kind == InvalidDefault {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an InvalidDefault error for an out-of-range int8 default, got %v", errs)
	}
}

func TestResolveIntegerDefaultInRangeSucceeds(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct U
{
    0: optional int8 x = 127;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestResolveGenericArityMismatchFails(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct Box<T>
{
    0: required T item;
}
struct U
{
    0: required Box<int32, int32> b;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	found := false
	for _, e := range errs {
		if e.Kind == UnresolvedType && contains(e.Message, "generic argument") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UnresolvedType arity-mismatch error, got %v", errs)
	}
}

func TestResolveGenericCorrectArityResolves(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct Box<T>
{
    0: required T item;
}
struct U
{
    0: required Box<int32> b;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestResolveAliasOfAliasResolves(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
using Inner = string;
using Outer = Inner;
struct U
{
    0: required Outer id;
}
`)
	_, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	var u *ast.Declaration
	for _, d := range file.Declarations {
		if d.Kind == ast.DeclStruct {
			u = d
		}
	}
	if u == nil {
		t.Fatalf("expected struct U")
	}
	fieldType := u.Fields[0].Type.Unwrap()
	if fieldType.Kind != ast.KindUserDefined || fieldType.Decl == nil || fieldType.Decl.Name != "Outer" {
		t.Fatalf("expected field type to resolve to alias Outer, got %+v", fieldType)
	}
	transitive := fieldType.Decl.AliasTarget.Unwrap()
	for transitive.Kind == ast.KindUserDefined && transitive.Decl != nil && transitive.Decl.Kind == ast.DeclAlias {
		transitive = transitive.Decl.AliasTarget.Unwrap()
	}
	if transitive.Kind != ast.KindString {
		t.Fatalf("expected Outer's transitive alias target to be string, got %v", transitive.Kind)
	}
}

type cyclicImportResolver struct {
	files map[string]string
}

func (r cyclicImportResolver) Resolve(_ context.Context, _, importPath string) (string, string, error) {
	src, ok := r.files[importPath]
	if !ok {
		return "", "", &Error{Kind: ImportFailure, Message: "no such file: " + importPath}
	}
	return importPath, src, nil
}

func TestResolveCircularImportsTerminate(t *testing.T) {
	importer := cyclicImportResolver{files: map[string]string{
		"a.bond": `
import "b.bond"
namespace T
struct A {}
`,
		"b.bond": `
import "a.bond"
namespace T
struct B {}
`,
	}}
	file := buildFile(t, "a.bond", importer.files["a.bond"])

	done := make(chan struct{})
	var table *SymbolTable
	var errs []*Error
	go func() {
		table, errs = Resolve(context.Background(), file, importer, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Resolve did not terminate on a circular import graph")
	}

	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if _, ok := table.LookupName("T", "A"); !ok {
		t.Errorf("expected A to be registered")
	}
	if _, ok := table.LookupName("T", "B"); !ok {
		t.Errorf("expected B to be registered")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestReconcileForwardThenStruct(t *testing.T) {
	file := buildFile(t, "a.bond", `
namespace T
struct Node;
struct Node
{
    0: optional Node next;
}
`)
	table, errs := Resolve(context.Background(), file, NoImportResolver{}, nil)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	d, ok := table.LookupName("T", "Node")
	if !ok {
		t.Fatalf("expected Node to be registered")
	}
	if d.Kind != ast.DeclStruct {
		t.Fatalf("expected the full struct to win reconciliation, got %v", d.Kind)
	}
}

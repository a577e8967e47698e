package serialize

import (
	"context"
	"testing"

	"github.com/ryanwaits/openpkg/format"
	"github.com/ryanwaits/openpkg/ir"
	"github.com/ryanwaits/openpkg/resolve"
	rt "github.com/ryanwaits/openpkg/resolve/resolvetest"
	"github.com/ryanwaits/openpkg/spec"
)

func newSerializer(res resolve.Resolver) (*Serializer, *spec.Registry) {
	reg := spec.NewRegistry()
	cx := format.NewContext(reg, format.Config{})
	return New(res, reg, cx, Config{}), reg
}

func TestSerialize_Function(t *testing.T) {
	decl := rt.Func("add", `/**
 * Adds two numbers.
 * @param {number} a - First operand.
 * @param {number} b - Second operand.
 * @returns {number} The sum.
 * @example
 * add(1, 2)
 */`, rt.Sig(rt.Num(), "number",
		rt.P("a", rt.Num(), "number"),
		rt.P("b", rt.Num(), "number"),
	))

	s, _ := newSerializer(rt.New(decl))
	results, err := s.Serialize(context.Background(), decl)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}

	x := results[0].Export
	if x.Kind != "function" || x.Name != "add" {
		t.Errorf("export = %s %s", x.Kind, x.Name)
	}
	if x.Description != "Adds two numbers." {
		t.Errorf("description = %q", x.Description)
	}
	if len(x.Signatures) != 1 {
		t.Fatalf("signatures = %d, want 1", len(x.Signatures))
	}
	sig := x.Signatures[0]
	if len(sig.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(sig.Params))
	}
	if sig.Params[0].Description != "First operand." {
		t.Errorf("param a description = %q", sig.Params[0].Description)
	}
	if !sig.Params[0].Required {
		t.Error("param a not required")
	}
	if !sig.Returns.Equal(ir.Prim("number")) {
		t.Errorf("returns = %#v", sig.Returns)
	}
	if len(x.Examples) != 1 {
		t.Errorf("examples = %d, want 1", len(x.Examples))
	}
}

func TestSerialize_InterfaceRegistersType(t *testing.T) {
	decl := rt.Iface("User", "A registered user.",
		resolve.Member{Name: "id", Kind: resolve.MemberProperty, Type: rt.Str(), TypeText: "string"},
		resolve.Member{Name: "email", Kind: resolve.MemberProperty, Type: rt.Str(), Optional: true},
		resolve.Member{Name: "save", Kind: resolve.MemberMethod, Visibility: "protected",
			Signatures: []resolve.Signature{rt.Sig(rt.Prim("void"), "void")}},
	)

	s, reg := newSerializer(rt.New(decl))
	results, err := s.Serialize(context.Background(), decl)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	x := results[0].Export
	if len(x.Members) != 3 {
		t.Fatalf("members = %d, want 3", len(x.Members))
	}
	if x.Members[0].Visibility != "public" {
		t.Errorf("default visibility = %q, want public", x.Members[0].Visibility)
	}
	if x.Members[2].Visibility != "protected" {
		t.Errorf("method visibility = %q", x.Members[2].Visibility)
	}
	if !reg.HasType("User") {
		t.Error("User type not registered")
	}
	def := reg.Definition("User")
	obj, ok := def.Schema.(*ir.Object)
	if !ok {
		t.Fatalf("definition schema = %T", def.Schema)
	}
	if len(obj.Required) != 1 || obj.Required[0] != "id" {
		t.Errorf("required = %v, want [id]", obj.Required)
	}
}

func TestSerialize_Enum(t *testing.T) {
	decl := &resolve.Declaration{
		Kind: resolve.DeclEnum,
		Name: "Color",
		Doc:  "Palette colors.",
		EnumMembers: []resolve.EnumMember{
			{Name: "Red", Value: "red"},
			{Name: "Blue", Value: "blue"},
		},
	}
	s, reg := newSerializer(rt.New(decl))
	results, err := s.Serialize(context.Background(), decl)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	e, ok := results[0].Export.Schema.(*ir.Enum)
	if !ok || len(e.Values) != 2 {
		t.Fatalf("schema = %#v", results[0].Export.Schema)
	}
	if !reg.HasType("Color") {
		t.Error("Color not registered")
	}
}

func TestSerialize_TypeAliasReexportHop(t *testing.T) {
	user := rt.TypeAlias("User", "", rt.Named("User", rt.Prop("id", rt.Str())))
	alias := rt.TypeAlias("Account", "", rt.Aliased("User", rt.Opaque("User")))

	s, reg := newSerializer(rt.New(user, alias))
	ctx := context.Background()
	if _, err := s.Serialize(ctx, alias); err != nil {
		t.Fatal(err)
	}
	if reg.IsKnownType("Account") {
		t.Error("alias known before target serialized")
	}
	if _, err := s.Serialize(ctx, user); err != nil {
		t.Fatal(err)
	}
	if !reg.IsKnownType("Account") {
		t.Error("alias not known after target serialized")
	}
}

func TestSerialize_Namespace(t *testing.T) {
	ns := &resolve.Declaration{
		Kind: resolve.DeclNamespace,
		Name: "Utils",
		Namespace: []*resolve.Declaration{
			rt.Func("noop", "", rt.Sig(rt.Prim("void"), "void")),
			{
				Kind: resolve.DeclNamespace,
				Name: "Inner",
				Namespace: []*resolve.Declaration{
					rt.Func("deep", "", rt.Sig(rt.Prim("void"), "void")),
				},
			},
		},
	}
	s, _ := newSerializer(rt.New(ns))
	results, err := s.Serialize(context.Background(), ns)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range results {
		names = append(names, r.Export.Name)
	}
	want := []string{"Utils", "Utils.noop", "Utils.Inner", "Utils.Inner.deep"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestSerialize_ModuleAugmentation(t *testing.T) {
	ns := &resolve.Declaration{
		Kind:           resolve.DeclNamespace,
		Name:           "express-serve-static-core",
		IsAugmentation: true,
	}
	s, _ := newSerializer(rt.New(ns))
	results, err := s.Serialize(context.Background(), ns)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Export.Kind != "augmentation" {
		t.Errorf("kind = %q, want augmentation", results[0].Export.Kind)
	}
}

func TestSerialize_VariableProvenance(t *testing.T) {
	t.Run("runtime schema wins", func(t *testing.T) {
		decl := &resolve.Declaration{
			Kind: resolve.DeclVariable,
			Name: "userSchema",
			Type: rt.Str(),
			Runtime: &resolve.RuntimeSchema{
				Library: "zod",
				Schema:  map[string]any{"type": "object"},
			},
		}
		s, _ := newSerializer(rt.New(decl))
		results, _ := s.Serialize(context.Background(), decl)
		x := results[0].Export
		if x.SchemaSource != "runtime" || x.SchemaLibrary != "zod" {
			t.Errorf("provenance = %s/%s", x.SchemaLibrary, x.SchemaSource)
		}
		if _, ok := x.Schema.(*ir.Raw); !ok {
			t.Errorf("schema = %T, want raw", x.Schema)
		}
	})

	t.Run("static decode", func(t *testing.T) {
		shape := rt.Obj(rt.Prop("id", rt.Str()))
		builder := rt.Aliased("ZodObject", rt.Opaque("ZodObject<{id}>"))
		builder.AliasArgs = []*resolve.Type{shape}
		decl := &resolve.Declaration{Kind: resolve.DeclVariable, Name: "userSchema", Type: builder}

		reg := spec.NewRegistry()
		cx := format.NewContext(reg, format.Config{
			Adapters: []format.Adapter{&format.BuilderAdapter{Lib: "zod", Prefixes: []string{"Zod"}}},
		})
		s := New(rt.New(decl), reg, cx, Config{})
		results, _ := s.Serialize(context.Background(), decl)
		x := results[0].Export
		if x.SchemaSource != "static" || x.SchemaLibrary != "zod" {
			t.Errorf("provenance = %s/%s", x.SchemaLibrary, x.SchemaSource)
		}
	})

	t.Run("plain type", func(t *testing.T) {
		decl := &resolve.Declaration{Kind: resolve.DeclVariable, Name: "limit", Type: rt.Num()}
		s, _ := newSerializer(rt.New(decl))
		results, _ := s.Serialize(context.Background(), decl)
		x := results[0].Export
		if x.SchemaSource != "type" || x.SchemaLibrary != "" {
			t.Errorf("provenance = %s/%s", x.SchemaLibrary, x.SchemaSource)
		}
	})
}

func TestDrain_SchedulesReferencedTypes(t *testing.T) {
	node := rt.TypeAlias("Node", "", rt.Named("Node", rt.Prop("next", rt.Named("Edge"))))
	edge := rt.TypeAlias("Edge", "", rt.Named("Edge", rt.Prop("weight", rt.Num())))

	res := rt.New(node).Add(edge)
	s, reg := newSerializer(res)
	ctx := context.Background()
	if _, err := s.Serialize(ctx, node); err != nil {
		t.Fatal(err)
	}
	if err := s.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	if !reg.HasType("Edge") {
		t.Error("referenced Edge not drained into definitions")
	}
	if n := len(reg.Pending()); n != 0 {
		t.Errorf("pending after drain = %d, want 0", n)
	}
}

func TestDrain_UnresolvableReferenceDegrades(t *testing.T) {
	decl := rt.TypeAlias("Holder", "", rt.Named("Holder", rt.Prop("m", rt.Named("Mystery"))))
	s, reg := newSerializer(rt.New(decl))
	ctx := context.Background()
	if _, err := s.Serialize(ctx, decl); err != nil {
		t.Fatal(err)
	}
	if err := s.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	if reg.HasType("Mystery") {
		t.Error("unresolvable type gained a definition")
	}
}

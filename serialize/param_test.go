package serialize

import (
	"testing"

	"github.com/ryanwaits/openpkg/docparse"
	"github.com/ryanwaits/openpkg/format"
	"github.com/ryanwaits/openpkg/ir"
	"github.com/ryanwaits/openpkg/resolve"
	rt "github.com/ryanwaits/openpkg/resolve/resolvetest"
	"github.com/ryanwaits/openpkg/spec"
)

func testSerializer() *Serializer {
	reg := spec.NewRegistry()
	cx := format.NewContext(reg, format.Config{})
	return New(rt.New(), reg, cx, Config{})
}

func TestStructureParam_Plain(t *testing.T) {
	s := testSerializer()
	doc := docparse.Parse("@param {number} count - How many.")

	p := s.StructureParam(rt.P("count", rt.Num(), "number"), doc)
	if p.Name != "count" || !p.Required {
		t.Errorf("param = %+v", p)
	}
	if p.Description != "How many." {
		t.Errorf("description = %q", p.Description)
	}
	if !p.Schema.Equal(ir.Prim("number")) {
		t.Errorf("schema = %#v", p.Schema)
	}
}

func TestStructureParam_OptionalWithDefault(t *testing.T) {
	s := testSerializer()
	p := s.StructureParam(resolve.Param{
		Name: "limit", Type: rt.Num(), Optional: true, Default: "10",
	}, docparse.Parse(""))
	if p.Required {
		t.Error("defaulted param marked required")
	}
	if p.Default != "10" {
		t.Errorf("default = %q", p.Default)
	}
}

func TestStructureParam_DestructuredNameByMajorityVote(t *testing.T) {
	s := testSerializer()
	doc := docparse.Parse(`@param {number} opts.timeout - Timeout.
@param {boolean} opts.retry - Retry on failure.
@param {string} config.host - Host name.`)

	p := s.StructureParam(resolve.Param{
		Binding: []resolve.BindingProperty{
			{Name: "timeout", Type: rt.Num()},
			{Name: "retry", Type: rt.Bool(), Optional: true},
			{Name: "host", Type: rt.Str()},
		},
	}, doc)

	if p.Name != "opts" {
		t.Errorf("name = %q, want opts (2 votes beat 1)", p.Name)
	}
	obj, ok := p.Schema.(*ir.Object)
	if !ok {
		t.Fatalf("schema = %T, want object", p.Schema)
	}
	if len(obj.Properties) != 3 {
		t.Errorf("properties = %d, want 3", len(obj.Properties))
	}
	if len(obj.Required) != 2 {
		t.Errorf("required = %v, want [timeout host]", obj.Required)
	}
}

func TestStructureParam_DestructuredPlaceholder(t *testing.T) {
	s := testSerializer()
	p := s.StructureParam(resolve.Param{
		Binding: []resolve.BindingProperty{{Name: "a", Type: rt.Str()}},
	}, docparse.Parse("No dotted hints here."))
	if p.Name != "options" {
		t.Errorf("name = %q, want placeholder options", p.Name)
	}
}

func TestParamSchema_SyntaxFallbackWhenImprecise(t *testing.T) {
	s := testSerializer()
	p := s.StructureParam(resolve.Param{
		Name:       "cfg",
		Type:       rt.Prim("any"),
		SyntaxType: rt.Obj(rt.Prop("debug", rt.Bool())),
	}, docparse.Parse(""))

	obj, ok := p.Schema.(*ir.Object)
	if !ok || obj.Prop("debug") == nil {
		t.Errorf("schema = %#v, want syntactic object", p.Schema)
	}
}

func TestParamSchema_MaterialDisagreementCombines(t *testing.T) {
	s := testSerializer()
	p := s.StructureParam(resolve.Param{
		Name:       "value",
		Type:       rt.Obj(rt.Prop("a", rt.Str())),
		SyntaxType: rt.Obj(rt.Prop("b", rt.Num())),
	}, docparse.Parse(""))

	all, ok := p.Schema.(*ir.AllOf)
	if !ok || len(all.Schemas) != 2 {
		t.Errorf("schema = %#v, want allOf of both", p.Schema)
	}
}

func TestParamSchema_AgreementKeepsResolved(t *testing.T) {
	s := testSerializer()
	p := s.StructureParam(resolve.Param{
		Name:       "name",
		Type:       rt.Str(),
		SyntaxType: rt.Str(),
	}, docparse.Parse(""))
	if !p.Schema.Equal(ir.Prim("string")) {
		t.Errorf("schema = %#v", p.Schema)
	}
}

func TestStructureParam_RestParameter(t *testing.T) {
	s := testSerializer()
	p := s.StructureParam(resolve.Param{
		Name: "items", Type: rt.ArrayOf(rt.Str()), Rest: true,
	}, docparse.Parse(""))
	if !p.Rest {
		t.Error("rest flag lost")
	}
	if _, ok := p.Schema.(*ir.Array); !ok {
		t.Errorf("schema = %T, want array", p.Schema)
	}
}

func TestStructureParam_UnionOfAnonymousObjectsFlattens(t *testing.T) {
	reg := spec.NewRegistry()
	cx := format.NewContext(reg, format.Config{})
	s := New(rt.New(), reg, cx, Config{})

	p := s.StructureParam(resolve.Param{
		Name: "input",
		Type: rt.Union(
			rt.Obj(rt.Prop("text", rt.Str())),
			rt.Obj(rt.Prop("data", rt.ArrayOf(rt.Num()))),
		),
	}, docparse.Parse(""))

	u, ok := p.Schema.(*ir.AnyOf)
	if !ok || len(u.Schemas) != 2 {
		t.Errorf("schema = %#v, want anyOf of 2 objects", p.Schema)
	}
}

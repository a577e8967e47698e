package ir

import (
	"testing"

	json "github.com/goccy/go-json"
)

func mustJSON(t *testing.T, s Schema) string {
	t.Helper()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestRef_MarshalJSON(t *testing.T) {
	got := mustJSON(t, NewRef("User"))
	want := `{"$ref":"#/types/User"}`
	if got != want {
		t.Errorf("Ref JSON = %s, want %s", got, want)
	}
}

func TestPrimitive_MarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		want   string
	}{
		{"string", Prim("string"), `{"type":"string"}`},
		{"bigint", PrimFormat("string", "bigint"), `{"type":"string","format":"bigint"}`},
		{"null", Null(), `{"type":"null"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustJSON(t, tt.schema); got != tt.want {
				t.Errorf("JSON = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestObject_MarshalJSON_PreservesOrder(t *testing.T) {
	obj := &Object{
		Properties: []Property{
			{Name: "zeta", Schema: Prim("string")},
			{Name: "alpha", Schema: Prim("number")},
		},
		Required: []string{"zeta"},
	}
	got := mustJSON(t, obj)
	want := `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"number"}},"required":["zeta"]}`
	if got != want {
		t.Errorf("Object JSON = %s, want %s", got, want)
	}
}

func TestObject_MarshalJSON_AdditionalProperties(t *testing.T) {
	obj := &Object{AdditionalProperties: Prim("number")}
	got := mustJSON(t, obj)
	want := `{"type":"object","additionalProperties":{"type":"number"}}`
	if got != want {
		t.Errorf("Object JSON = %s, want %s", got, want)
	}
}

func TestAnyOf_MarshalJSON_Discriminator(t *testing.T) {
	u := &AnyOf{
		Schemas:       []Schema{NewRef("A"), NewRef("B")},
		Discriminator: "kind",
	}
	got := mustJSON(t, u)
	want := `{"anyOf":[{"$ref":"#/types/A"},{"$ref":"#/types/B"}],"discriminator":{"propertyName":"kind"}}`
	if got != want {
		t.Errorf("AnyOf JSON = %s, want %s", got, want)
	}
}

func TestUnknown_MarshalJSON(t *testing.T) {
	if got := mustJSON(t, NewUnknown()); got != "{}" {
		t.Errorf("Unknown JSON = %s, want {}", got)
	}
}

func TestOpaque_MarshalJSON(t *testing.T) {
	got := mustJSON(t, &Opaque{Type: "Promise<string>"})
	want := `{"type":"Promise<string>"}`
	// goccy/go-json escapes angle brackets by default, same as encoding/json.
	if got != want {
		t.Errorf("Opaque JSON = %s, want %s", got, want)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Schema
		want bool
	}{
		{"same primitive", Prim("string"), Prim("string"), true},
		{"different primitive", Prim("string"), Prim("number"), false},
		{"primitive vs ref", Prim("string"), NewRef("string"), false},
		{"same ref", NewRef("User"), NewRef("User"), true},
		{"different ref", NewRef("User"), NewRef("Post"), false},
		{
			"same object",
			&Object{Properties: []Property{{Name: "a", Schema: Prim("string")}}, Required: []string{"a"}},
			&Object{Properties: []Property{{Name: "a", Schema: Prim("string")}}, Required: []string{"a"}},
			true,
		},
		{
			"object required differs",
			&Object{Properties: []Property{{Name: "a", Schema: Prim("string")}}, Required: []string{"a"}},
			&Object{Properties: []Property{{Name: "a", Schema: Prim("string")}}},
			false,
		},
		{"array", &Array{Items: NewRef("Node")}, &Array{Items: NewRef("Node")}, true},
		{"enum", Literal("a"), Literal("a"), true},
		{"enum differs", Literal("a"), Literal("b"), false},
		{"unknown", NewUnknown(), NewUnknown(), true},
		{
			"anyOf order matters",
			&AnyOf{Schemas: []Schema{Prim("string"), Null()}},
			&AnyOf{Schemas: []Schema{Null(), Prim("string")}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDedup(t *testing.T) {
	in := []Schema{Prim("string"), Prim("string"), Null(), Prim("string")}
	out := Dedup(in)
	if len(out) != 2 {
		t.Fatalf("Dedup length = %d, want 2", len(out))
	}
	if !out[0].Equal(Prim("string")) || !out[1].Equal(Null()) {
		t.Errorf("Dedup order not preserved: %v", out)
	}
}

package spec

import "testing"

func TestRegistry_RegisterTypeDefinition_FirstWriterWins(t *testing.T) {
	r := NewRegistry()

	first := &Type{ID: "type:User", Name: "User", Kind: "interface"}
	second := &Type{ID: "type:User2", Name: "User", Kind: "type"}

	if !r.RegisterTypeDefinition(first) {
		t.Fatal("first registration rejected")
	}
	if r.RegisterTypeDefinition(second) {
		t.Error("duplicate registration accepted")
	}
	if got := r.Definition("User"); got != first {
		t.Errorf("Definition(User) = %+v, want first registration", got)
	}
	if n := len(r.TypeDefinitions()); n != 1 {
		t.Errorf("TypeDefinitions length = %d, want 1", n)
	}
}

func TestRegistry_RegisterExportedType_Idempotent(t *testing.T) {
	r := NewRegistry()
	r.RegisterExportedType("User", "type:User")
	r.RegisterExportedType("User", "type:Other")

	if got := r.TypeRefs()["User"]; got != "type:User" {
		t.Errorf("typeRefs[User] = %q, want type:User", got)
	}
}

func TestRegistry_IsKnownType_AliasHop(t *testing.T) {
	r := NewRegistry()
	// UserAlias re-exports User; it is known only once User is serialized.
	r.RegisterExportedType("User", "User")
	r.RegisterExportedType("UserAlias", "User")

	if r.IsKnownType("UserAlias") {
		t.Error("alias known before canonical target serialized")
	}

	r.RegisterTypeDefinition(&Type{ID: "type:User", Name: "User"})

	if !r.IsKnownType("User") {
		t.Error("serialized type not known")
	}
	if !r.IsKnownType("UserAlias") {
		t.Error("alias not known after canonical target serialized")
	}
	if r.IsKnownType("Missing") {
		t.Error("unregistered name reported known")
	}
}

func TestRegistry_Pending(t *testing.T) {
	r := NewRegistry()
	r.MarkReferenced("Node")
	r.MarkReferenced("Edge")

	pending := r.Pending()
	if len(pending) != 2 {
		t.Fatalf("Pending length = %d, want 2", len(pending))
	}

	r.RegisterTypeDefinition(&Type{ID: "type:Node", Name: "Node"})
	pending = r.Pending()
	if len(pending) != 1 || pending[0] != "Edge" {
		t.Errorf("Pending = %v, want [Edge]", pending)
	}

	// Referencing an already-defined name stays settled.
	r.MarkReferenced("Node")
	if r.IsReferenced("Node") {
		t.Error("defined type re-entered referenced set")
	}
}

func TestRegistry_DefinitionsOrdered(t *testing.T) {
	r := NewRegistry()
	names := []string{"C", "A", "B"}
	for _, n := range names {
		r.RegisterTypeDefinition(&Type{ID: "type:" + n, Name: n})
	}
	defs := r.TypeDefinitions()
	for i, n := range names {
		if defs[i].Name != n {
			t.Errorf("TypeDefinitions[%d] = %s, want %s", i, defs[i].Name, n)
		}
	}
}

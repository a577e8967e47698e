package ir

// Equal implements structural equality for each node kind. Two nodes are
// equal only when their kinds and all nested structure match.

// Equal reports whether o is a Primitive with the same name and format.
func (s *Primitive) Equal(o Schema) bool {
	p, ok := o.(*Primitive)
	return ok && p.Name == s.Name && p.Format == s.Format
}

// Equal reports whether o is a Ref to the same name.
func (s *Ref) Equal(o Schema) bool {
	r, ok := o.(*Ref)
	return ok && r.Name == s.Name
}

// Equal reports whether o is an Object with identical properties, required
// set, additionalProperties, and description.
func (s *Object) Equal(o Schema) bool {
	obj, ok := o.(*Object)
	if !ok || len(obj.Properties) != len(s.Properties) || len(obj.Required) != len(s.Required) {
		return false
	}
	if obj.Description != s.Description {
		return false
	}
	for i, p := range s.Properties {
		q := obj.Properties[i]
		if p.Name != q.Name || !schemaEqual(p.Schema, q.Schema) {
			return false
		}
	}
	for i, name := range s.Required {
		if obj.Required[i] != name {
			return false
		}
	}
	return schemaEqual(s.AdditionalProperties, obj.AdditionalProperties)
}

// Equal reports whether o is an Array with equal items.
func (s *Array) Equal(o Schema) bool {
	a, ok := o.(*Array)
	return ok && schemaEqual(s.Items, a.Items)
}

// Equal reports whether o is an AnyOf with equal members and discriminator.
func (s *AnyOf) Equal(o Schema) bool {
	a, ok := o.(*AnyOf)
	return ok && a.Discriminator == s.Discriminator && schemasEqual(s.Schemas, a.Schemas)
}

// Equal reports whether o is an AllOf with equal members.
func (s *AllOf) Equal(o Schema) bool {
	a, ok := o.(*AllOf)
	return ok && schemasEqual(s.Schemas, a.Schemas)
}

// Equal reports whether o is a OneOf with equal members.
func (s *OneOf) Equal(o Schema) bool {
	a, ok := o.(*OneOf)
	return ok && schemasEqual(s.Schemas, a.Schemas)
}

// Equal reports whether o is an Enum with the same values in order.
func (s *Enum) Equal(o Schema) bool {
	e, ok := o.(*Enum)
	if !ok || len(e.Values) != len(s.Values) {
		return false
	}
	for i, v := range s.Values {
		if e.Values[i] != v {
			return false
		}
	}
	return true
}

// Equal reports whether o is an Opaque with the same text.
func (s *Opaque) Equal(o Schema) bool {
	t, ok := o.(*Opaque)
	return ok && t.Type == s.Type
}

// Equal reports whether o is also Unknown.
func (s *Unknown) Equal(o Schema) bool {
	_, ok := o.(*Unknown)
	return ok
}

func schemaEqual(a, b Schema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func schemasEqual(a, b []Schema) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !schemaEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Dedup returns schemas with structurally identical members removed,
// preserving first-seen order.
func Dedup(schemas []Schema) []Schema {
	var out []Schema
	for _, s := range schemas {
		dup := false
		for _, seen := range out {
			if schemaEqual(s, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

// Package ir defines the Schema intermediate representation: the tagged
// JSON-Schema-like fragments the formatter produces for every resolved type.
// Nodes are language-agnostic; a Ref renders as {"$ref": "#/types/<Name>"}
// against the analysis output's types array.
package ir

// Kind identifies the category of a schema node.
type Kind int

const (
	KindUnknown Kind = iota // no structural information
	KindPrimitive
	KindRef
	KindObject
	KindArray
	KindAnyOf
	KindAllOf
	KindOneOf
	KindEnum
	KindOpaque // textual type carried verbatim
	KindRaw    // externally produced schema fragment
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindPrimitive:
		return "Primitive"
	case KindRef:
		return "Ref"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindAnyOf:
		return "AnyOf"
	case KindAllOf:
		return "AllOf"
	case KindOneOf:
		return "OneOf"
	case KindEnum:
		return "Enum"
	case KindOpaque:
		return "Opaque"
	case KindRaw:
		return "Raw"
	default:
		return "Invalid"
	}
}

// Schema is the base interface for all schema nodes.
type Schema interface {
	// Kind returns the node kind for type switching.
	Kind() Kind

	// Equal reports structural equality with another node. Used by the
	// formatter to deduplicate union members.
	Equal(Schema) bool

	// Ensure only types in this package can implement Schema.
	sealed()
}

type base struct{}

func (base) sealed() {}

// Primitive represents a canonical primitive token, optionally with a
// format qualifier (e.g. bigint serializes as type string, format bigint).
type Primitive struct {
	base
	Name   string
	Format string
}

// Kind returns KindPrimitive.
func (s *Primitive) Kind() Kind { return KindPrimitive }

// Ref is a pointer to a named type in the output's types array.
type Ref struct {
	base
	Name string
}

// Kind returns KindRef.
func (s *Ref) Kind() Kind { return KindRef }

// Property is a single named object property. Object properties are an
// ordered list so output is deterministic.
type Property struct {
	Name   string
	Schema Schema
}

// Object represents a structural object type.
type Object struct {
	base

	// Properties in declaration order.
	Properties []Property

	// Required lists property names that are not optional.
	Required []string

	// AdditionalProperties, when non-nil, is the value schema for
	// map-like objects.
	AdditionalProperties Schema

	// Description carries the textual form of types that cannot be
	// losslessly structured (mapped/conditional types).
	Description string
}

// Kind returns KindObject.
func (s *Object) Kind() Kind { return KindObject }

// Prop returns the property with the given name, or nil.
func (s *Object) Prop(name string) Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// Array represents an ordered collection.
type Array struct {
	base
	Items Schema
}

// Kind returns KindArray.
func (s *Array) Kind() Kind { return KindArray }

// AnyOf represents a union of alternatives. Discriminator, when set, names
// the property whose distinct literal value identifies the member (tagged
// union).
type AnyOf struct {
	base
	Schemas       []Schema
	Discriminator string
}

// Kind returns KindAnyOf.
func (s *AnyOf) Kind() Kind { return KindAnyOf }

// AllOf represents an intersection of schemas.
type AllOf struct {
	base
	Schemas []Schema
}

// Kind returns KindAllOf.
func (s *AllOf) Kind() Kind { return KindAllOf }

// OneOf represents an exclusive choice of schemas.
type OneOf struct {
	base
	Schemas []Schema
}

// Kind returns KindOneOf.
func (s *OneOf) Kind() Kind { return KindOneOf }

// Enum represents a fixed set of literal values. Single-value enums encode
// literal types.
type Enum struct {
	base
	Values []any
}

// Kind returns KindEnum.
func (s *Enum) Kind() Kind { return KindEnum }

// Opaque carries a type's textual form when no structural rendering exists.
type Opaque struct {
	base
	Type string
}

// Kind returns KindOpaque.
func (s *Opaque) Kind() Kind { return KindOpaque }

// Unknown is the degraded result of cycle/depth guards and resolution misses.
type Unknown struct {
	base
}

// Kind returns KindUnknown.
func (s *Unknown) Kind() Kind { return KindUnknown }

// Convenience constructors.

// Prim returns a Primitive with the given canonical token.
func Prim(name string) *Primitive {
	return &Primitive{Name: name}
}

// PrimFormat returns a Primitive with a format qualifier.
func PrimFormat(name, format string) *Primitive {
	return &Primitive{Name: name, Format: format}
}

// Null returns the null-ish primitive that void/never/undefined/null
// collapse to. JSON Schema has no void or never; this is an explicit
// approximation.
func Null() *Primitive {
	return &Primitive{Name: "null"}
}

// NewRef returns a Ref to a named type.
func NewRef(name string) *Ref {
	return &Ref{Name: name}
}

// Literal returns a single-value Enum for a literal type.
func Literal(value any) *Enum {
	return &Enum{Values: []any{value}}
}

// NewUnknown returns the unknown schema.
func NewUnknown() *Unknown {
	return &Unknown{}
}

// IsNullish reports whether the schema is the null primitive.
func IsNullish(s Schema) bool {
	p, ok := s.(*Primitive)
	return ok && p.Name == "null"
}

// Package resolve defines the semantic resolution boundary: the resolved
// type and declaration model the engine consumes, and the Resolver interface
// that front ends (the go/packages provider, test fixtures) implement. The
// engine never mutates resolved values.
package resolve

import "context"

// TypeKind classifies a resolved type's structure.
type TypeKind int

const (
	KindOpaque TypeKind = iota // only the textual form is known
	KindPrimitive
	KindLiteral
	KindObject
	KindArray
	KindUnion
	KindIntersection
	KindFunction
	KindTypeParam
	KindMapped
	KindConditional
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case KindOpaque:
		return "Opaque"
	case KindPrimitive:
		return "Primitive"
	case KindLiteral:
		return "Literal"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindUnion:
		return "Union"
	case KindIntersection:
		return "Intersection"
	case KindFunction:
		return "Function"
	case KindTypeParam:
		return "TypeParam"
	case KindMapped:
		return "Mapped"
	case KindConditional:
		return "Conditional"
	default:
		return "Invalid"
	}
}

// Type is a resolved type. Resolvers construct it; the formatter only reads.
type Type struct {
	Kind TypeKind

	// ID is the resolver-internal identity, used for mid-expansion cycle
	// detection. Zero means no identity is available.
	ID int64

	// Name is the primitive token (string, number, boolean, ...) for
	// primitives, or the symbol name for named object types. Empty for
	// anonymous structural types.
	Name string

	// Alias is the alias symbol name when the type was reached through a
	// named alias. Alias mentions become references once the alias is
	// known to the registry.
	Alias string

	// AliasArgs are the type arguments applied to the alias, when any.
	// Runtime-schema adapters decode these.
	AliasArgs []*Type

	// Builtin marks Name/Alias as a language or library built-in that
	// must not be turned into a reference.
	Builtin bool

	// Text is the original textual form of the type.
	Text string

	// Literal is the literal value for KindLiteral.
	Literal any

	// Properties are the enumerable properties of object-like types.
	Properties []Property

	// Additional is the value type for map-like objects (string-indexed).
	Additional *Type

	// Members are the union or intersection members.
	Members []*Type

	// Elem is the element type for arrays.
	Elem *Type

	// Signatures are the call signatures of function types.
	Signatures []Signature
}

// Property is one enumerable property of an object-like type.
type Property struct {
	Name     string
	Type     *Type
	Optional bool
	Readonly bool

	// Internal marks resolver/library marker properties the formatter
	// must skip when expanding inline.
	Internal bool
}

// Signature is one call or construct signature.
type Signature struct {
	Params     []Param
	Return     *Type
	ReturnText string
	TypeParams []TypeParamDecl
}

// TypeParamDecl is a generic type parameter declaration.
type TypeParamDecl struct {
	Name       string
	Constraint string
}

// Param is one declaration parameter.
type Param struct {
	Name     string
	Type     *Type
	TypeText string

	// SyntaxType is the type built from the syntax-tree annotation. Used
	// when the resolver yields an imprecise Type, or combined when both
	// exist and materially disagree.
	SyntaxType *Type

	Optional bool
	Default  string
	Rest     bool

	// Binding holds the bound properties of a destructured parameter.
	// Empty for plain named parameters.
	Binding []BindingProperty
}

// BindingProperty is one element of an object/array binding pattern.
type BindingProperty struct {
	Name     string
	Type     *Type
	Optional bool
	Default  string
}

// DeclKind identifies the declaration kind a serializer dispatches on.
type DeclKind string

const (
	DeclClass     DeclKind = "class"
	DeclInterface DeclKind = "interface"
	DeclFunction  DeclKind = "function"
	DeclEnum      DeclKind = "enum"
	DeclTypeAlias DeclKind = "type"
	DeclVariable  DeclKind = "variable"
	DeclNamespace DeclKind = "namespace"
)

// MemberKind identifies a class/interface member kind.
type MemberKind string

const (
	MemberProperty    MemberKind = "property"
	MemberMethod      MemberKind = "method"
	MemberAccessor    MemberKind = "accessor"
	MemberConstructor MemberKind = "constructor"
)

// Location is a source position.
type Location struct {
	File string
	Line int
}

// Member is one class or interface member declaration.
type Member struct {
	Name       string
	Kind       MemberKind
	Doc        string
	Type       *Type
	TypeText   string
	Visibility string // public, protected, private; empty means public
	Optional   bool
	Readonly   bool
	Static     bool
	Generator  bool
	Deprecated bool
	Signatures []Signature
	Loc        Location
}

// EnumMember is one enum member declaration.
type EnumMember struct {
	Name  string
	Value any
	Doc   string
}

// RuntimeSchema is a schema obtained by actually evaluating a recognized
// schema object, supplied by the resolution front end.
type RuntimeSchema struct {
	Library string
	Schema  map[string]any
}

// Declaration is one top-level declaration the serializers consume.
type Declaration struct {
	Kind DeclKind
	Name string

	// Doc is the raw leading comment block, unparsed.
	Doc string

	// Type is the resolved type for variables, type aliases, and the
	// instance shape of classes/interfaces.
	Type *Type

	// SyntaxType is the syntax-tree annotation type where one exists.
	SyntaxType *Type

	// Signatures are the call signatures of functions.
	Signatures []Signature

	// Members are class/interface members.
	Members []Member

	// EnumMembers are enum members.
	EnumMembers []EnumMember

	// Namespace holds nested declarations for namespace kinds.
	Namespace []*Declaration

	// IsAugmentation marks string-literal module names: an augmentation
	// rather than a plain namespace.
	IsAugmentation bool

	// TypeParams are declaration-level generic parameters.
	TypeParams []TypeParamDecl

	// Deprecated reflects declaration-level deprecation independent of
	// documentation.
	Deprecated bool

	// Runtime is a runtime-verified schema for variable declarations,
	// when the front end evaluated one.
	Runtime *RuntimeSchema

	Loc Location
}

// Meta is package-level metadata reported by a resolver.
type Meta struct {
	Name        string
	Version     string
	Description string
	License     string
	Repository  string
	Ecosystem   string
}

// Resolver is the semantic resolution capability. A resolver that cannot be
// constructed at all is the only hard failure the engine surfaces; per-symbol
// misses degrade to opaque schemas instead.
type Resolver interface {
	// Meta reports package-level metadata.
	Meta() Meta

	// Exports returns the exported top-level declarations.
	Exports(ctx context.Context) ([]*Declaration, error)

	// Declaration resolves a referenced type name to its declaration.
	// Returns nil (and no error) when the name cannot be resolved.
	Declaration(ctx context.Context, name string) (*Declaration, error)
}

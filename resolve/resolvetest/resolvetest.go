// Package resolvetest provides a synthetic in-memory Resolver and resolved
// type constructors for exercising the engine without a language front end.
package resolvetest

import (
	"context"

	"github.com/ryanwaits/openpkg/resolve"
)

// Resolver is a map-backed resolve.Resolver.
type Resolver struct {
	PackageMeta  resolve.Meta
	Decls        []*resolve.Declaration
	Declarations map[string]*resolve.Declaration
}

// New returns a Resolver over the given exported declarations. Named type
// lookups resolve against both the exports and any extra declarations added
// with Add.
func New(decls ...*resolve.Declaration) *Resolver {
	r := &Resolver{
		PackageMeta:  resolve.Meta{Name: "fixture", Ecosystem: "test"},
		Decls:        decls,
		Declarations: make(map[string]*resolve.Declaration),
	}
	for _, d := range decls {
		r.Declarations[d.Name] = d
	}
	return r
}

// Add registers a non-exported declaration reachable by reference only.
func (r *Resolver) Add(d *resolve.Declaration) *Resolver {
	r.Declarations[d.Name] = d
	return r
}

// Meta implements resolve.Resolver.
func (r *Resolver) Meta() resolve.Meta { return r.PackageMeta }

// Exports implements resolve.Resolver.
func (r *Resolver) Exports(ctx context.Context) ([]*resolve.Declaration, error) {
	return r.Decls, nil
}

// Declaration implements resolve.Resolver.
func (r *Resolver) Declaration(ctx context.Context, name string) (*resolve.Declaration, error) {
	return r.Declarations[name], nil
}

var nextID int64

// Constructors for resolved types. Each call mints a fresh identity.

func newType(kind resolve.TypeKind) *resolve.Type {
	nextID++
	return &resolve.Type{Kind: kind, ID: nextID}
}

// Prim returns a primitive type with the given token.
func Prim(name string) *resolve.Type {
	t := newType(resolve.KindPrimitive)
	t.Name = name
	t.Text = name
	return t
}

// Str returns the string primitive.
func Str() *resolve.Type { return Prim("string") }

// Num returns the number primitive.
func Num() *resolve.Type { return Prim("number") }

// Bool returns the boolean primitive.
func Bool() *resolve.Type { return Prim("boolean") }

// Lit returns a literal type.
func Lit(value any) *resolve.Type {
	t := newType(resolve.KindLiteral)
	t.Literal = value
	return t
}

// Obj returns an anonymous object type over the given properties.
func Obj(props ...resolve.Property) *resolve.Type {
	t := newType(resolve.KindObject)
	t.Properties = props
	return t
}

// Named returns an object type carrying a symbol name.
func Named(name string, props ...resolve.Property) *resolve.Type {
	t := Obj(props...)
	t.Name = name
	t.Text = name
	return t
}

// Aliased marks t as reached through the named alias.
func Aliased(name string, t *resolve.Type) *resolve.Type {
	t.Alias = name
	return t
}

// Prop returns a required property.
func Prop(name string, t *resolve.Type) resolve.Property {
	return resolve.Property{Name: name, Type: t}
}

// OptProp returns an optional property.
func OptProp(name string, t *resolve.Type) resolve.Property {
	return resolve.Property{Name: name, Type: t, Optional: true}
}

// ArrayOf returns an array type.
func ArrayOf(elem *resolve.Type) *resolve.Type {
	t := newType(resolve.KindArray)
	t.Elem = elem
	return t
}

// Union returns a union of members.
func Union(members ...*resolve.Type) *resolve.Type {
	t := newType(resolve.KindUnion)
	t.Members = members
	return t
}

// Intersection returns an intersection of members.
func Intersection(members ...*resolve.Type) *resolve.Type {
	t := newType(resolve.KindIntersection)
	t.Members = members
	return t
}

// NullType returns the null primitive.
func NullType() *resolve.Type { return Prim("null") }

// Opaque returns a type known only by its textual form.
func Opaque(text string) *resolve.Type {
	t := newType(resolve.KindOpaque)
	t.Text = text
	return t
}

// Func returns a declaration for a function with one signature.
func Func(name, doc string, sig resolve.Signature) *resolve.Declaration {
	return &resolve.Declaration{
		Kind:       resolve.DeclFunction,
		Name:       name,
		Doc:        doc,
		Signatures: []resolve.Signature{sig},
	}
}

// Sig returns a signature.
func Sig(ret *resolve.Type, retText string, params ...resolve.Param) resolve.Signature {
	return resolve.Signature{Params: params, Return: ret, ReturnText: retText}
}

// P returns a required parameter.
func P(name string, t *resolve.Type, text string) resolve.Param {
	return resolve.Param{Name: name, Type: t, TypeText: text}
}

// TypeAlias returns a type alias declaration.
func TypeAlias(name, doc string, t *resolve.Type) *resolve.Declaration {
	return &resolve.Declaration{
		Kind: resolve.DeclTypeAlias,
		Name: name,
		Doc:  doc,
		Type: t,
	}
}

// Iface returns an interface declaration.
func Iface(name, doc string, members ...resolve.Member) *resolve.Declaration {
	return &resolve.Declaration{
		Kind:    resolve.DeclInterface,
		Name:    name,
		Doc:     doc,
		Members: members,
	}
}

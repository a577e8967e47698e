package provider

import (
	"go/types"
	"reflect"
	"strings"

	"github.com/ryanwaits/openpkg/resolve"
)

// convert maps a Go type to the resolved model. Named types are emitted as
// shallow name-bearing values: the formatter turns them into references and
// the registry schedules their expansion.
func (r *Resolver) convert(t types.Type) *resolve.Type {
	if special := r.specialType(t); special != nil {
		return special
	}

	switch typ := t.(type) {
	case *types.Basic:
		return basicType(typ)

	case *types.Alias:
		return r.convert(types.Unalias(typ))

	case *types.Named:
		obj := typ.Obj()
		if obj.Pkg() == nil {
			// Universe names; error is the one that matters.
			if obj.Name() == "error" {
				return &resolve.Type{Kind: resolve.KindOpaque, Text: "error", Builtin: true}
			}
			return &resolve.Type{Kind: resolve.KindOpaque, Text: obj.Name(), Builtin: true}
		}
		// Alias is set so mentions of any named type, not just object
		// shapes, become references.
		return &resolve.Type{
			Kind:  underlyingKind(typ),
			ID:    r.typeID(typ),
			Name:  obj.Name(),
			Alias: obj.Name(),
			Text:  r.typeText(typ),
		}

	case *types.Pointer:
		// nil is representable, so a pointer is the element or null.
		return &resolve.Type{
			Kind: resolve.KindUnion,
			ID:   r.typeID(typ),
			Text: r.typeText(typ),
			Members: []*resolve.Type{
				r.convert(typ.Elem()),
				{Kind: resolve.KindPrimitive, Name: "null", Text: "null"},
			},
		}

	case *types.Slice:
		return &resolve.Type{
			Kind: resolve.KindArray,
			ID:   r.typeID(typ),
			Text: r.typeText(typ),
			Elem: r.convert(typ.Elem()),
		}

	case *types.Array:
		return &resolve.Type{
			Kind: resolve.KindArray,
			ID:   r.typeID(typ),
			Text: r.typeText(typ),
			Elem: r.convert(typ.Elem()),
		}

	case *types.Map:
		return &resolve.Type{
			Kind:       resolve.KindObject,
			ID:         r.typeID(typ),
			Text:       r.typeText(typ),
			Additional: r.convert(typ.Elem()),
		}

	case *types.Struct:
		return &resolve.Type{
			Kind:       resolve.KindObject,
			ID:         r.typeID(typ),
			Text:       r.typeText(typ),
			Properties: r.structProperties(typ),
		}

	case *types.Interface:
		if typ.Empty() {
			return &resolve.Type{Kind: resolve.KindPrimitive, Name: "any", Text: "any"}
		}
		return &resolve.Type{Kind: resolve.KindOpaque, Text: r.typeText(typ)}

	case *types.Signature:
		return &resolve.Type{
			Kind:       resolve.KindFunction,
			ID:         r.typeID(typ),
			Text:       r.typeText(typ),
			Signatures: []resolve.Signature{r.signature(typ)},
		}

	case *types.TypeParam:
		return &resolve.Type{Kind: resolve.KindOpaque, Text: typ.Obj().Name()}

	default:
		// Channels and anything else that has no JSON shape.
		return &resolve.Type{Kind: resolve.KindOpaque, Text: r.typeText(t)}
	}
}

// specialType short-circuits well-known types that have a conventional JSON
// rendering.
func (r *Resolver) specialType(t types.Type) *resolve.Type {
	switch typ := t.(type) {
	case *types.Slice:
		if basic, ok := typ.Elem().(*types.Basic); ok {
			if basic.Kind() == types.Byte || basic.Kind() == types.Uint8 {
				// []byte marshals to a base64 string.
				return &resolve.Type{Kind: resolve.KindPrimitive, Name: "string", Text: "[]byte"}
			}
		}
	case *types.Named:
		obj := typ.Obj()
		if obj == nil || obj.Pkg() == nil {
			return nil
		}
		switch obj.Pkg().Path() {
		case "time":
			switch obj.Name() {
			case "Time":
				return &resolve.Type{Kind: resolve.KindPrimitive, Name: "string", Text: "time.Time", Builtin: true}
			case "Duration":
				return &resolve.Type{Kind: resolve.KindPrimitive, Name: "number", Text: "time.Duration", Builtin: true}
			}
		case "encoding/json":
			if obj.Name() == "RawMessage" {
				return &resolve.Type{Kind: resolve.KindPrimitive, Name: "any", Text: "json.RawMessage", Builtin: true}
			}
		}
		if hasCustomMarshaler(typ) {
			return &resolve.Type{Kind: resolve.KindPrimitive, Name: "any", Text: r.typeText(typ), Builtin: true}
		}
	}
	return nil
}

// hasCustomMarshaler reports whether the type controls its own JSON form.
func hasCustomMarshaler(named *types.Named) bool {
	for i := 0; i < named.NumMethods(); i++ {
		method := named.Method(i)
		if method.Name() != "MarshalJSON" && method.Name() != "MarshalText" {
			continue
		}
		sig := method.Type().(*types.Signature)
		if sig.Params().Len() == 0 && sig.Results().Len() == 2 {
			return true
		}
	}
	return false
}

func basicType(basic *types.Basic) *resolve.Type {
	switch basic.Kind() {
	case types.Bool, types.UntypedBool:
		return &resolve.Type{Kind: resolve.KindPrimitive, Name: "boolean", Text: "bool"}
	case types.String, types.UntypedString:
		return &resolve.Type{Kind: resolve.KindPrimitive, Name: "string", Text: "string"}
	case types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
		types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64,
		types.Uintptr, types.Float32, types.Float64,
		types.UntypedInt, types.UntypedFloat, types.UntypedRune:
		return &resolve.Type{Kind: resolve.KindPrimitive, Name: "number", Text: basic.Name()}
	default:
		return &resolve.Type{Kind: resolve.KindPrimitive, Name: "any", Text: basic.Name()}
	}
}

// underlyingKind classifies a named type so the formatter knows the shape it
// refers to.
func underlyingKind(named *types.Named) resolve.TypeKind {
	switch named.Underlying().(type) {
	case *types.Struct, *types.Map, *types.Interface:
		return resolve.KindObject
	case *types.Basic:
		return resolve.KindPrimitive
	case *types.Slice, *types.Array:
		return resolve.KindArray
	case *types.Signature:
		return resolve.KindFunction
	default:
		return resolve.KindOpaque
	}
}

// structType is the declaration-site structural type of a named struct.
func (r *Resolver) structType(named *types.Named, st *types.Struct) *resolve.Type {
	return &resolve.Type{
		Kind:       resolve.KindObject,
		ID:         r.typeID(named),
		Name:       named.Obj().Name(),
		Text:       r.typeText(named),
		Properties: r.structProperties(st),
	}
}

// structProperties converts exported struct fields, honoring json tags and
// inlining untagged embedded structs the way encoding/json does.
func (r *Resolver) structProperties(st *types.Struct) []resolve.Property {
	var out []resolve.Property
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}
		tag := reflect.StructTag(st.Tag(i))
		name, opts := parseJSONTag(tag.Get("json"))
		if name == "-" {
			continue
		}

		if field.Embedded() && name == "" {
			embedded := field.Type()
			if ptr, ok := embedded.(*types.Pointer); ok {
				embedded = ptr.Elem()
			}
			if inner, ok := embedded.Underlying().(*types.Struct); ok {
				out = append(out, r.structProperties(inner)...)
				continue
			}
		}

		if name == "" {
			name = field.Name()
		}
		out = append(out, resolve.Property{
			Name:     name,
			Type:     r.convert(field.Type()),
			Optional: opts["omitempty"] || opts["omitzero"],
		})
	}
	return out
}

func parseJSONTag(tag string) (name string, opts map[string]bool) {
	opts = map[string]bool{}
	if tag == "" {
		return "", opts
	}
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		opts[opt] = true
	}
	return parts[0], opts
}

// structMembers converts a named struct's fields and exported methods into
// declaration members.
func (r *Resolver) structMembers(named *types.Named, st *types.Struct) []resolve.Member {
	var out []resolve.Member
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}
		tag := reflect.StructTag(st.Tag(i))
		name, opts := parseJSONTag(tag.Get("json"))
		if name == "-" {
			continue
		}
		if field.Embedded() && name == "" {
			continue
		}
		if name == "" {
			name = field.Name()
		}
		out = append(out, resolve.Member{
			Name:     name,
			Kind:     resolve.MemberProperty,
			Doc:      r.fieldDoc(field.Pkg(), field.Pos()),
			Type:     r.convert(field.Type()),
			TypeText: r.typeText(field.Type()),
			Optional: opts["omitempty"] || opts["omitzero"],
			Loc:      r.location(field),
		})
	}
	for i := 0; i < named.NumMethods(); i++ {
		method := named.Method(i)
		if !method.Exported() {
			continue
		}
		out = append(out, resolve.Member{
			Name:       method.Name(),
			Kind:       resolve.MemberMethod,
			Doc:        r.docFor(method),
			Signatures: []resolve.Signature{r.signature(method.Type().(*types.Signature))},
			Loc:        r.location(method),
		})
	}
	return out
}

// interfaceMembers converts interface methods into declaration members.
func (r *Resolver) interfaceMembers(iface *types.Interface) []resolve.Member {
	var out []resolve.Member
	for i := 0; i < iface.NumMethods(); i++ {
		method := iface.Method(i)
		if !method.Exported() {
			continue
		}
		out = append(out, resolve.Member{
			Name:       method.Name(),
			Kind:       resolve.MemberMethod,
			Doc:        r.docFor(method),
			Signatures: []resolve.Signature{r.signature(method.Type().(*types.Signature))},
			Loc:        r.location(method),
		})
	}
	return out
}

// Package format implements the recursive type-to-schema formatter. It
// converts resolved types into Schema IR, consulting the run's type registry
// to decide between inline expansion and $ref emission: a named type is
// expanded in full exactly once, at its own declaration site, so output size
// is bounded by distinct-type count rather than mention count.
package format

import (
	"strings"

	"github.com/ryanwaits/openpkg/ir"
	"github.com/ryanwaits/openpkg/resolve"
	"github.com/ryanwaits/openpkg/spec"
)

// DefaultMaxDepth bounds recursive expansion.
const DefaultMaxDepth = 20

// defaultBuiltins are named types that stay structural and never become
// references. Overridable via Config.Builtins.
var defaultBuiltins = []string{
	"Array", "ReadonlyArray", "Promise", "Map", "Set", "WeakMap", "WeakSet",
	"Date", "RegExp", "Error", "Record", "Partial", "Required", "Readonly",
	"Pick", "Omit", "Object", "Function", "Symbol", "Iterable", "Iterator",
	"AsyncIterable", "ArrayBuffer", "Uint8Array", "Buffer",
}

// defaultMarkers are library-internal pseudo-member names filtered out of
// intersections and object expansion.
var defaultMarkers = []string{"__optional", "__brand", "BrandTypeId", "OptionalMarker"}

// Config carries the formatter's empirical constants. The zero value gets
// defaults applied.
type Config struct {
	// MaxDepth bounds recursion; 0 means DefaultMaxDepth.
	MaxDepth int

	// Builtins is the named-type allowlist that never produces refs.
	// Nil means the default list.
	Builtins []string

	// DisableDiscriminators turns off tagged-union detection.
	DisableDiscriminators bool

	// Markers are pseudo-member names filtered during expansion. Nil means
	// the default list.
	Markers []string

	// Adapters decode recognized runtime-schema-library types.
	Adapters []Adapter
}

func (c Config) withDefaults() Config {
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Builtins == nil {
		c.Builtins = defaultBuiltins
	}
	if c.Markers == nil {
		c.Markers = defaultMarkers
	}
	return c
}

// Context is the formatting state for one analysis run: the registry, the
// visited sets, and the current depth, carried as one value instead of loose
// parallel parameters.
type Context struct {
	reg      *spec.Registry
	cfg      Config
	builtins map[string]bool
	markers  map[string]bool

	// visiting tracks alias names currently mid-expansion.
	visiting map[string]bool

	// visitedIDs tracks type identities on the current expansion path.
	visitedIDs map[int64]bool

	depth int
}

// NewContext returns a formatting context bound to the run's registry.
func NewContext(reg *spec.Registry, cfg Config) *Context {
	cfg = cfg.withDefaults()
	cx := &Context{
		reg:        reg,
		cfg:        cfg,
		builtins:   make(map[string]bool, len(cfg.Builtins)),
		markers:    make(map[string]bool, len(cfg.Markers)),
		visiting:   make(map[string]bool),
		visitedIDs: make(map[int64]bool),
	}
	for _, b := range cfg.Builtins {
		cx.builtins[b] = true
	}
	for _, m := range cfg.Markers {
		cx.markers[m] = true
	}
	return cx
}

// Registry returns the registry the context writes references into.
func (cx *Context) Registry() *spec.Registry { return cx.reg }

// Adapters returns the configured runtime-schema adapters.
func (cx *Context) Adapters() []Adapter { return cx.cfg.Adapters }

// Format converts a resolved type into Schema IR. Resolution misses and
// guard trips degrade to Unknown; Format never fails.
func (cx *Context) Format(t *resolve.Type) ir.Schema {
	return cx.format(t, "")
}

// FormatNamed expands a named type in full at its declaration site. The name
// is marked mid-expansion so self-references inside the body come back as
// refs rather than infinite inline expansion.
func (cx *Context) FormatNamed(name string, t *resolve.Type) ir.Schema {
	cx.visiting[name] = true
	defer delete(cx.visiting, name)
	return cx.format(t, name)
}

// format applies the precedence ladder. skipName is the one named type the
// current call is allowed to expand inline (its own declaration site).
func (cx *Context) format(t *resolve.Type, skipName string) ir.Schema {
	if t == nil {
		return ir.NewUnknown()
	}
	if cx.depth > cx.cfg.MaxDepth {
		return ir.NewUnknown()
	}
	cx.depth++
	defer func() { cx.depth-- }()

	// Runtime-schema libraries surface into the same IR instead of the
	// opaque fallback.
	for _, a := range cx.cfg.Adapters {
		if a.Recognize(t) {
			return a.Decode(t, cx)
		}
	}

	// Named-type short-circuit: mentions of a type that is mid-expansion,
	// already registered, or simply not a built-in become references. This
	// runs ahead of the identity guard so a self-referential named type
	// comes back as a ref, not unknown.
	if name := cx.referableName(t); name != "" && name != skipName {
		if cx.visiting[name] || cx.reg.HasType(name) || !cx.builtins[name] {
			cx.reg.MarkReferenced(name)
			return ir.NewRef(name)
		}
	}

	// Identity cycle guard: anything else already mid-expansion
	// short-circuits for the duration of this call.
	if t.ID != 0 {
		if cx.visitedIDs[t.ID] {
			return ir.NewUnknown()
		}
		cx.visitedIDs[t.ID] = true
		defer delete(cx.visitedIDs, t.ID)
	}

	switch t.Kind {
	case resolve.KindPrimitive:
		return cx.formatPrimitive(t)
	case resolve.KindMapped, resolve.KindConditional:
		// Cannot be losslessly structured; keep the textual form.
		return &ir.Object{Description: t.Text}
	case resolve.KindUnion:
		return cx.formatUnion(t, skipName)
	case resolve.KindIntersection:
		return cx.formatIntersection(t, skipName)
	case resolve.KindObject:
		return cx.formatObject(t)
	case resolve.KindArray:
		return &ir.Array{Items: cx.format(t.Elem, "")}
	case resolve.KindLiteral:
		return ir.Literal(t.Literal)
	case resolve.KindFunction, resolve.KindTypeParam:
		return cx.fallback(t)
	default:
		return cx.fallback(t)
	}
}

// referableName picks the name a mention of t refs by: its alias symbol, or
// the symbol name of a named object. Builtin-flagged types stay structural.
func (cx *Context) referableName(t *resolve.Type) string {
	if t.Builtin {
		return ""
	}
	if t.Alias != "" {
		return t.Alias
	}
	if t.Kind == resolve.KindObject && t.Name != "" {
		return t.Name
	}
	return ""
}

func (cx *Context) formatPrimitive(t *resolve.Type) ir.Schema {
	switch t.Name {
	case "string", "number", "boolean", "integer":
		return ir.Prim(t.Name)
	case "bigint":
		return ir.PrimFormat("string", "bigint")
	case "symbol":
		return ir.PrimFormat("string", "symbol")
	case "void", "never", "undefined", "null":
		// JSON Schema has no void or never; null is the explicit
		// approximation.
		return ir.Null()
	case "any", "unknown":
		return ir.NewUnknown()
	default:
		if t.Name != "" {
			return ir.Prim(t.Name)
		}
		return cx.fallback(t)
	}
}

func (cx *Context) formatUnion(t *resolve.Type, skipName string) ir.Schema {
	var members []ir.Schema
	for _, m := range t.Members {
		if cx.isMarker(m) {
			continue
		}
		members = append(members, cx.format(m, skipName))
	}
	members = ir.Dedup(members)
	switch len(members) {
	case 0:
		return ir.NewUnknown()
	case 1:
		return members[0]
	}
	u := &ir.AnyOf{Schemas: members}
	if !cx.cfg.DisableDiscriminators {
		u.Discriminator = discriminator(members)
	}
	return u
}

func (cx *Context) formatIntersection(t *resolve.Type, skipName string) ir.Schema {
	var members []ir.Schema
	for _, m := range t.Members {
		if cx.isMarker(m) {
			continue
		}
		s := cx.format(m, skipName)
		// Flatten nested intersections.
		if all, ok := s.(*ir.AllOf); ok {
			members = append(members, all.Schemas...)
			continue
		}
		members = append(members, s)
	}
	members = ir.Dedup(members)
	switch len(members) {
	case 0:
		return ir.NewUnknown()
	case 1:
		return members[0]
	}
	return &ir.AllOf{Schemas: members}
}

// isMarker reports whether m is a library-internal optional-marker
// pseudo-member.
func (cx *Context) isMarker(m *resolve.Type) bool {
	if m == nil {
		return true
	}
	return cx.markers[m.Name] || cx.markers[m.Alias]
}

// formatObject expands an anonymous structural type inline. Named objects
// never reach here past their first definition; referableName handles them.
func (cx *Context) formatObject(t *resolve.Type) ir.Schema {
	obj := &ir.Object{}
	for _, p := range t.Properties {
		if p.Internal || cx.markers[p.Name] || strings.HasPrefix(p.Name, "__") {
			continue
		}
		obj.Properties = append(obj.Properties, ir.Property{
			Name:   p.Name,
			Schema: cx.format(p.Type, ""),
		})
		if !p.Optional {
			obj.Required = append(obj.Required, p.Name)
		}
	}
	if t.Additional != nil {
		obj.AdditionalProperties = cx.format(t.Additional, "")
	}
	return obj
}

// fallback handles types known only by their textual form. A trailing
// "| undefined" is recognized so optionality survives even without a richer
// structural match.
func (cx *Context) fallback(t *resolve.Type) ir.Schema {
	text := strings.TrimSpace(t.Text)
	if text == "" {
		return ir.NewUnknown()
	}
	if base, ok := strings.CutSuffix(text, "| undefined"); ok {
		base = strings.TrimSpace(base)
		var head ir.Schema
		if isIdentifier(base) && !cx.builtins[base] {
			cx.reg.MarkReferenced(base)
			head = ir.NewRef(base)
		} else {
			head = &ir.Opaque{Type: base}
		}
		return &ir.AnyOf{Schemas: []ir.Schema{head, ir.Null()}}
	}
	return &ir.Opaque{Type: text}
}

// discriminator returns the property name whose distinct literal value per
// member identifies the union member, or "" when no tagged-union shape is
// present. Null-ish members are ignored; every other member must be an
// object exposing the candidate property as a single distinct literal.
func discriminator(members []ir.Schema) string {
	var objs []*ir.Object
	for _, m := range members {
		if ir.IsNullish(m) {
			continue
		}
		o, ok := m.(*ir.Object)
		if !ok {
			return ""
		}
		objs = append(objs, o)
	}
	if len(objs) < 2 {
		return ""
	}

	// Candidates come from the first member's single-literal properties.
	for _, p := range objs[0].Properties {
		if !isSingleLiteral(p.Schema) {
			continue
		}
		if distinctLiteralAcross(objs, p.Name) {
			return p.Name
		}
	}
	return ""
}

func isSingleLiteral(s ir.Schema) bool {
	e, ok := s.(*ir.Enum)
	return ok && len(e.Values) == 1
}

func distinctLiteralAcross(objs []*ir.Object, name string) bool {
	seen := make(map[any]bool, len(objs))
	for _, o := range objs {
		p := o.Prop(name)
		if p == nil || !isSingleLiteral(p) {
			return false
		}
		v := p.(*ir.Enum).Values[0]
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

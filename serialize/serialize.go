// Package serialize assembles export and type records from resolved
// declarations: one serializer per declaration kind, each parsing the
// declaration's documentation, formatting member types through the shared
// formatting context, and registering reusable shapes with the run's
// registry.
package serialize

import (
	"context"
	"fmt"

	"github.com/ryanwaits/openpkg/docparse"
	"github.com/ryanwaits/openpkg/format"
	"github.com/ryanwaits/openpkg/ir"
	"github.com/ryanwaits/openpkg/resolve"
	"github.com/ryanwaits/openpkg/spec"
)

// Config tunes serialization.
type Config struct {
	// PlaceholderParamName names destructured parameters with no
	// documentation hint. Defaults to "options".
	PlaceholderParamName string
}

func (c Config) withDefaults() Config {
	if c.PlaceholderParamName == "" {
		c.PlaceholderParamName = "options"
	}
	return c
}

// Serializer drives per-declaration serialization for one analysis run.
type Serializer struct {
	res resolve.Resolver
	reg *spec.Registry
	cx  *format.Context
	cfg Config
}

// New returns a serializer bound to the run's resolver, registry, and
// formatting context.
func New(res resolve.Resolver, reg *spec.Registry, cx *format.Context, cfg Config) *Serializer {
	return &Serializer{res: res, reg: reg, cx: cx, cfg: cfg.withDefaults()}
}

// Result pairs an assembled export with the parsed documentation the drift
// detector consumes alongside it.
type Result struct {
	Export *spec.Export
	Doc    *docparse.Doc
}

// Serialize converts one exported declaration into export records. Namespaces
// yield one record per nested declaration in addition to their own.
func (s *Serializer) Serialize(ctx context.Context, d *resolve.Declaration) ([]*Result, error) {
	return s.serialize(ctx, d, "")
}

func (s *Serializer) serialize(ctx context.Context, d *resolve.Declaration, prefix string) ([]*Result, error) {
	doc := docparse.Parse(d.Doc)
	name := d.Name
	if prefix != "" {
		name = prefix + "." + d.Name
	}

	x := &spec.Export{
		ID:          string(d.Kind) + ":" + name,
		Name:        name,
		Kind:        string(d.Kind),
		Description: doc.Description,
		Deprecated:  d.Deprecated || doc.Deprecated != nil,
		Examples:    convertExamples(doc.Examples),
		Tags:        convertTags(doc.Tags),
		TypeParams:  convertTypeParams(d.TypeParams),
		Source:      spec.Source{File: d.Loc.File, Line: d.Loc.Line},
	}

	switch d.Kind {
	case resolve.DeclFunction:
		x.Signatures = s.signatures(d.Signatures, doc)

	case resolve.DeclClass, resolve.DeclInterface:
		x.Members = s.members(d.Members)
		s.registerShape(d, name, doc)

	case resolve.DeclEnum:
		x.Schema = enumSchema(d.EnumMembers)
		x.Members = enumMembers(d.EnumMembers)
		s.registerShape(d, name, doc)

	case resolve.DeclTypeAlias:
		x.Schema = s.cx.FormatNamed(name, d.Type)
		s.registerShape(d, name, doc)

	case resolve.DeclVariable:
		s.serializeVariable(d, x)

	case resolve.DeclNamespace:
		if d.IsAugmentation {
			x.Kind = "augmentation"
			x.ID = "augmentation:" + name
		}
		var results []*Result
		results = append(results, &Result{Export: x, Doc: doc})
		for _, nested := range d.Namespace {
			children, err := s.serialize(ctx, nested, name)
			if err != nil {
				return nil, err
			}
			results = append(results, children...)
		}
		return results, nil

	default:
		return nil, fmt.Errorf("unknown declaration kind %q for %s", d.Kind, d.Name)
	}

	return []*Result{{Export: x, Doc: doc}}, nil
}

// serializeVariable selects a schema source in priority order: a
// runtime-verified schema, a statically decoded schema-library encoding, or
// the plain resolved type. Each path tags its provenance.
func (s *Serializer) serializeVariable(d *resolve.Declaration, x *spec.Export) {
	switch {
	case d.Runtime != nil:
		x.Schema = &ir.Raw{Value: d.Runtime.Schema}
		x.SchemaLibrary = d.Runtime.Library
		x.SchemaSource = "runtime"

	default:
		if a, ok := format.Match(s.cx.Adapters(), d.Type); ok {
			x.Schema = s.cx.Format(d.Type)
			x.SchemaLibrary = a.Library()
			x.SchemaSource = "static"
			return
		}
		x.Schema = s.cx.Format(d.Type)
		x.SchemaSource = "type"
	}
}

// registerShape records a reusable type definition for declarations that
// define one. First writer wins; later duplicates are dropped by the
// registry.
func (s *Serializer) registerShape(d *resolve.Declaration, name string, doc *docparse.Doc) {
	// A type alias of another named type is a re-export: it points at the
	// canonical target instead of owning a definition, so it is "known"
	// only once the target itself is serialized.
	if d.Kind == resolve.DeclTypeAlias && d.Type != nil && d.Type.Alias != "" && d.Type.Alias != name {
		s.reg.RegisterExportedType(name, d.Type.Alias)
		return
	}

	s.reg.RegisterExportedType(name, name)
	s.reg.RegisterTypeDefinition(s.typeDefinition(d, name, doc))
}

// typeDefinition assembles the reusable type record for a declaration.
func (s *Serializer) typeDefinition(d *resolve.Declaration, name string, doc *docparse.Doc) *spec.Type {
	def := &spec.Type{
		ID:          "type:" + name,
		Name:        name,
		Kind:        string(d.Kind),
		Description: doc.Description,
		Deprecated:  d.Deprecated || doc.Deprecated != nil,
		Source:      spec.Source{File: d.Loc.File, Line: d.Loc.Line},
	}

	switch d.Kind {
	case resolve.DeclEnum:
		def.Schema = enumSchema(d.EnumMembers)

	case resolve.DeclClass, resolve.DeclInterface:
		def.Members = s.members(d.Members)
		if d.Type != nil {
			def.Schema = s.cx.FormatNamed(name, d.Type)
		} else {
			def.Schema = s.memberShape(d.Members)
		}

	default:
		def.Schema = s.cx.FormatNamed(name, d.Type)
	}
	return def
}

// Drain schedules referenced-but-unexpanded types through the resolver until
// none remain. Names the resolver cannot produce stay unexpanded; their refs
// dangle rather than failing the run.
func (s *Serializer) Drain(ctx context.Context) error {
	unresolved := make(map[string]bool)
	for {
		var progress bool
		for _, name := range s.reg.Pending() {
			if unresolved[name] {
				continue
			}
			d, err := s.res.Declaration(ctx, name)
			if err != nil {
				return fmt.Errorf("resolving referenced type %s: %w", name, err)
			}
			if d == nil {
				unresolved[name] = true
				continue
			}
			doc := docparse.Parse(d.Doc)
			s.reg.RegisterExportedType(name, name)
			s.reg.RegisterTypeDefinition(s.typeDefinition(d, name, doc))
			progress = true
		}
		if !progress {
			return nil
		}
	}
}

// members serializes class/interface members, classifying visibility and
// flags.
func (s *Serializer) members(members []resolve.Member) []spec.Member {
	var out []spec.Member
	for _, m := range members {
		mdoc := docparse.Parse(m.Doc)
		sm := spec.Member{
			Name:        m.Name,
			Kind:        string(m.Kind),
			Description: mdoc.Description,
			Visibility:  visibility(m.Visibility),
			Optional:    m.Optional,
			Readonly:    m.Readonly,
			Static:      m.Static,
			Generator:   m.Generator,
			Deprecated:  m.Deprecated || mdoc.Deprecated != nil,
			Type:        m.TypeText,
		}
		if len(m.Signatures) > 0 {
			sm.Signatures = s.signatures(m.Signatures, mdoc)
		} else {
			sm.Schema = s.cx.Format(m.Type)
		}
		out = append(out, sm)
	}
	return out
}

// memberShape builds an object schema from property members when no resolved
// instance type exists.
func (s *Serializer) memberShape(members []resolve.Member) ir.Schema {
	obj := &ir.Object{}
	for _, m := range members {
		if m.Kind != resolve.MemberProperty || m.Static {
			continue
		}
		obj.Properties = append(obj.Properties, ir.Property{
			Name:   m.Name,
			Schema: s.cx.Format(m.Type),
		})
		if !m.Optional {
			obj.Required = append(obj.Required, m.Name)
		}
	}
	return obj
}

// signatures serializes call signatures, structuring each parameter against
// the parsed documentation.
func (s *Serializer) signatures(sigs []resolve.Signature, doc *docparse.Doc) []spec.Signature {
	var out []spec.Signature
	for _, sig := range sigs {
		ss := spec.Signature{
			Returns:    s.cx.Format(sig.Return),
			ReturnType: returnText(sig),
			TypeParams: convertTypeParams(sig.TypeParams),
		}
		for _, p := range sig.Params {
			ss.Params = append(ss.Params, s.StructureParam(p, doc))
		}
		out = append(out, ss)
	}
	return out
}

func returnText(sig resolve.Signature) string {
	if sig.ReturnText != "" {
		return sig.ReturnText
	}
	if sig.Return != nil {
		return sig.Return.Text
	}
	return ""
}

func visibility(v string) string {
	if v == "" {
		return "public"
	}
	return v
}

func enumSchema(members []resolve.EnumMember) ir.Schema {
	e := &ir.Enum{}
	for _, m := range members {
		e.Values = append(e.Values, m.Value)
	}
	return e
}

func enumMembers(members []resolve.EnumMember) []spec.Member {
	var out []spec.Member
	for _, m := range members {
		mdoc := docparse.Parse(m.Doc)
		out = append(out, spec.Member{
			Name:        m.Name,
			Kind:        "property",
			Description: mdoc.Description,
			Visibility:  "public",
			Schema:      ir.Literal(m.Value),
		})
	}
	return out
}

func convertExamples(in []docparse.Example) []spec.Example {
	var out []spec.Example
	for _, e := range in {
		out = append(out, spec.Example{
			Title:       e.Title,
			Description: e.Description,
			Code:        e.Code,
			Language:    e.Language,
		})
	}
	return out
}

func convertTags(in []docparse.Tag) []spec.Tag {
	var out []spec.Tag
	for _, t := range in {
		out = append(out, spec.Tag{Name: t.Name, Text: t.Text})
	}
	return out
}

func convertTypeParams(in []resolve.TypeParamDecl) []spec.TypeParam {
	var out []spec.TypeParam
	for _, tp := range in {
		out = append(out, spec.TypeParam{Name: tp.Name, Constraint: tp.Constraint})
	}
	return out
}

package serialize

import (
	"strings"

	"github.com/ryanwaits/openpkg/docparse"
	"github.com/ryanwaits/openpkg/ir"
	"github.com/ryanwaits/openpkg/resolve"
	"github.com/ryanwaits/openpkg/spec"
)

// StructureParam builds the canonical parameter record for one declaration
// parameter. Destructured parameters become an inline object schema over
// their binding properties, named by majority vote over documented dotted
// paths.
func (s *Serializer) StructureParam(p resolve.Param, doc *docparse.Doc) spec.Param {
	out := spec.Param{
		Name:     p.Name,
		Type:     p.TypeText,
		Required: !p.Optional && p.Default == "",
		Default:  p.Default,
		Rest:     p.Rest,
	}

	if len(p.Binding) > 0 {
		out.Name = s.bindingName(p.Binding, doc)
		out.Schema = s.bindingSchema(p.Binding)
	} else {
		out.Schema = s.paramSchema(p)
	}

	if dp := doc.Param(out.Name); dp != nil {
		out.Description = dp.Description
		if out.Default == "" {
			out.Default = dp.Default
		}
	}
	return out
}

// bindingName derives a display name for a destructured parameter: the
// documented dotted-path prefix that matches the most binding properties
// wins; with no hint at all the configured placeholder is used.
func (s *Serializer) bindingName(binding []resolve.BindingProperty, doc *docparse.Doc) string {
	bound := make(map[string]bool, len(binding))
	for _, b := range binding {
		bound[b.Name] = true
	}

	votes := make(map[string]int)
	var order []string
	for _, dp := range doc.Params {
		prefix, prop, ok := strings.Cut(dp.Name, ".")
		if !ok || !bound[prop] {
			continue
		}
		if votes[prefix] == 0 {
			order = append(order, prefix)
		}
		votes[prefix]++
	}

	best := ""
	for _, prefix := range order {
		if best == "" || votes[prefix] > votes[best] {
			best = prefix
		}
	}
	if best == "" {
		return s.cfg.PlaceholderParamName
	}
	return best
}

// bindingSchema treats the parameter as an inline object over its binding
// properties.
func (s *Serializer) bindingSchema(binding []resolve.BindingProperty) ir.Schema {
	obj := &ir.Object{}
	for _, b := range binding {
		obj.Properties = append(obj.Properties, ir.Property{
			Name:   b.Name,
			Schema: s.cx.Format(b.Type),
		})
		if !b.Optional && b.Default == "" {
			obj.Required = append(obj.Required, b.Name)
		}
	}
	return obj
}

// paramSchema reconciles the resolved type with the syntactic annotation.
// An imprecise resolved type defers to the syntax tree; a material
// disagreement between the two combines both rather than discarding one.
func (s *Serializer) paramSchema(p resolve.Param) ir.Schema {
	resolved := s.cx.Format(p.Type)
	if p.SyntaxType == nil {
		return resolved
	}

	syntactic := s.cx.Format(p.SyntaxType)
	if isTrivial(resolved) {
		return syntactic
	}
	if isTrivial(syntactic) || resolved.Equal(syntactic) {
		return resolved
	}
	if isPureRef(resolved) || isPureRef(syntactic) {
		return resolved
	}
	return &ir.AllOf{Schemas: []ir.Schema{resolved, syntactic}}
}

// isTrivial reports whether a schema carries no usable information.
func isTrivial(s ir.Schema) bool {
	switch v := s.(type) {
	case *ir.Unknown:
		return true
	case *ir.Opaque:
		return v.Type == "any" || v.Type == ""
	}
	return s == nil
}

func isPureRef(s ir.Schema) bool {
	_, ok := s.(*ir.Ref)
	return ok
}

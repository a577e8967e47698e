package drift

import (
	"strings"

	"github.com/ryanwaits/openpkg/ir"
)

// voidAliases are type spellings treated as interchangeable when comparing
// documented and declared types.
var voidAliases = map[string]bool{
	"void": true, "undefined": true, "null": true, "nil": true,
}

// NormalizeType collapses whitespace and normalizes generic bracket spacing
// so "Map<string, number>" and "Map< string,number >" compare equal. Type
// equivalence is deliberately near-string-equality: aliases are not resolved
// and structurally equal spellings such as "Array<T>" and "T[]" do not
// match.
func NormalizeType(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, field := range strings.Fields(s) {
		b.WriteString(field)
	}
	out := b.String()
	out = strings.ReplaceAll(out, ",", ", ")
	return strings.TrimSpace(out)
}

// TypesEquivalent reports whether a documented type string matches a
// declared one.
func TypesEquivalent(documented, declared string) bool {
	a, b := NormalizeType(documented), NormalizeType(declared)
	if strings.EqualFold(a, b) {
		return true
	}
	return voidAliases[strings.ToLower(a)] && voidAliases[strings.ToLower(b)]
}

// unwrapPromise returns T for a type spelled Promise<T>.
func unwrapPromise(s string) (string, bool) {
	s = NormalizeType(s)
	rest, ok := strings.CutPrefix(s, "Promise<")
	if !ok || !strings.HasSuffix(rest, ">") {
		return "", false
	}
	return strings.TrimSuffix(rest, ">"), true
}

func isPromise(s string) bool {
	_, ok := unwrapPromise(s)
	return ok
}

// objectProperties returns the property map of an object schema. Referenced
// and opaque shapes return ok=false: their properties are not visible here
// and the caller degrades to no finding.
func objectProperties(s ir.Schema) (map[string]ir.Schema, bool) {
	obj, ok := s.(*ir.Object)
	if !ok {
		return nil, false
	}
	props := make(map[string]ir.Schema, len(obj.Properties))
	for _, p := range obj.Properties {
		props[p.Name] = p.Schema
	}
	return props, true
}

func propertyNames(s ir.Schema) []string {
	obj, ok := s.(*ir.Object)
	if !ok {
		return nil
	}
	names := make([]string, len(obj.Properties))
	for i, p := range obj.Properties {
		names[i] = p.Name
	}
	return names
}

// schemaText renders the rough textual type of a schema for comparison with
// documented annotations. Shapes with no sensible spelling return "".
func schemaText(s ir.Schema) string {
	switch v := s.(type) {
	case *ir.Primitive:
		return v.Name
	case *ir.Ref:
		return v.Name
	case *ir.Opaque:
		return v.Type
	case *ir.Array:
		if inner := schemaText(v.Items); inner != "" {
			return inner + "[]"
		}
	case *ir.Object:
		return "object"
	}
	return ""
}

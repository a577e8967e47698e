// Package drift scores documentation coverage and detects disagreements
// between parsed documentation and the serialized declaration it describes.
// Every detector is a pure function over (export, parsed doc, environment);
// detectors that need side-channel data (execution results, the set of known
// exported names) emit nothing when it is absent.
package drift

import (
	"fmt"
	"strings"

	"github.com/ryanwaits/openpkg/docparse"
	"github.com/ryanwaits/openpkg/spec"
)

// Finding kinds.
const (
	KindParamMismatch             = "param-mismatch"
	KindOptionalityMismatch       = "optionality-mismatch"
	KindParamTypeMismatch         = "param-type-mismatch"
	KindReturnTypeMismatch        = "return-type-mismatch"
	KindPropertyTypeDrift         = "property-type-drift"
	KindDeprecatedMismatch        = "deprecated-mismatch"
	KindGenericConstraintMismatch = "generic-constraint-mismatch"
	KindVisibilityMismatch        = "visibility-mismatch"
	KindExampleDrift              = "example-drift"
	KindBrokenLink                = "broken-link"
	KindExampleSyntaxError        = "example-syntax-error"
	KindExampleRuntimeError       = "example-runtime-error"
	KindExampleAssertionFailed    = "example-assertion-failed"
	KindAsyncMismatch             = "async-mismatch"
)

// DefaultEditDistanceMax caps how far a nearest-name suggestion may be from
// the documented name.
const DefaultEditDistanceMax = 3

// defaultBuiltins are global names that examples and links may reference
// without them being exports of the package under analysis.
var defaultBuiltins = map[string]bool{
	"Array": true, "Promise": true, "Error": true, "Object": true,
	"String": true, "Number": true, "Boolean": true, "Date": true,
	"Map": true, "Set": true, "RegExp": true, "JSON": true, "Math": true,
	"Symbol": true, "Function": true, "Infinity": true, "NaN": true,
}

// Config tunes the detectors.
type Config struct {
	// EditDistanceMax caps suggestion search. Zero means
	// DefaultEditDistanceMax.
	EditDistanceMax int

	// Builtins are extra global names excluded from example-drift and
	// broken-link checks, merged over the defaults.
	Builtins map[string]bool

	// DefaultLanguage is the language assumed for examples that carry no
	// language tag, typically derived from the package ecosystem. When
	// empty, untagged examples are not syntax-checked.
	DefaultLanguage string
}

func (c Config) withDefaults() Config {
	if c.EditDistanceMax == 0 {
		c.EditDistanceMax = DefaultEditDistanceMax
	}
	merged := make(map[string]bool, len(defaultBuiltins)+len(c.Builtins))
	for k := range defaultBuiltins {
		merged[k] = true
	}
	for k, v := range c.Builtins {
		merged[k] = v
	}
	c.Builtins = merged
	return c
}

// ExecResult is the captured outcome of running one example in the external
// sandbox. The engine never runs examples itself.
type ExecResult struct {
	Success    bool   `json:"success"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"durationMs"`
}

// Env is the side-channel context detectors run against.
type Env struct {
	Cfg Config

	// Known holds every export and registered type name produced by the
	// current run. Nil disables example-drift and broken-link.
	Known map[string]bool

	// Exec maps export name to execution results, index-parallel with the
	// export's examples. Nil disables the runtime detectors.
	Exec map[string][]ExecResult
}

// Detect runs every drift detector over one serialized export and its parsed
// documentation. Findings are ordered by detector, then by position within
// the declaration.
func Detect(ex *spec.Export, doc *docparse.Doc, env Env) []spec.DriftFinding {
	env.Cfg = env.Cfg.withDefaults()

	var out []spec.DriftFinding
	out = append(out, paramFindings(ex, doc, env)...)
	out = append(out, returnFindings(ex, doc)...)
	out = append(out, deprecatedFindings(ex, doc)...)
	out = append(out, constraintFindings(ex, doc)...)
	out = append(out, visibilityFindings(ex, doc)...)
	out = append(out, exampleFindings(ex, env)...)
	out = append(out, linkFindings(doc, env)...)
	out = append(out, execFindings(ex, env)...)
	out = append(out, asyncFindings(ex, doc)...)
	return out
}

// actualParams collects parameters across every signature, first occurrence
// of a name wins.
func actualParams(ex *spec.Export) []spec.Param {
	var out []spec.Param
	seen := map[string]bool{}
	for _, sig := range ex.Signatures {
		for _, p := range sig.Params {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	return out
}

func paramNames(params []spec.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func findParam(params []spec.Param, name string) *spec.Param {
	for i := range params {
		if params[i].Name == name {
			return &params[i]
		}
	}
	return nil
}

func paramFindings(ex *spec.Export, doc *docparse.Doc, env Env) []spec.DriftFinding {
	if len(ex.Signatures) == 0 {
		return nil
	}
	params := actualParams(ex)
	names := paramNames(params)

	var out []spec.DriftFinding
	for _, dp := range doc.Params {
		if prefix, prop, dotted := strings.Cut(dp.Name, "."); dotted {
			out = append(out, dottedParamFindings(params, names, dp, prefix, prop, env)...)
			continue
		}
		p := findParam(params, dp.Name)
		if p == nil {
			f := spec.DriftFinding{
				Kind:   KindParamMismatch,
				Target: dp.Name,
				Issue:  fmt.Sprintf("documented parameter %q does not exist", dp.Name),
			}
			if near := Nearest(dp.Name, names, env.Cfg.EditDistanceMax); near != "" {
				f.Suggestion = fmt.Sprintf("did you mean %q?", near)
			}
			out = append(out, f)
			continue
		}
		if dp.Optional != !p.Required {
			issue := fmt.Sprintf("parameter %q is required but documented as optional", p.Name)
			if !p.Required {
				issue = fmt.Sprintf("parameter %q is optional but documented as required", p.Name)
			}
			out = append(out, spec.DriftFinding{
				Kind:   KindOptionalityMismatch,
				Target: p.Name,
				Issue:  issue,
			})
		}
		if dp.Type != "" && p.Type != "" && !TypesEquivalent(dp.Type, p.Type) {
			out = append(out, spec.DriftFinding{
				Kind:       KindParamTypeMismatch,
				Target:     p.Name,
				Issue:      fmt.Sprintf("documented type %q does not match declared type %q", dp.Type, p.Type),
				Suggestion: fmt.Sprintf("update the @param annotation to {%s}", p.Type),
			})
		}
	}
	return out
}

// dottedParamFindings checks a destructured-property doc entry such as
// "opts.limit" against the matched parameter's own properties.
func dottedParamFindings(params []spec.Param, names []string, dp docparse.Param, prefix, prop string, env Env) []spec.DriftFinding {
	p := findParam(params, prefix)
	if p == nil {
		f := spec.DriftFinding{
			Kind:   KindParamMismatch,
			Target: dp.Name,
			Issue:  fmt.Sprintf("documented parameter %q does not exist", prefix),
		}
		if near := Nearest(prefix, names, env.Cfg.EditDistanceMax); near != "" {
			f.Suggestion = fmt.Sprintf("did you mean %q?", near)
		}
		return []spec.DriftFinding{f}
	}
	props, ok := objectProperties(p.Schema)
	if !ok {
		// The parameter's shape is behind a reference or opaque; nothing
		// to verify against.
		return nil
	}
	sub, found := props[prop]
	if !found {
		f := spec.DriftFinding{
			Kind:   KindParamMismatch,
			Target: dp.Name,
			Issue:  fmt.Sprintf("parameter %q has no property %q", prefix, prop),
		}
		if near := Nearest(prop, propertyNames(p.Schema), env.Cfg.EditDistanceMax); near != "" {
			f.Suggestion = fmt.Sprintf("did you mean %q?", prefix+"."+near)
		}
		return []spec.DriftFinding{f}
	}
	if dp.Type != "" {
		if declared := schemaText(sub); declared != "" && !TypesEquivalent(dp.Type, declared) {
			return []spec.DriftFinding{{
				Kind:   KindPropertyTypeDrift,
				Target: dp.Name,
				Issue:  fmt.Sprintf("documented type %q does not match property type %q", dp.Type, declared),
			}}
		}
	}
	return nil
}

func returnFindings(ex *spec.Export, doc *docparse.Doc) []spec.DriftFinding {
	if doc.Returns == nil || doc.Returns.Type == "" || len(ex.Signatures) == 0 {
		return nil
	}
	for _, sig := range ex.Signatures {
		if sig.ReturnType == "" || returnsEquivalent(doc.Returns.Type, sig.ReturnType) {
			return nil
		}
	}
	declared := ex.Signatures[0].ReturnType
	return []spec.DriftFinding{{
		Kind:       KindReturnTypeMismatch,
		Target:     ex.Name,
		Issue:      fmt.Sprintf("documented return type %q does not match declared type %q", doc.Returns.Type, declared),
		Suggestion: fmt.Sprintf("update the @returns annotation to {%s}", declared),
	}}
}

// returnsEquivalent applies the plain equivalence plus the promise-wrapping
// convention: documenting the awaited type of a promise-returning signature
// is not drift.
func returnsEquivalent(documented, declared string) bool {
	if TypesEquivalent(documented, declared) {
		return true
	}
	if inner, ok := unwrapPromise(declared); ok && TypesEquivalent(documented, inner) {
		return true
	}
	if inner, ok := unwrapPromise(documented); ok && TypesEquivalent(inner, declared) {
		return true
	}
	return false
}

func deprecatedFindings(ex *spec.Export, doc *docparse.Doc) []spec.DriftFinding {
	documented := doc.Deprecated != nil || doc.HasTag("deprecated")
	if documented == ex.Deprecated {
		return nil
	}
	issue := "declaration is deprecated but documentation has no @deprecated tag"
	if documented {
		issue = "documentation has a @deprecated tag but the declaration is not deprecated"
	}
	return []spec.DriftFinding{{
		Kind:   KindDeprecatedMismatch,
		Target: ex.Name,
		Issue:  issue,
	}}
}

// declaredTypeParams collects type parameters from the export and all of its
// signatures, first occurrence of a name wins.
func declaredTypeParams(ex *spec.Export) map[string]string {
	out := map[string]string{}
	add := func(tps []spec.TypeParam) {
		for _, tp := range tps {
			if _, ok := out[tp.Name]; !ok {
				out[tp.Name] = tp.Constraint
			}
		}
	}
	add(ex.TypeParams)
	for _, sig := range ex.Signatures {
		add(sig.TypeParams)
	}
	return out
}

func constraintFindings(ex *spec.Export, doc *docparse.Doc) []spec.DriftFinding {
	if len(doc.Templates) == 0 {
		return nil
	}
	declared := declaredTypeParams(ex)

	var out []spec.DriftFinding
	for _, tpl := range doc.Templates {
		constraint, ok := declared[tpl.Name]
		if !ok {
			out = append(out, spec.DriftFinding{
				Kind:   KindGenericConstraintMismatch,
				Target: tpl.Name,
				Issue:  fmt.Sprintf("documented type parameter %q is not declared", tpl.Name),
			})
			continue
		}
		switch {
		case tpl.Constraint == "" && constraint == "":
		case tpl.Constraint == "":
			out = append(out, spec.DriftFinding{
				Kind:   KindGenericConstraintMismatch,
				Target: tpl.Name,
				Issue:  fmt.Sprintf("type parameter %q is constrained to %q but the constraint is not documented", tpl.Name, constraint),
			})
		case constraint == "":
			out = append(out, spec.DriftFinding{
				Kind:   KindGenericConstraintMismatch,
				Target: tpl.Name,
				Issue:  fmt.Sprintf("documented constraint %q but type parameter %q is unconstrained", tpl.Constraint, tpl.Name),
			})
		case !TypesEquivalent(tpl.Constraint, constraint):
			out = append(out, spec.DriftFinding{
				Kind:   KindGenericConstraintMismatch,
				Target: tpl.Name,
				Issue:  fmt.Sprintf("documented constraint %q does not match declared constraint %q", tpl.Constraint, constraint),
			})
		}
	}
	return out
}

// visibilityTags are the documentation tags that assert a visibility level.
var visibilityTags = map[string]string{
	"public":    "public",
	"private":   "private",
	"protected": "protected",
	"internal":  "internal",
	"alpha":     "alpha",
}

func visibilityFindings(ex *spec.Export, doc *docparse.Doc) []spec.DriftFinding {
	var out []spec.DriftFinding
	for _, tag := range doc.Tags {
		level, ok := visibilityTags[tag.Name]
		if !ok {
			continue
		}
		// A tag whose text names a member asserts that member's
		// visibility; a bare tag asserts the export's.
		if member := strings.TrimSpace(tag.Text); member != "" {
			for i := range ex.Members {
				m := &ex.Members[i]
				if m.Name != member {
					continue
				}
				if m.Visibility != "" && m.Visibility != level {
					out = append(out, spec.DriftFinding{
						Kind:   KindVisibilityMismatch,
						Target: ex.Name + "." + m.Name,
						Issue:  fmt.Sprintf("member documented as @%s but declared %s", tag.Name, m.Visibility),
					})
				}
			}
			continue
		}
		if level == "private" || level == "protected" {
			out = append(out, spec.DriftFinding{
				Kind:   KindVisibilityMismatch,
				Target: ex.Name,
				Issue:  fmt.Sprintf("documented as @%s but the declaration is exported", tag.Name),
			})
		}
	}
	return out
}

func linkFindings(doc *docparse.Doc, env Env) []spec.DriftFinding {
	if env.Known == nil {
		return nil
	}
	var out []spec.DriftFinding
	seen := map[string]bool{}
	targets := append(append([]string{}, doc.Links...), doc.SeeAlso...)
	for _, target := range targets {
		name := linkSymbol(target)
		if name == "" || seen[name] || env.Cfg.Builtins[name] || env.Known[name] {
			continue
		}
		seen[name] = true
		f := spec.DriftFinding{
			Kind:   KindBrokenLink,
			Target: name,
			Issue:  fmt.Sprintf("link target %q is not an exported symbol", name),
		}
		if near := Nearest(name, knownNames(env.Known), env.Cfg.EditDistanceMax); near != "" {
			f.Suggestion = fmt.Sprintf("did you mean %q?", near)
		}
		out = append(out, f)
	}
	return out
}

// linkSymbol extracts the symbol a link target refers to, skipping URLs and
// trimming member paths down to the root name.
func linkSymbol(target string) string {
	if strings.Contains(target, "://") || strings.HasPrefix(target, "http") {
		return ""
	}
	root, _, _ := strings.Cut(target, ".")
	root, _, _ = strings.Cut(root, "#")
	root = strings.TrimSpace(root)
	if root == "" || root[0] < 'A' || root[0] > 'Z' {
		return ""
	}
	return root
}

func knownNames(known map[string]bool) []string {
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	return names
}

func asyncFindings(ex *spec.Export, doc *docparse.Doc) []spec.DriftFinding {
	docAsync := doc.HasTag("async") ||
		(doc.Returns != nil && isPromise(doc.Returns.Type))
	if !docAsync {
		return nil
	}
	for _, sig := range ex.Signatures {
		if isPromise(sig.ReturnType) {
			return nil
		}
	}
	if len(ex.Signatures) == 0 {
		return nil
	}
	return []spec.DriftFinding{{
		Kind:   KindAsyncMismatch,
		Target: ex.Name,
		Issue:  "documented as asynchronous but no signature returns a promise",
	}}
}

package format

import (
	"strings"

	"github.com/ryanwaits/openpkg/ir"
	"github.com/ryanwaits/openpkg/resolve"
)

// Adapter decodes a third-party runtime-schema-builder type into Schema IR.
// Adapters plug into the formatter through Config.Adapters: each exposes a
// recognizer predicate and a decode function, so new schema libraries plug
// in without touching the formatter core.
type Adapter interface {
	// Library is the provenance name recorded on serialized variables.
	Library() string

	// Recognize reports whether the adapter can decode t.
	Recognize(t *resolve.Type) bool

	// Decode converts t into Schema IR, recursing through the context for
	// its type arguments.
	Decode(t *resolve.Type, cx *Context) ir.Schema
}

// BuilderAdapter recognizes schema-builder types by symbol name prefix and
// decodes their first generic type argument. Covers the common encoding
// where a builder type carries the described shape as its leading type
// argument (e.g. ZodObject<Shape>).
type BuilderAdapter struct {
	// Lib is the library provenance name, e.g. "zod".
	Lib string

	// Prefixes are symbol/alias name prefixes that identify the library's
	// builder types.
	Prefixes []string
}

// Library implements Adapter.
func (a *BuilderAdapter) Library() string { return a.Lib }

// Recognize implements Adapter.
func (a *BuilderAdapter) Recognize(t *resolve.Type) bool {
	if len(t.AliasArgs) == 0 {
		return false
	}
	name := t.Alias
	if name == "" {
		name = t.Name
	}
	for _, p := range a.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Decode implements Adapter.
func (a *BuilderAdapter) Decode(t *resolve.Type, cx *Context) ir.Schema {
	return cx.Format(t.AliasArgs[0])
}

// Match returns the first adapter that recognizes t.
func Match(adapters []Adapter, t *resolve.Type) (Adapter, bool) {
	if t == nil {
		return nil, false
	}
	for _, a := range adapters {
		if a.Recognize(t) {
			return a, true
		}
	}
	return nil, false
}

package spec

// Registry tracks known named types, referenced-but-unexpanded types, and
// final type definitions for one analysis run. It prevents duplicate
// expansion: a name gets one definition, every other mention a $ref.
//
// Registry has no internal synchronization. A parallel driver must serialize
// writes; the pipeline runs one registry per package on a single goroutine.
type Registry struct {
	typeRefs   map[string]string // name -> canonical id
	defs       map[string]*Type
	defOrder   []string
	referenced map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		typeRefs:   make(map[string]string),
		defs:       make(map[string]*Type),
		referenced: make(map[string]bool),
	}
}

// RegisterExportedType records a name -> canonical id mapping if absent.
// Idempotent: later registrations of the same name are ignored.
func (r *Registry) RegisterExportedType(name, id string) {
	if _, ok := r.typeRefs[name]; !ok {
		r.typeRefs[name] = id
	}
}

// RegisterTypeDefinition inserts a definition keyed by name. The first writer
// wins: it returns false and leaves state unchanged when a definition with
// that name already exists.
func (r *Registry) RegisterTypeDefinition(def *Type) bool {
	if _, ok := r.defs[def.Name]; ok {
		return false
	}
	r.defs[def.Name] = def
	r.defOrder = append(r.defOrder, def.Name)
	delete(r.referenced, def.Name)
	return true
}

// HasType reports whether a definition exists for name.
func (r *Registry) HasType(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// IsKnownType reports whether name has a definition, resolving one alias
// hop: a re-exported alias is known only once its canonical target is
// actually serialized, not merely referenced.
func (r *Registry) IsKnownType(name string) bool {
	if r.HasType(name) {
		return true
	}
	id, ok := r.typeRefs[name]
	if !ok || id == name {
		return false
	}
	return r.HasType(id)
}

// HasRef reports whether name has a recorded name -> id mapping.
func (r *Registry) HasRef(name string) bool {
	_, ok := r.typeRefs[name]
	return ok
}

// TypeRefs returns the name -> canonical id mappings.
func (r *Registry) TypeRefs() map[string]string {
	return r.typeRefs
}

// MarkReferenced records a type mentioned but not yet expanded. The driving
// pipeline schedules pending names for serialization.
func (r *Registry) MarkReferenced(name string) {
	if !r.HasType(name) {
		r.referenced[name] = true
	}
}

// IsReferenced reports whether name is in the referenced set.
func (r *Registry) IsReferenced(name string) bool {
	return r.referenced[name]
}

// Pending returns referenced names that still lack a definition.
func (r *Registry) Pending() []string {
	var names []string
	for name := range r.referenced {
		if !r.HasType(name) {
			names = append(names, name)
		}
	}
	return names
}

// TypeDefinitions returns all definitions in registration order. Called once
// at the end of a run to drain the registry into the types output array.
func (r *Registry) TypeDefinitions() []*Type {
	out := make([]*Type, 0, len(r.defOrder))
	for _, name := range r.defOrder {
		out = append(out, r.defs[name])
	}
	return out
}

// Definition returns the definition for name, or nil.
func (r *Registry) Definition(name string) *Type {
	return r.defs[name]
}

// Package spec defines the package specification output model: export and
// type records, documentation findings, and the per-run type registry. The
// wire format is stable and additive-only; consumers include presentation
// layers that are not part of this module.
package spec

import "github.com/ryanwaits/openpkg/ir"

// Meta is package-level metadata.
type Meta struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	License     string `json:"license,omitempty"`
	Repository  string `json:"repository,omitempty"`
	Ecosystem   string `json:"ecosystem,omitempty"`
}

// Source is a source location.
type Source struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// TypeParam is a generic type parameter on a signature or declaration.
type TypeParam struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
}

// Param is a canonical parameter record.
type Param struct {
	Name        string    `json:"name"`
	Schema      ir.Schema `json:"schema,omitempty"`
	Type        string    `json:"type,omitempty"`
	Required    bool      `json:"required"`
	Default     string    `json:"default,omitempty"`
	Rest        bool      `json:"rest,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Signature is one call or construct signature.
type Signature struct {
	Params     []Param     `json:"parameters,omitempty"`
	Returns    ir.Schema   `json:"returns,omitempty"`
	ReturnType string      `json:"returnType,omitempty"`
	TypeParams []TypeParam `json:"typeParams,omitempty"`
}

// Member is a property, method, accessor, or constructor entry.
type Member struct {
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	Description string      `json:"description,omitempty"`
	Visibility  string      `json:"visibility,omitempty"`
	Optional    bool        `json:"optional,omitempty"`
	Readonly    bool        `json:"readonly,omitempty"`
	Static      bool        `json:"static,omitempty"`
	Generator   bool        `json:"generator,omitempty"`
	Deprecated  bool        `json:"deprecated,omitempty"`
	Schema      ir.Schema   `json:"schema,omitempty"`
	Type        string      `json:"type,omitempty"`
	Signatures  []Signature `json:"signatures,omitempty"`
}

// Example is one documentation example.
type Example struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code"`
	Language    string `json:"language,omitempty"`
}

// Tag is a generic documentation tag carried through to the output.
type Tag struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

// DriftFinding is one detected disagreement between documentation and the
// actual declaration. Target always names an addressable symbol, parameter,
// or member of the declaration under check.
type DriftFinding struct {
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion,omitempty"`
}

// DocsBlock is the per-export documentation assessment.
type DocsBlock struct {
	CoverageScore int            `json:"coverageScore"`
	Missing       []string       `json:"missing,omitempty"`
	Drift         []DriftFinding `json:"drift,omitempty"`
}

// Export is a serialized exported declaration. Immutable once assembled.
type Export struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Kind          string      `json:"kind"`
	Description   string      `json:"description,omitempty"`
	Deprecated    bool        `json:"deprecated,omitempty"`
	Members       []Member    `json:"members,omitempty"`
	Signatures    []Signature `json:"signatures,omitempty"`
	Schema        ir.Schema   `json:"schema,omitempty"`
	SchemaLibrary string      `json:"schemaLibrary,omitempty"`
	SchemaSource  string      `json:"schemaSource,omitempty"`
	Examples      []Example   `json:"examples,omitempty"`
	Tags          []Tag       `json:"tags,omitempty"`
	TypeParams    []TypeParam `json:"typeParams,omitempty"`
	Source        Source      `json:"source,omitempty"`
	Docs          *DocsBlock  `json:"docs,omitempty"`
}

// Type is a reusable named type definition referenced via $ref.
type Type struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	Description string      `json:"description,omitempty"`
	Deprecated  bool        `json:"deprecated,omitempty"`
	Schema      ir.Schema   `json:"schema,omitempty"`
	Members     []Member    `json:"members,omitempty"`
	Signatures  []Signature `json:"signatures,omitempty"`
	Source      Source      `json:"source,omitempty"`
	Docs        *DocsBlock  `json:"docs,omitempty"`
}

// PackageDocs is the package-level documentation aggregate.
type PackageDocs struct {
	CoverageScore int `json:"coverageScore"`
}

// PackageSpec is the complete analysis output.
type PackageSpec struct {
	Meta    Meta         `json:"meta"`
	Exports []*Export    `json:"exports"`
	Types   []*Type      `json:"types"`
	Docs    *PackageDocs `json:"docs,omitempty"`
}

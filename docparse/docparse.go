// Package docparse turns raw comment blocks into a structured documentation
// model: description, parameter docs, returns, throws, examples, links, and
// a generic tag bucket. The tokenizer is brace-depth aware so nested generic
// types inside {...} annotations don't terminate a tag early.
package docparse

import (
	"regexp"
	"strings"
)

// Param is one documented parameter. Name may be a dotted path for
// destructured parameters (e.g. "options.timeout").
type Param struct {
	Name        string
	Description string
	Type        string
	Optional    bool
	Default     string
}

// Returns documents a return value.
type Returns struct {
	Type        string
	Description string
}

// Throws documents a thrown error.
type Throws struct {
	Type        string
	Description string
}

// Example is one documented example.
type Example struct {
	Title       string
	Description string
	Code        string
	Language    string
	Raw         string
}

// Deprecated documents a deprecation notice.
type Deprecated struct {
	Version string
	Reason  string
}

// Template documents a generic type parameter.
type Template struct {
	Name        string
	Constraint  string
	Description string
}

// Tag is one raw tagged section.
type Tag struct {
	Name string
	Text string
}

// Doc is the parsed documentation model for one declaration. It is created
// per declaration, consumed by the serializer and the drift detector, and
// then discarded.
type Doc struct {
	Description string
	Params      []Param
	Returns     *Returns
	Throws      []Throws
	Examples    []Example
	SeeAlso     []string
	Links       []string
	Deprecated  *Deprecated
	Templates   []Template
	Tags        []Tag
}

// HasTag reports whether a tag with the given name was present.
func (d *Doc) HasTag(name string) bool {
	for _, t := range d.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Param returns the documented parameter with the given name, or nil.
func (d *Doc) Param(name string) *Param {
	for i := range d.Params {
		if d.Params[i].Name == name {
			return &d.Params[i]
		}
	}
	return nil
}

var inlineLinkRe = regexp.MustCompile(`\{@link\s+([^}|\s]+)(?:\s*[|\s]\s*([^}]*))?\}`)

// Parse parses a raw comment block. It accepts block comments (/** ... */),
// line comments, and bare text.
func Parse(raw string) *Doc {
	doc := &Doc{}
	text := stripCommentMarkers(raw)
	if strings.TrimSpace(text) == "" {
		return doc
	}

	sections := splitSections(text)
	for _, sec := range sections {
		if sec.tag == "" {
			doc.Description = strings.TrimSpace(doc.collectLinks(sec.text))
			continue
		}
		doc.Tags = append(doc.Tags, Tag{Name: sec.tag, Text: strings.TrimSpace(sec.text)})
		doc.parseTag(sec.tag, sec.text)
	}

	// Go convention: a "Deprecated:" paragraph marks deprecation too.
	if doc.Deprecated == nil {
		if idx := strings.Index(doc.Description, "Deprecated:"); idx >= 0 {
			reason := strings.TrimSpace(doc.Description[idx+len("Deprecated:"):])
			doc.Deprecated = parseDeprecated(reason)
			doc.Description = strings.TrimSpace(doc.Description[:idx])
		}
	}
	return doc
}

type section struct {
	tag  string
	text string
}

// splitSections separates the leading description from @-tagged sections.
// A line starting with @word begins a new section only at brace depth zero
// and outside fenced code blocks.
func splitSections(text string) []section {
	var sections []section
	cur := section{}
	depth := 0
	inFence := false

	flush := func() {
		if cur.tag != "" || strings.TrimSpace(cur.text) != "" {
			sections = append(sections, cur)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && depth == 0 && strings.HasPrefix(trimmed, "@") {
			if name, rest, ok := splitTagLine(trimmed); ok {
				flush()
				cur = section{tag: name, text: rest}
				depth += braceDelta(rest)
				continue
			}
		}
		if cur.text != "" || cur.tag != "" || trimmed != "" {
			if cur.text != "" {
				cur.text += "\n"
			}
			cur.text += line
		}
		if !inFence {
			depth += braceDelta(line)
			if depth < 0 {
				depth = 0
			}
		}
	}
	flush()
	return sections
}

// splitTagLine splits "@param {T} x desc" into ("param", "{T} x desc").
func splitTagLine(line string) (name, rest string, ok bool) {
	body := line[1:]
	i := 0
	for i < len(body) && (isAlnum(body[i]) || body[i] == '-') {
		i++
	}
	if i == 0 {
		return "", "", false
	}
	return body[:i], strings.TrimSpace(body[i:]), true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// braceDelta returns the net brace depth change of s, treating inline
// {@link ...} occurrences as balanced.
func braceDelta(s string) int {
	d := 0
	for _, c := range s {
		switch c {
		case '{':
			d++
		case '}':
			d--
		}
	}
	return d
}

// collectLinks rewrites inline {@link X|label} occurrences with their label
// text and records the targets.
func (d *Doc) collectLinks(s string) string {
	return inlineLinkRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := inlineLinkRe.FindStringSubmatch(m)
		target := parts[1]
		d.Links = append(d.Links, target)
		if label := strings.TrimSpace(parts[2]); label != "" {
			return label
		}
		return target
	})
}

func (d *Doc) parseTag(name, text string) {
	switch name {
	case "param", "arg", "argument":
		if p, ok := parseParamTag(text); ok {
			d.Params = append(d.Params, p)
		}
	case "returns", "return":
		typ, rest := extractBraceType(text)
		d.Returns = &Returns{Type: typ, Description: strings.TrimSpace(d.collectLinks(rest))}
	case "throws", "throw", "exception":
		typ, rest := extractBraceType(text)
		d.Throws = append(d.Throws, Throws{Type: typ, Description: strings.TrimSpace(rest)})
	case "example":
		d.Examples = append(d.Examples, parseExample(text))
	case "see":
		if target := parseSeeTarget(text); target != "" {
			d.SeeAlso = append(d.SeeAlso, target)
		}
	case "link":
		if target := parseSeeTarget(text); target != "" {
			d.Links = append(d.Links, target)
		}
	case "deprecated":
		d.Deprecated = parseDeprecated(strings.TrimSpace(text))
	case "template", "typeparam", "typeParam":
		if tp, ok := parseTemplateTag(text); ok {
			d.Templates = append(d.Templates, tp)
		}
	}
}

// parseParamTag parses "{type} [name=default] - description", with every
// piece optional except the name. Dotted names document destructured
// parameter properties.
func parseParamTag(text string) (Param, bool) {
	var p Param
	typ, rest := extractBraceType(text)
	p.Type = typ
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return p, false
	}

	nameTok := rest
	if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
		nameTok = rest[:i]
		rest = rest[i:]
	} else {
		rest = ""
	}

	if strings.HasPrefix(nameTok, "[") && strings.HasSuffix(nameTok, "]") {
		p.Optional = true
		nameTok = nameTok[1 : len(nameTok)-1]
		if eq := strings.Index(nameTok, "="); eq >= 0 {
			p.Default = nameTok[eq+1:]
			nameTok = nameTok[:eq]
		}
	}
	p.Name = nameTok

	desc := strings.TrimSpace(rest)
	desc = strings.TrimPrefix(desc, "-")
	p.Description = strings.TrimSpace(desc)
	return p, p.Name != ""
}

// extractBraceType extracts a leading brace-delimited {type} annotation,
// honoring nested braces so generic forms like {Map<string, {a: b}>}
// survive intact.
func extractBraceType(text string) (typ, rest string) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "{") {
		return "", text
	}
	depth := 0
	for i, c := range s {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[1:i]), s[i+1:]
			}
		}
	}
	// Unterminated brace: treat as prose.
	return "", text
}

var fenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9]*)\\n(.*?)```")

// parseExample splits an example block into title/description/fenced code.
// Without a fence the whole block is code.
func parseExample(text string) Example {
	ex := Example{Raw: strings.TrimSpace(text)}
	m := fenceRe.FindStringSubmatchIndex(text)
	if m == nil {
		ex.Code = strings.TrimSpace(text)
		return ex
	}
	ex.Language = text[m[2]:m[3]]
	ex.Code = strings.TrimRight(text[m[4]:m[5]], "\n")

	head := strings.TrimSpace(text[:m[0]])
	if head != "" {
		lines := strings.SplitN(head, "\n", 2)
		ex.Title = strings.TrimSpace(lines[0])
		if len(lines) > 1 {
			ex.Description = strings.TrimSpace(lines[1])
		}
	}
	return ex
}

// parseSeeTarget extracts the link target from "@see {@link X}", "@see X|label",
// or "@see X label" notations.
func parseSeeTarget(text string) string {
	s := strings.TrimSpace(text)
	if parts := inlineLinkRe.FindStringSubmatch(s); parts != nil {
		return parts[1]
	}
	if i := strings.IndexAny(s, "| \t"); i >= 0 {
		s = s[:i]
	}
	return s
}

var versionRe = regexp.MustCompile(`^(?:since\s+)?v?(\d[\w.\-]*)\s*`)

// parseDeprecated splits "@deprecated since 2.0 Use other()" into version
// and reason.
func parseDeprecated(text string) *Deprecated {
	dep := &Deprecated{}
	if m := versionRe.FindStringSubmatch(text); m != nil {
		dep.Version = m[1]
		text = text[len(m[0]):]
	}
	dep.Reason = strings.TrimSpace(text)
	return dep
}

// parseTemplateTag parses "@template {Constraint} T - description" or the
// bare "@template T" form.
func parseTemplateTag(text string) (Template, bool) {
	var tp Template
	constraint, rest := extractBraceType(text)
	tp.Constraint = constraint
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return tp, false
	}
	nameTok := rest
	if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
		nameTok = rest[:i]
		rest = rest[i:]
	} else {
		rest = ""
	}
	tp.Name = nameTok
	desc := strings.TrimSpace(rest)
	desc = strings.TrimPrefix(desc, "-")
	tp.Description = strings.TrimSpace(desc)

	// "@template T extends Foo" notation.
	if strings.HasPrefix(tp.Description, "extends ") && tp.Constraint == "" {
		tp.Constraint = strings.TrimSpace(strings.TrimPrefix(tp.Description, "extends "))
		tp.Description = ""
	}
	return tp, tp.Name != ""
}

// stripCommentMarkers removes /** */ block markers, leading asterisks, and
// // line prefixes.
func stripCommentMarkers(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		l := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(l, "* "):
			l = l[2:]
		case l == "*":
			l = ""
		case strings.HasPrefix(l, "// "):
			l = l[3:]
		case strings.HasPrefix(l, "//"):
			l = l[2:]
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}

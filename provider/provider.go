// Package provider implements the source-backed resolver: it loads Go
// packages through golang.org/x/tools/go/packages and converts their
// exported declarations into the resolved model the engine consumes.
package provider

import (
	"context"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/ryanwaits/openpkg/resolve"
)

// Options configures source analysis.
type Options struct {
	// Patterns are go/packages load patterns (import paths, ./... forms).
	Patterns []string

	// Dir is the directory the load runs from. Empty means the process
	// working directory.
	Dir string
}

// Resolver resolves declarations from loaded Go source. It implements
// resolve.Resolver.
type Resolver struct {
	pkgs []*packages.Package
	main *packages.Package

	ids    map[types.Type]int64
	nextID int64

	// enums maps defined basic types to the package constants declared
	// with that type.
	enums map[*types.Named][]enumConstant

	decls map[string]*resolve.Declaration
}

type enumConstant struct {
	name  string
	value constant.Value
	doc   string
}

// Load analyzes the packages matched by opts and returns a resolver over
// them. A load that produces no usable packages is the one hard failure of
// the pipeline; per-symbol misses later degrade to opaque schemas.
func Load(ctx context.Context, opts Options) (*Resolver, error) {
	if len(opts.Patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedModule,
	}

	pkgs, err := packages.Load(cfg, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}

	// packages.Load returns packages in dependency order, not input
	// order; pin the main package to the first pattern when it matches.
	main := pkgs[0]
	for _, pkg := range pkgs {
		if pkg.PkgPath == opts.Patterns[0] {
			main = pkg
			break
		}
	}

	r := &Resolver{
		pkgs:  pkgs,
		main:  main,
		ids:   make(map[types.Type]int64),
		enums: make(map[*types.Named][]enumConstant),
		decls: make(map[string]*resolve.Declaration),
	}
	r.scanEnumConstants()
	return r, nil
}

// Meta reports package metadata from the loaded module.
func (r *Resolver) Meta() resolve.Meta {
	meta := resolve.Meta{
		Name:      r.main.PkgPath,
		Ecosystem: "go",
	}
	if mod := r.main.Module; mod != nil {
		meta.Name = mod.Path
		meta.Version = mod.Version
	}
	meta.Description = r.packageDoc()
	return meta
}

// packageDoc returns the first line of the package comment.
func (r *Resolver) packageDoc() string {
	for _, file := range r.main.Syntax {
		if file.Doc == nil {
			continue
		}
		text := strings.TrimSpace(file.Doc.Text())
		line, _, _ := strings.Cut(text, "\n")
		return line
	}
	return ""
}

// Exports returns the exported top-level declarations of the main package.
func (r *Resolver) Exports(ctx context.Context) ([]*resolve.Declaration, error) {
	var out []*resolve.Declaration
	scope := r.main.Types.Scope()
	for _, name := range scope.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		if decl := r.declarationFor(obj); decl != nil {
			out = append(out, decl)
		}
	}
	return out, nil
}

// Declaration resolves a referenced type name. Unexported names resolve too:
// an exported API may reference them. Nil means the name is unknown.
func (r *Resolver) Declaration(ctx context.Context, name string) (*resolve.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if decl, ok := r.decls[name]; ok {
		return decl, nil
	}
	for _, pkg := range r.pkgs {
		obj := pkg.Types.Scope().Lookup(name)
		if obj == nil {
			continue
		}
		decl := r.declarationFor(obj)
		r.decls[name] = decl
		return decl, nil
	}
	r.decls[name] = nil
	return nil, nil
}

func (r *Resolver) declarationFor(obj types.Object) *resolve.Declaration {
	switch o := obj.(type) {
	case *types.TypeName:
		return r.typeDeclaration(o)
	case *types.Func:
		return r.funcDeclaration(o)
	case *types.Var:
		return &resolve.Declaration{
			Kind: resolve.DeclVariable,
			Name: o.Name(),
			Doc:  r.docFor(o),
			Type: r.convert(o.Type()),
			Loc:  r.location(o),
		}
	case *types.Const:
		if named, ok := o.Type().(*types.Named); ok {
			if _, isEnum := r.enums[named]; isEnum {
				// Surfaced as a member of the enum type instead.
				return nil
			}
		}
		return &resolve.Declaration{
			Kind: resolve.DeclVariable,
			Name: o.Name(),
			Doc:  r.docFor(o),
			Type: r.constType(o),
			Loc:  r.location(o),
		}
	}
	return nil
}

func (r *Resolver) typeDeclaration(tn *types.TypeName) *resolve.Declaration {
	if tn.IsAlias() {
		// A pure alias: expose the aliased type under this name. When it
		// aliases another named type the serializer records a name hop
		// instead of a second definition.
		return &resolve.Declaration{
			Kind: resolve.DeclTypeAlias,
			Name: tn.Name(),
			Doc:  r.docFor(tn),
			Type: r.convert(types.Unalias(tn.Type())),
			Loc:  r.location(tn),
		}
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}

	if consts, isEnum := r.enums[named]; isEnum && len(consts) > 0 {
		return r.enumDeclaration(tn, consts)
	}

	decl := &resolve.Declaration{
		Name:       tn.Name(),
		Doc:        r.docFor(tn),
		TypeParams: r.typeParamDecls(named.TypeParams()),
		Loc:        r.location(tn),
	}

	switch underlying := named.Underlying().(type) {
	case *types.Struct:
		decl.Kind = resolve.DeclInterface
		decl.Members = r.structMembers(named, underlying)
		decl.Type = r.structType(named, underlying)
	case *types.Interface:
		// Shape comes from the members; there is no structural type to
		// expand.
		decl.Kind = resolve.DeclInterface
		decl.Members = r.interfaceMembers(underlying)
	default:
		decl.Kind = resolve.DeclTypeAlias
		decl.Type = r.convert(underlying)
	}
	return decl
}

func (r *Resolver) enumDeclaration(tn *types.TypeName, consts []enumConstant) *resolve.Declaration {
	members := make([]resolve.EnumMember, len(consts))
	for i, c := range consts {
		members[i] = resolve.EnumMember{
			Name:  c.name,
			Value: constantValue(c.value),
			Doc:   c.doc,
		}
	}
	return &resolve.Declaration{
		Kind:        resolve.DeclEnum,
		Name:        tn.Name(),
		Doc:         r.docFor(tn),
		EnumMembers: members,
		Loc:         r.location(tn),
	}
}

func (r *Resolver) funcDeclaration(fn *types.Func) *resolve.Declaration {
	sig := fn.Type().(*types.Signature)
	return &resolve.Declaration{
		Kind:       resolve.DeclFunction,
		Name:       fn.Name(),
		Doc:        r.docFor(fn),
		Signatures: []resolve.Signature{r.signature(sig)},
		Loc:        r.location(fn),
	}
}

func (r *Resolver) signature(sig *types.Signature) resolve.Signature {
	out := resolve.Signature{
		TypeParams: r.typeParamDecls(sig.TypeParams()),
	}
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		t := p.Type()
		rest := sig.Variadic() && i == params.Len()-1
		if rest {
			if slice, ok := t.(*types.Slice); ok {
				t = slice.Elem()
			}
		}
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		out.Params = append(out.Params, resolve.Param{
			Name:     name,
			Type:     r.convert(t),
			TypeText: r.typeText(t),
			Rest:     rest,
		})
	}
	out.Return, out.ReturnText = r.results(sig.Results())
	return out
}

// results maps a Go result tuple onto the single-return model. A trailing
// error is conventional and dropped from the schema; remaining multi-value
// tuples degrade to their textual form.
func (r *Resolver) results(results *types.Tuple) (*resolve.Type, string) {
	vals := make([]types.Type, 0, results.Len())
	for i := 0; i < results.Len(); i++ {
		vals = append(vals, results.At(i).Type())
	}
	if n := len(vals); n > 0 && isErrorType(vals[n-1]) {
		vals = vals[:n-1]
	}
	switch len(vals) {
	case 0:
		return &resolve.Type{Kind: resolve.KindPrimitive, Name: "void", Text: "void"}, "void"
	case 1:
		return r.convert(vals[0]), r.typeText(vals[0])
	default:
		texts := make([]string, len(vals))
		for i, v := range vals {
			texts[i] = r.typeText(v)
		}
		text := "(" + strings.Join(texts, ", ") + ")"
		return &resolve.Type{Kind: resolve.KindOpaque, Text: text}, text
	}
}

func isErrorType(t types.Type) bool {
	named, ok := t.(*types.Named)
	return ok && named.Obj().Pkg() == nil && named.Obj().Name() == "error"
}

func (r *Resolver) typeParamDecls(tparams *types.TypeParamList) []resolve.TypeParamDecl {
	if tparams == nil || tparams.Len() == 0 {
		return nil
	}
	out := make([]resolve.TypeParamDecl, 0, tparams.Len())
	for i := 0; i < tparams.Len(); i++ {
		tp := tparams.At(i)
		constraint := ""
		if c := tp.Constraint(); c != nil {
			if s := c.String(); s != "any" && s != "interface{}" && s != "comparable" {
				constraint = r.typeText(c)
			}
		}
		out = append(out, resolve.TypeParamDecl{
			Name:       tp.Obj().Name(),
			Constraint: constraint,
		})
	}
	return out
}

func (r *Resolver) constType(c *types.Const) *resolve.Type {
	if v := constantValue(c.Val()); v != nil {
		return &resolve.Type{
			Kind:    resolve.KindLiteral,
			ID:      r.typeID(c.Type()),
			Literal: v,
			Text:    c.Val().String(),
		}
	}
	return r.convert(c.Type())
}

func constantValue(v constant.Value) any {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		i64, _ := constant.Int64Val(v)
		return i64
	case constant.Float:
		f64, _ := constant.Float64Val(v)
		return f64
	case constant.Bool:
		return constant.BoolVal(v)
	default:
		return nil
	}
}

func (r *Resolver) typeID(t types.Type) int64 {
	if id, ok := r.ids[t]; ok {
		return id
	}
	r.nextID++
	r.ids[t] = r.nextID
	return r.nextID
}

// scanEnumConstants records package constants whose type is a defined basic
// type; such a type is surfaced as an enum of those constants.
func (r *Resolver) scanEnumConstants() {
	for _, pkg := range r.pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			cnst, ok := scope.Lookup(name).(*types.Const)
			if !ok {
				continue
			}
			named, ok := cnst.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, basic := named.Underlying().(*types.Basic); !basic {
				continue
			}
			r.enums[named] = append(r.enums[named], enumConstant{
				name:  cnst.Name(),
				value: cnst.Val(),
				doc:   r.docFor(cnst),
			})
		}
	}
}

// docFor returns the raw leading comment block of an object's declaration.
func (r *Resolver) docFor(obj types.Object) string {
	pos := obj.Pos()
	for _, pkg := range r.pkgs {
		if pkg.Types != obj.Pkg() {
			continue
		}
		for _, file := range pkg.Syntax {
			if file.Pos() > pos || file.End() < pos {
				continue
			}
			var doc *ast.CommentGroup
			ast.Inspect(file, func(n ast.Node) bool {
				switch decl := n.(type) {
				case *ast.FuncDecl:
					if decl.Name.Pos() == pos {
						doc = decl.Doc
						return false
					}
				case *ast.GenDecl:
					for _, sp := range decl.Specs {
						switch s := sp.(type) {
						case *ast.TypeSpec:
							if s.Name.Pos() == pos {
								doc = s.Doc
								if doc == nil {
									doc = decl.Doc
								}
								return false
							}
						case *ast.ValueSpec:
							for _, ident := range s.Names {
								if ident.Pos() == pos {
									doc = s.Doc
									if doc == nil {
										doc = decl.Doc
									}
									return false
								}
							}
						}
					}
				}
				return true
			})
			if doc != nil {
				return doc.Text()
			}
		}
	}
	return ""
}

func (r *Resolver) location(obj types.Object) resolve.Location {
	pos := obj.Pos()
	if !pos.IsValid() {
		return resolve.Location{}
	}
	for _, pkg := range r.pkgs {
		if pkg.Fset == nil {
			continue
		}
		position := pkg.Fset.Position(pos)
		return resolve.Location{File: position.Filename, Line: position.Line}
	}
	return resolve.Location{}
}

func (r *Resolver) typeText(t types.Type) string {
	return types.TypeString(t, types.RelativeTo(r.main.Types))
}

// fieldDoc returns the doc comment of the struct field declared at pos.
func (r *Resolver) fieldDoc(tpkg *types.Package, pos token.Pos) string {
	for _, pkg := range r.pkgs {
		if pkg.Types != tpkg {
			continue
		}
		for _, file := range pkg.Syntax {
			if file.Pos() > pos || file.End() < pos {
				continue
			}
			var doc *ast.CommentGroup
			ast.Inspect(file, func(n ast.Node) bool {
				field, ok := n.(*ast.Field)
				if !ok {
					return true
				}
				for _, ident := range field.Names {
					if ident.Pos() == pos {
						doc = field.Doc
						if doc == nil {
							doc = field.Comment
						}
						return false
					}
				}
				return true
			})
			if doc != nil {
				return doc.Text()
			}
		}
	}
	return ""
}

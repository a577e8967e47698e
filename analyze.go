// Package openpkg analyzes a package's exported API surface: it serializes
// every export and reachable type into a JSON-Schema-like specification and
// annotates each record with documentation coverage and drift findings.
package openpkg

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ryanwaits/openpkg/drift"
	"github.com/ryanwaits/openpkg/format"
	"github.com/ryanwaits/openpkg/resolve"
	"github.com/ryanwaits/openpkg/serialize"
	"github.com/ryanwaits/openpkg/spec"
)

// Analyzer runs the analysis pipeline. One Analyzer may serve concurrent
// Analyze calls: all per-run state (registry, formatting context) is created
// per call.
type Analyzer struct {
	cfg  Config
	exec map[string][]drift.ExecResult
	log  *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExecResults supplies externally captured example execution results,
// keyed by export name and index-parallel with each export's examples.
func WithExecResults(results map[string][]drift.ExecResult) Option {
	return func(a *Analyzer) { a.exec = results }
}

// WithLogger sets the pipeline logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

// New returns an Analyzer with the given configuration.
func New(cfg Config, opts ...Option) *Analyzer {
	a := &Analyzer{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze serializes the resolver's exports, drains referenced types, and
// scores documentation coverage and drift for every export. The resolver
// being unable to list exports is the pipeline's one hard failure; everything
// downstream degrades per symbol instead of erroring.
func (a *Analyzer) Analyze(ctx context.Context, res resolve.Resolver) (*spec.PackageSpec, error) {
	reg := spec.NewRegistry()
	cx := format.NewContext(reg, format.Config{
		MaxDepth:              a.cfg.MaxDepth,
		Builtins:              a.cfg.Builtins,
		Markers:               a.cfg.Markers,
		DisableDiscriminators: a.cfg.DisableDiscriminators,
	})
	ser := serialize.New(res, reg, cx, serialize.Config{
		PlaceholderParamName: a.cfg.PlaceholderParam,
	})

	decls, err := res.Exports(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}

	var results []*serialize.Result
	for _, d := range decls {
		rs, err := ser.Serialize(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", d.Name, err)
		}
		results = append(results, rs...)
	}
	if err := ser.Drain(ctx); err != nil {
		return nil, err
	}

	meta := res.Meta()
	out := &spec.PackageSpec{
		Meta: spec.Meta{
			Name:        meta.Name,
			Version:     meta.Version,
			Description: meta.Description,
			License:     meta.License,
			Repository:  meta.Repository,
			Ecosystem:   meta.Ecosystem,
		},
		Exports: make([]*spec.Export, 0, len(results)),
		Types:   reg.TypeDefinitions(),
	}

	env := drift.Env{
		Cfg: drift.Config{
			EditDistanceMax: a.cfg.EditDistanceMax,
			Builtins:        globalsSet(a.cfg.ExampleGlobals),
			DefaultLanguage: exampleLanguage(meta.Ecosystem),
		},
		Known: a.knownNames(results, out.Types, reg.Pending()),
		Exec:  a.exec,
	}

	scores := make([]int, 0, len(results))
	for _, r := range results {
		score, missing := drift.Coverage(r.Export, r.Doc)
		findings := drift.Detect(r.Export, r.Doc, env)
		r.Export.Docs = &spec.DocsBlock{
			CoverageScore: score,
			Missing:       missing,
			Drift:         findings,
		}
		scores = append(scores, score)
		out.Exports = append(out.Exports, r.Export)
		if len(findings) > 0 {
			a.log.Debug("documentation drift",
				"export", r.Export.Name,
				"findings", len(findings))
		}
	}
	out.Docs = &spec.PackageDocs{CoverageScore: drift.PackageScore(scores)}

	a.log.Info("analysis complete",
		"package", out.Meta.Name,
		"exports", len(out.Exports),
		"types", len(out.Types),
		"coverage", out.Docs.CoverageScore)
	return out, nil
}

// knownNames collects every name link targets and example identifiers may
// legitimately reference: exports, registered types, and pending refs. A
// referenced name the resolver could not expand still resolves as a link
// target; its ref dangles, it does not vanish.
func (a *Analyzer) knownNames(results []*serialize.Result, types []*spec.Type, pending []string) map[string]bool {
	known := make(map[string]bool)
	for _, r := range results {
		known[r.Export.Name] = true
	}
	for _, t := range types {
		known[t.Name] = true
	}
	for _, name := range pending {
		known[name] = true
	}
	return known
}

// exampleLanguage maps a package ecosystem to the language untagged example
// code is assumed to be written in.
func exampleLanguage(ecosystem string) string {
	switch ecosystem {
	case "go":
		return "go"
	case "npm", "js", "javascript":
		return "javascript"
	default:
		return ""
	}
}

func globalsSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// AnalyzePackages fans Analyze out over several resolvers, one registry per
// package. The map is keyed however the caller keyed the resolvers.
func (a *Analyzer) AnalyzePackages(ctx context.Context, resolvers map[string]resolve.Resolver) (map[string]*spec.PackageSpec, error) {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string]*spec.PackageSpec, len(resolvers))

	for name, res := range resolvers {
		g.Go(func() error {
			ps, err := a.Analyze(ctx, res)
			if err != nil {
				return fmt.Errorf("package %s: %w", name, err)
			}
			mu.Lock()
			out[name] = ps
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
